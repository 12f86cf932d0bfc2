package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ecolaura/ecolaura-api/internal/middleware"
	"github.com/ecolaura/ecolaura-api/internal/models"
	"github.com/ecolaura/ecolaura-api/internal/services"
)

// TradeInHandler handles trade-in endpoints
type TradeInHandler struct {
	tradeIns *services.TradeInService
}

// NewTradeInHandler creates a new trade-in handler
func NewTradeInHandler(tradeIns *services.TradeInService) *TradeInHandler {
	return &TradeInHandler{tradeIns: tradeIns}
}

// CreateTradeInRequest is the trade-in submission payload
type CreateTradeInRequest struct {
	ProductName string `json:"product_name" binding:"required"`
	Condition   string `json:"condition" binding:"required,oneof=like_new good fair poor"`
	Description string `json:"description"`
}

// Create handles POST /api/trade-ins
func (h *TradeInHandler) Create(c *gin.Context) {
	userID, err := middleware.MustUserID(c)
	if err != nil {
		ErrorResponse(c, http.StatusUnauthorized, "Invalid session", err)
		return
	}

	var req CreateTradeInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	tradeIn := &models.TradeIn{
		ProductName: req.ProductName,
		Condition:   req.Condition,
		Description: req.Description,
	}

	created, err := h.tradeIns.Create(c.Request.Context(), userID, tradeIn)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "Trade-in submitted", created)
}

// List handles GET /api/trade-ins
func (h *TradeInHandler) List(c *gin.Context) {
	userID, err := middleware.MustUserID(c)
	if err != nil {
		ErrorResponse(c, http.StatusUnauthorized, "Invalid session", err)
		return
	}

	tradeIns, err := h.tradeIns.ListByUser(c.Request.Context(), userID)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Trade-ins retrieved", tradeIns)
}

// Get handles GET /api/trade-ins/:id
func (h *TradeInHandler) Get(c *gin.Context) {
	userID, err := middleware.MustUserID(c)
	if err != nil {
		ErrorResponse(c, http.StatusUnauthorized, "Invalid session", err)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid trade-in id", err)
		return
	}

	tradeIn, err := h.tradeIns.Get(c.Request.Context(), id, userID, middleware.IsAdmin(c))
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Trade-in retrieved", tradeIn)
}

// DecideTradeInRequest is the admin decision payload
type DecideTradeInRequest struct {
	Status         string  `json:"status" binding:"required,oneof=approved rejected completed"`
	EstimatedValue float64 `json:"estimated_value"`
}

// Decide handles PUT /api/admin/trade-ins/:id (admin)
func (h *TradeInHandler) Decide(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid trade-in id", err)
		return
	}

	var req DecideTradeInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	tradeIn, err := h.tradeIns.Decide(c.Request.Context(), id, req.Status, req.EstimatedValue)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Trade-in updated", tradeIn)
}
