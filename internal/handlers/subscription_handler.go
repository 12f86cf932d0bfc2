package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ecolaura/ecolaura-api/internal/middleware"
	"github.com/ecolaura/ecolaura-api/internal/models"
	"github.com/ecolaura/ecolaura-api/internal/services"
)

// SubscriptionHandler handles subscription box endpoints
type SubscriptionHandler struct {
	subscriptions *services.SubscriptionService
}

// NewSubscriptionHandler creates a new subscription handler
func NewSubscriptionHandler(subscriptions *services.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptions: subscriptions}
}

// ListBoxes handles GET /api/subscriptions/boxes
func (h *SubscriptionHandler) ListBoxes(c *gin.Context) {
	boxes, err := h.subscriptions.ListBoxes(c.Request.Context())
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Subscription boxes retrieved", boxes)
}

// GetBox handles GET /api/subscriptions/boxes/:id
func (h *SubscriptionHandler) GetBox(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid box id", err)
		return
	}

	box, err := h.subscriptions.GetBox(c.Request.Context(), id)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Subscription box retrieved", box)
}

// CreateBoxRequest is the admin box creation payload
type CreateBoxRequest struct {
	Name        string      `json:"name" binding:"required"`
	Description string      `json:"description"`
	Price       float64     `json:"price" binding:"required,gt=0"`
	Frequency   string      `json:"frequency" binding:"required"`
	ProductIDs  []uuid.UUID `json:"product_ids"`
}

// CreateBox handles POST /api/subscriptions/boxes (admin)
func (h *SubscriptionHandler) CreateBox(c *gin.Context) {
	var req CreateBoxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	box := &models.SubscriptionBox{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Frequency:   req.Frequency,
	}

	created, err := h.subscriptions.CreateBox(c.Request.Context(), box, req.ProductIDs)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "Subscription box created", created)
}

// SubscribeRequest is the enrollment payload
type SubscribeRequest struct {
	BoxID uuid.UUID `json:"box_id" binding:"required"`
}

// Subscribe handles POST /api/subscriptions
func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	userID, err := middleware.MustUserID(c)
	if err != nil {
		ErrorResponse(c, http.StatusUnauthorized, "Invalid session", err)
		return
	}

	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	sub, err := h.subscriptions.Subscribe(c.Request.Context(), userID, req.BoxID)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "Subscription created", sub)
}

// List handles GET /api/subscriptions
func (h *SubscriptionHandler) List(c *gin.Context) {
	userID, err := middleware.MustUserID(c)
	if err != nil {
		ErrorResponse(c, http.StatusUnauthorized, "Invalid session", err)
		return
	}

	subs, err := h.subscriptions.ListByUser(c.Request.Context(), userID)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Subscriptions retrieved", subs)
}

// UpdateStatus handles PUT /api/subscriptions/:id/status
func (h *SubscriptionHandler) UpdateStatus(c *gin.Context) {
	userID, err := middleware.MustUserID(c)
	if err != nil {
		ErrorResponse(c, http.StatusUnauthorized, "Invalid session", err)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid subscription id", err)
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	if err := h.subscriptions.UpdateStatus(c.Request.Context(), id, userID, req.Status); err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Subscription status updated", nil)
}
