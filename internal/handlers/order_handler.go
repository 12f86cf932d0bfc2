package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ecolaura/ecolaura-api/internal/middleware"
	"github.com/ecolaura/ecolaura-api/internal/services"
)

// OrderHandler handles order endpoints
type OrderHandler struct {
	orders *services.OrderService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orders *services.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// CreateOrderRequest is the order creation payload
type CreateOrderRequest struct {
	ProductIDs []uuid.UUID `json:"product_ids" binding:"required,min=1"`
}

// Create handles POST /api/orders
func (h *OrderHandler) Create(c *gin.Context) {
	userID, err := middleware.MustUserID(c)
	if err != nil {
		ErrorResponse(c, http.StatusUnauthorized, "Invalid session", err)
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	result, err := h.orders.Create(c.Request.Context(), userID, req.ProductIDs)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "Order created", result)
}

// ConfirmOrderRequest is the payment confirmation payload
type ConfirmOrderRequest struct {
	PaymentIntentID string `json:"payment_intent_id" binding:"required"`
}

// Confirm handles POST /api/orders/:id/confirm
func (h *OrderHandler) Confirm(c *gin.Context) {
	userID, err := middleware.MustUserID(c)
	if err != nil {
		ErrorResponse(c, http.StatusUnauthorized, "Invalid session", err)
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid order id", err)
		return
	}

	var req ConfirmOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	order, err := h.orders.Confirm(c.Request.Context(), orderID, userID, req.PaymentIntentID)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Order confirmed", order)
}

// Get handles GET /api/orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	userID, err := middleware.MustUserID(c)
	if err != nil {
		ErrorResponse(c, http.StatusUnauthorized, "Invalid session", err)
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid order id", err)
		return
	}

	order, err := h.orders.Get(c.Request.Context(), orderID, userID, middleware.IsAdmin(c))
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Order retrieved", order)
}

// List handles GET /api/orders
func (h *OrderHandler) List(c *gin.Context) {
	userID, err := middleware.MustUserID(c)
	if err != nil {
		ErrorResponse(c, http.StatusUnauthorized, "Invalid session", err)
		return
	}

	orders, err := h.orders.ListByUser(c.Request.Context(), userID)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Orders retrieved", orders)
}

// UpdateStatusRequest is the admin status update payload
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus handles PUT /api/admin/orders/:id/status (admin)
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid order id", err)
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	order, err := h.orders.UpdateStatus(c.Request.Context(), orderID, req.Status)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Order status updated", order)
}
