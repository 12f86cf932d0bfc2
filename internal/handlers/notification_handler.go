package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ecolaura/ecolaura-api/internal/middleware"
	"github.com/ecolaura/ecolaura-api/internal/services"
)

// NotificationHandler handles notification endpoints
type NotificationHandler struct {
	notifications *services.NotificationService
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// List handles GET /api/notifications
func (h *NotificationHandler) List(c *gin.Context) {
	userID, err := middleware.MustUserID(c)
	if err != nil {
		ErrorResponse(c, http.StatusUnauthorized, "Invalid session", err)
		return
	}

	unreadOnly := c.Query("unread") == "true"

	notifications, err := h.notifications.List(c.Request.Context(), userID, unreadOnly)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Notifications retrieved", notifications)
}

// MarkRead handles PUT /api/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, err := middleware.MustUserID(c)
	if err != nil {
		ErrorResponse(c, http.StatusUnauthorized, "Invalid session", err)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid notification id", err)
		return
	}

	if err := h.notifications.MarkRead(c.Request.Context(), id, userID); err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Notification marked as read", nil)
}
