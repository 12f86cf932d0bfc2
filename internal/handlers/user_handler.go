package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ecolaura/ecolaura-api/internal/middleware"
	"github.com/ecolaura/ecolaura-api/internal/services"
)

// UserHandler handles profile and impact endpoints
type UserHandler struct {
	users     *services.UserService
	analytics *services.AnalyticsService
}

// NewUserHandler creates a new user handler
func NewUserHandler(users *services.UserService, analytics *services.AnalyticsService) *UserHandler {
	return &UserHandler{users: users, analytics: analytics}
}

// GetProfile handles GET /api/users/me
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, err := middleware.MustUserID(c)
	if err != nil {
		ErrorResponse(c, http.StatusUnauthorized, "Invalid session", err)
		return
	}

	user, err := h.users.Get(c.Request.Context(), userID)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Profile retrieved", user)
}

// UpdateProfileRequest is the profile update payload
type UpdateProfileRequest struct {
	Name     string  `json:"name"`
	FCMToken *string `json:"fcm_token"`
}

// UpdateProfile handles PUT /api/users/me
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, err := middleware.MustUserID(c)
	if err != nil {
		ErrorResponse(c, http.StatusUnauthorized, "Invalid session", err)
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), userID, req.Name, req.FCMToken)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Profile updated", user)
}

// GetImpact handles GET /api/users/me/impact
func (h *UserHandler) GetImpact(c *gin.Context) {
	userID, err := middleware.MustUserID(c)
	if err != nil {
		ErrorResponse(c, http.StatusUnauthorized, "Invalid session", err)
		return
	}

	report, err := h.analytics.UserImpact(c.Request.Context(), userID)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Impact report retrieved", report)
}
