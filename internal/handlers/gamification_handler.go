package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ecolaura/ecolaura-api/internal/middleware"
	"github.com/ecolaura/ecolaura-api/internal/services"
)

// GamificationHandler handles points, achievements and leaderboard endpoints
type GamificationHandler struct {
	gamification *services.GamificationService
}

// NewGamificationHandler creates a new gamification handler
func NewGamificationHandler(gamification *services.GamificationService) *GamificationHandler {
	return &GamificationHandler{gamification: gamification}
}

// Stats handles GET /api/gamification/stats
func (h *GamificationHandler) Stats(c *gin.Context) {
	userID, err := middleware.MustUserID(c)
	if err != nil {
		ErrorResponse(c, http.StatusUnauthorized, "Invalid session", err)
		return
	}

	stats, err := h.gamification.Stats(c.Request.Context(), userID)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Stats retrieved", stats)
}

// Leaderboard handles GET /api/gamification/leaderboard
func (h *GamificationHandler) Leaderboard(c *gin.Context) {
	entries, err := h.gamification.Leaderboard(c.Request.Context())
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Leaderboard retrieved", entries)
}

// Achievements handles GET /api/gamification/achievements
func (h *GamificationHandler) Achievements(c *gin.Context) {
	achievements, err := h.gamification.ListAchievements(c.Request.Context())
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Achievements retrieved", achievements)
}
