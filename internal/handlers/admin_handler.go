package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ecolaura/ecolaura-api/internal/scheduler"
	"github.com/ecolaura/ecolaura-api/internal/services"
)

// AdminHandler handles the admin dashboard and operational endpoints
type AdminHandler struct {
	analytics *services.AnalyticsService
	sweeper   *scheduler.DeliveryScheduler
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(analytics *services.AnalyticsService, sweeper *scheduler.DeliveryScheduler) *AdminHandler {
	return &AdminHandler{analytics: analytics, sweeper: sweeper}
}

// Dashboard handles GET /api/admin/dashboard
func (h *AdminHandler) Dashboard(c *gin.Context) {
	stats, err := h.analytics.Dashboard(c.Request.Context())
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Dashboard retrieved", stats)
}

// SweepStatus handles GET /api/admin/delivery-sweep
func (h *AdminHandler) SweepStatus(c *gin.Context) {
	SuccessResponse(c, http.StatusOK, "Sweep status retrieved", h.sweeper.Stats())
}

// TriggerSweep handles POST /api/admin/delivery-sweep
func (h *AdminHandler) TriggerSweep(c *gin.Context) {
	h.sweeper.RunNow()
	SuccessResponse(c, http.StatusAccepted, "Delivery sweep triggered", nil)
}
