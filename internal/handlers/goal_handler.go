package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ecolaura/ecolaura-api/internal/middleware"
	"github.com/ecolaura/ecolaura-api/internal/models"
	"github.com/ecolaura/ecolaura-api/internal/services"
)

// GoalHandler handles sustainability goal endpoints
type GoalHandler struct {
	goals *services.GoalService
}

// NewGoalHandler creates a new goal handler
func NewGoalHandler(goals *services.GoalService) *GoalHandler {
	return &GoalHandler{goals: goals}
}

// CreateGoalRequest is the goal creation payload
type CreateGoalRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	TargetValue float64    `json:"target_value" binding:"required,gt=0"`
	Unit        string     `json:"unit" binding:"required"`
	Category    string     `json:"category" binding:"required,oneof=energy water waste transportation consumption other"`
	Deadline    *time.Time `json:"deadline"`
}

// Create handles POST /api/goals
func (h *GoalHandler) Create(c *gin.Context) {
	userID, err := middleware.MustUserID(c)
	if err != nil {
		ErrorResponse(c, http.StatusUnauthorized, "Invalid session", err)
		return
	}

	var req CreateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	goal := &models.SustainabilityGoal{
		Title:       req.Title,
		Description: req.Description,
		TargetValue: req.TargetValue,
		Unit:        req.Unit,
		Category:    req.Category,
		Deadline:    req.Deadline,
	}

	created, err := h.goals.Create(c.Request.Context(), userID, goal)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "Goal created", created)
}

// List handles GET /api/goals
func (h *GoalHandler) List(c *gin.Context) {
	userID, err := middleware.MustUserID(c)
	if err != nil {
		ErrorResponse(c, http.StatusUnauthorized, "Invalid session", err)
		return
	}

	goals, err := h.goals.ListByUser(c.Request.Context(), userID)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Goals retrieved", goals)
}

// UpdateProgressRequest is the progress update payload
type UpdateProgressRequest struct {
	CurrentValue float64 `json:"current_value" binding:"min=0"`
}

// UpdateProgress handles PUT /api/goals/:id/progress
func (h *GoalHandler) UpdateProgress(c *gin.Context) {
	userID, err := middleware.MustUserID(c)
	if err != nil {
		ErrorResponse(c, http.StatusUnauthorized, "Invalid session", err)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid goal id", err)
		return
	}

	var req UpdateProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	goal, err := h.goals.UpdateProgress(c.Request.Context(), id, userID, req.CurrentValue)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Goal progress updated", goal)
}

// Delete handles DELETE /api/goals/:id
func (h *GoalHandler) Delete(c *gin.Context) {
	userID, err := middleware.MustUserID(c)
	if err != nil {
		ErrorResponse(c, http.StatusUnauthorized, "Invalid session", err)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid goal id", err)
		return
	}

	if err := h.goals.Delete(c.Request.Context(), id, userID); err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Goal deleted", nil)
}
