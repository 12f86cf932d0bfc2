package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ecolaura/ecolaura-api/internal/middleware"
	"github.com/ecolaura/ecolaura-api/internal/models"
	"github.com/ecolaura/ecolaura-api/internal/services"
)

// ReviewHandler handles product review endpoints
type ReviewHandler struct {
	reviews *services.ReviewService
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviews *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// ReviewRequest is the create/update payload for a review
type ReviewRequest struct {
	Rating               int    `json:"rating" binding:"required,min=1,max=5"`
	SustainabilityRating int    `json:"sustainability_rating" binding:"required,min=1,max=5"`
	Title                string `json:"title" binding:"required"`
	Content              string `json:"content" binding:"required"`
}

// Create handles POST /api/products/:id/reviews
func (h *ReviewHandler) Create(c *gin.Context) {
	userID, err := middleware.MustUserID(c)
	if err != nil {
		ErrorResponse(c, http.StatusUnauthorized, "Invalid session", err)
		return
	}

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid product id", err)
		return
	}

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	review := &models.Review{
		ProductID:            productID,
		Rating:               req.Rating,
		SustainabilityRating: req.SustainabilityRating,
		Title:                req.Title,
		Content:              req.Content,
	}

	created, err := h.reviews.Create(c.Request.Context(), userID, review)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "Review created", created)
}

// ListByProduct handles GET /api/products/:id/reviews
func (h *ReviewHandler) ListByProduct(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid product id", err)
		return
	}

	reviews, err := h.reviews.ListByProduct(c.Request.Context(), productID)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Reviews retrieved", reviews)
}

// Update handles PUT /api/reviews/:id
func (h *ReviewHandler) Update(c *gin.Context) {
	userID, err := middleware.MustUserID(c)
	if err != nil {
		ErrorResponse(c, http.StatusUnauthorized, "Invalid session", err)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid review id", err)
		return
	}

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	review, err := h.reviews.Update(c.Request.Context(), id, userID, req.Rating, req.SustainabilityRating, req.Title, req.Content)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Review updated", review)
}

// Delete handles DELETE /api/reviews/:id
func (h *ReviewHandler) Delete(c *gin.Context) {
	userID, err := middleware.MustUserID(c)
	if err != nil {
		ErrorResponse(c, http.StatusUnauthorized, "Invalid session", err)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid review id", err)
		return
	}

	if err := h.reviews.Delete(c.Request.Context(), id, userID, middleware.IsAdmin(c)); err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Review deleted", nil)
}
