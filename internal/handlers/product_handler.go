package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/ecolaura/ecolaura-api/internal/middleware"
	"github.com/ecolaura/ecolaura-api/internal/models"
	"github.com/ecolaura/ecolaura-api/internal/repository"
	"github.com/ecolaura/ecolaura-api/internal/services"
)

// ProductHandler handles catalog endpoints
type ProductHandler struct {
	catalog *services.CatalogService
}

// NewProductHandler creates a new product handler
func NewProductHandler(catalog *services.CatalogService) *ProductHandler {
	return &ProductHandler{catalog: catalog}
}

// ProductRequest is the create/update payload for a product
type ProductRequest struct {
	Name                       string   `json:"name" binding:"required"`
	Description                string   `json:"description"`
	Price                      float64  `json:"price" binding:"required,gt=0"`
	Stock                      int      `json:"stock"`
	Category                   string   `json:"category" binding:"required"`
	Tags                       []string `json:"tags"`
	RecycledMaterialPercentage float64  `json:"recycled_material_percentage"`
	EnergyEfficiencyRating     float64  `json:"energy_efficiency_rating"`
	CarbonFootprint            float64  `json:"carbon_footprint"`
	SustainablePackaging       bool     `json:"sustainable_packaging"`
	ExpectedLifespan           float64  `json:"expected_lifespan"`
}

func (r *ProductRequest) toModel() *models.Product {
	return &models.Product{
		Name:                       r.Name,
		Description:                r.Description,
		Price:                      r.Price,
		Stock:                      r.Stock,
		Category:                   r.Category,
		Tags:                       pq.StringArray(r.Tags),
		RecycledMaterialPercentage: r.RecycledMaterialPercentage,
		EnergyEfficiencyRating:     r.EnergyEfficiencyRating,
		CarbonFootprint:            r.CarbonFootprint,
		SustainablePackaging:       r.SustainablePackaging,
		ExpectedLifespan:           r.ExpectedLifespan,
	}
}

// Create handles POST /api/products (admin)
func (h *ProductHandler) Create(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	product, err := h.catalog.Create(c.Request.Context(), req.toModel())
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "Product created", product)
}

// Update handles PUT /api/products/:id (admin)
func (h *ProductHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid product id", err)
		return
	}

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	product, err := h.catalog.Update(c.Request.Context(), id, req.toModel())
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Product updated", product)
}

// Get handles GET /api/products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid product id", err)
		return
	}

	product, err := h.catalog.Get(c.Request.Context(), id)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Product retrieved", product)
}

// History handles GET /api/products/:id/history
func (h *ProductHandler) History(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid product id", err)
		return
	}

	entries, err := h.catalog.History(c.Request.Context(), id)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Score history retrieved", entries)
}

// Search handles GET /api/products
func (h *ProductHandler) Search(c *gin.Context) {
	q := repository.ProductSearchQuery{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		SortBy:   c.Query("sort"),
		Page:     parseIntQuery(c, "page", 1),
		PageSize: parseIntQuery(c, "page_size", 20),
	}

	if raw := c.Query("min_price"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			q.MinPrice = &v
		}
	}
	if raw := c.Query("max_price"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			q.MaxPrice = &v
		}
	}
	if raw := c.Query("min_sustainability_score"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			q.MinSustainabilityScore = &v
		}
	}
	if raw := c.Query("tags"); raw != "" {
		q.Tags = strings.Split(raw, ",")
	}

	products, total, err := h.catalog.Search(c.Request.Context(), q)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Products retrieved", gin.H{
		"products":  products,
		"total":     total,
		"page":      q.Page,
		"page_size": q.PageSize,
	})
}

// Recommended handles GET /api/products/recommended
func (h *ProductHandler) Recommended(c *gin.Context) {
	userID, err := middleware.MustUserID(c)
	if err != nil {
		ErrorResponse(c, http.StatusUnauthorized, "Invalid session", err)
		return
	}

	products, err := h.catalog.Recommended(c.Request.Context(), userID)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Recommendations retrieved", products)
}

// Similar handles GET /api/products/:id/similar
func (h *ProductHandler) Similar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid product id", err)
		return
	}

	products, err := h.catalog.Similar(c.Request.Context(), id, parseIntQuery(c, "limit", 5))
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Similar products retrieved", products)
}

// Trending handles GET /api/products/trending
func (h *ProductHandler) Trending(c *gin.Context) {
	products, err := h.catalog.Trending(c.Request.Context(), parseIntQuery(c, "limit", 10))
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Trending products retrieved", products)
}

// NewArrivals handles GET /api/products/new
func (h *ProductHandler) NewArrivals(c *gin.Context) {
	products, err := h.catalog.NewArrivals(c.Request.Context(), parseIntQuery(c, "limit", 10))
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "New arrivals retrieved", products)
}

func parseIntQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
