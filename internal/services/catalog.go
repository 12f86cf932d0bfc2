package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ecolaura/ecolaura-api/internal/models"
	"github.com/ecolaura/ecolaura-api/internal/repository"
)

const (
	recommendationLimit = 10
	trendingWindow      = 30 * 24 * time.Hour
	trendingMinScore    = 70
)

// CatalogService manages the product catalog and discovery queries
type CatalogService struct {
	products *repository.ProductRepository
	orders   *repository.OrderRepository
	users    *repository.UserRepository
	logger   *logrus.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(
	products *repository.ProductRepository,
	orders *repository.OrderRepository,
	users *repository.UserRepository,
	logger *logrus.Logger,
) *CatalogService {
	return &CatalogService{
		products: products,
		orders:   orders,
		users:    users,
		logger:   logger,
	}
}

// Create adds a product to the catalog, deriving its sustainability score
// from the raw factors
func (s *CatalogService) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := validateProduct(product); err != nil {
		return nil, err
	}

	product.SustainabilityScore = ComputeProductScore(product)
	product.MinSustainabilityScore = ComputeMinScore(product.SustainabilityScore)

	if err := s.products.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"product_id": product.ID,
		"name":       product.Name,
		"score":      product.SustainabilityScore,
	}).Info("Product created")

	if err := s.products.RecordScore(ctx, product.ID, product.SustainabilityScore, models.ScoreSourceFactors); err != nil {
		s.logger.WithError(err).WithField("product_id", product.ID).Warn("Failed to record score history")
	}

	return product, nil
}

// Update edits a product and recomputes its score from the new factors
func (s *CatalogService) Update(ctx context.Context, id uuid.UUID, updated *models.Product) (*models.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewNotFoundError("product")
		}
		return nil, err
	}

	if err := validateProduct(updated); err != nil {
		return nil, err
	}

	product.Name = updated.Name
	product.Description = updated.Description
	product.Price = updated.Price
	product.Stock = updated.Stock
	product.Category = updated.Category
	product.Tags = updated.Tags
	product.RecycledMaterialPercentage = updated.RecycledMaterialPercentage
	product.EnergyEfficiencyRating = updated.EnergyEfficiencyRating
	product.CarbonFootprint = updated.CarbonFootprint
	product.SustainablePackaging = updated.SustainablePackaging
	product.ExpectedLifespan = updated.ExpectedLifespan
	previousScore := product.SustainabilityScore
	product.SustainabilityScore = ComputeProductScore(product)
	product.MinSustainabilityScore = ComputeMinScore(product.SustainabilityScore)

	if err := s.products.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	if product.SustainabilityScore != previousScore {
		if err := s.products.RecordScore(ctx, product.ID, product.SustainabilityScore, models.ScoreSourceFactors); err != nil {
			s.logger.WithError(err).WithField("product_id", product.ID).Warn("Failed to record score history")
		}
	}

	return product, nil
}

// Get returns a single product
func (s *CatalogService) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewNotFoundError("product")
		}
		return nil, err
	}
	return product, nil
}

// History returns a product's sustainability score changes over time
func (s *CatalogService) History(ctx context.Context, id uuid.UUID) ([]models.ScoreHistory, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.products.ScoreHistory(ctx, id)
}

// Search runs a filtered, paginated catalog query
func (s *CatalogService) Search(ctx context.Context, q repository.ProductSearchQuery) ([]models.Product, int64, error) {
	return s.products.Search(ctx, q)
}

// Recommended suggests products based on the user's purchase history:
// products from categories they already buy, at or above their own
// sustainability score. Users with no history get the top sustainable
// products instead.
func (s *CatalogService) Recommended(ctx context.Context, userID uuid.UUID) ([]models.Product, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewNotFoundError("user")
		}
		return nil, err
	}

	categories, err := s.orders.CategoriesByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load purchase categories: %w", err)
	}

	if len(categories) == 0 {
		return s.products.TopSustainable(ctx, recommendationLimit)
	}

	recommended, err := s.products.Recommended(ctx, categories, user.SustainabilityScore, false, recommendationLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load recommendations: %w", err)
	}

	// Pad with picks outside the user's usual categories when the familiar
	// ones run dry
	if len(recommended) < recommendationLimit {
		extra, err := s.products.Recommended(ctx, categories, user.SustainabilityScore, true, recommendationLimit-len(recommended))
		if err != nil {
			return nil, fmt.Errorf("failed to load discovery recommendations: %w", err)
		}
		recommended = append(recommended, extra...)
	}

	return recommended, nil
}

// Similar returns products in the same category with a comparable
// sustainability score
func (s *CatalogService) Similar(ctx context.Context, productID uuid.UUID, limit int) ([]models.Product, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewNotFoundError("product")
		}
		return nil, err
	}

	return s.products.Similar(ctx, product, limit)
}

// Trending returns the most purchased products over the trailing month
func (s *CatalogService) Trending(ctx context.Context, limit int) ([]models.Product, error) {
	return s.products.Trending(ctx, time.Now().Add(-trendingWindow), trendingMinScore, limit)
}

// NewArrivals returns the most recently added products
func (s *CatalogService) NewArrivals(ctx context.Context, limit int) ([]models.Product, error) {
	return s.products.NewArrivals(ctx, limit)
}

func validateProduct(p *models.Product) error {
	if p.Name == "" {
		return NewValidationError("name", "is required")
	}
	if p.Price <= 0 {
		return NewValidationError("price", "must be greater than zero")
	}
	if p.Category == "" {
		return NewValidationError("category", "is required")
	}
	if p.RecycledMaterialPercentage < 0 || p.RecycledMaterialPercentage > 100 {
		return NewValidationError("recycled_material_percentage", "must be between 0 and 100")
	}
	if p.EnergyEfficiencyRating < 0 || p.EnergyEfficiencyRating > 10 {
		return NewValidationError("energy_efficiency_rating", "must be between 0 and 10")
	}
	if p.CarbonFootprint < 0 || p.CarbonFootprint > 100 {
		return NewValidationError("carbon_footprint", "must be between 0 and 100")
	}
	if p.ExpectedLifespan < 0 || p.ExpectedLifespan > 10 {
		return NewValidationError("expected_lifespan", "must be between 0 and 10")
	}
	return nil
}
