package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/ecolaura/ecolaura-api/internal/models"
)

// ProductSearchQuery carries catalog search filters
type ProductSearchQuery struct {
	Search                 string
	Category               string
	MinPrice               *float64
	MaxPrice               *float64
	MinSustainabilityScore *int
	Tags                   []string
	SortBy                 string
	Page                   int
	PageSize               int
}

// ProductRepository handles catalog persistence
type ProductRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create persists a new product
func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// GetByID retrieves a product by id
func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &product, nil
}

// Update persists changes to a product
func (r *ProductRepository) Update(ctx context.Context, product *models.Product) error {
	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	return nil
}

// List returns all products, newest first
func (r *ProductRepository) List(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// Search runs a filtered, sorted, paginated catalog query
func (r *ProductRepository) Search(ctx context.Context, q ProductSearchQuery) ([]models.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{})

	if q.Search != "" {
		pattern := "%" + q.Search + "%"
		query = query.Where("name ILIKE ? OR description ILIKE ?", pattern, pattern)
	}
	if q.Category != "" {
		query = query.Where("category = ?", q.Category)
	}
	if q.MinPrice != nil {
		query = query.Where("price >= ?", *q.MinPrice)
	}
	if q.MaxPrice != nil {
		query = query.Where("price <= ?", *q.MaxPrice)
	}
	if q.MinSustainabilityScore != nil {
		query = query.Where("sustainability_score >= ?", *q.MinSustainabilityScore)
	}
	if len(q.Tags) > 0 {
		query = query.Where("tags && ?", pq.StringArray(q.Tags))
	}

	switch q.SortBy {
	case "price_asc":
		query = query.Order("price ASC")
	case "price_desc":
		query = query.Order("price DESC")
	case "sustainability_desc":
		query = query.Order("sustainability_score DESC")
	default:
		query = query.Order("created_at DESC")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	pageSize := q.PageSize
	if pageSize < 1 {
		pageSize = 10
	}

	var products []models.Product
	if err := query.Offset((page - 1) * pageSize).Limit(pageSize).Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to search products: %w", err)
	}
	return products, total, nil
}

// Recommended returns products in the given categories at or above the score
// floor, best sustainability first with a random tiebreak.
func (r *ProductRepository) Recommended(ctx context.Context, categories []string, minScore int, excludeCategories bool, limit int) ([]models.Product, error) {
	query := r.db.WithContext(ctx).Where("sustainability_score >= ?", minScore)
	if len(categories) > 0 {
		if excludeCategories {
			query = query.Where("category NOT IN ?", categories)
		} else {
			query = query.Where("category IN ?", categories)
		}
	}

	var products []models.Product
	err := query.
		Order("sustainability_score DESC").
		Order("average_rating DESC").
		Order("RANDOM()").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load recommended products: %w", err)
	}
	return products, nil
}

// Similar returns products in the same category with a sustainability score
// within ±10 of the reference product.
func (r *ProductRepository) Similar(ctx context.Context, product *models.Product, limit int) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("id <> ?", product.ID).
		Where("category = ?", product.Category).
		Where("sustainability_score BETWEEN ? AND ?", product.SustainabilityScore-10, product.SustainabilityScore+10).
		Order("average_rating DESC").
		Order("RANDOM()").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load similar products: %w", err)
	}
	return products, nil
}

// Trending returns high-score products ranked by order volume since the cutoff
func (r *ProductRepository) Trending(ctx context.Context, since time.Time, minScore int, limit int) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Joins("JOIN order_products op ON op.product_id = products.id").
		Joins("JOIN orders o ON o.id = op.order_id").
		Where("o.created_at >= ?", since).
		Where("products.sustainability_score >= ?", minScore).
		Group("products.id").
		Order("COUNT(op.order_id) DESC").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load trending products: %w", err)
	}
	return products, nil
}

// NewArrivals returns the most recently added products
func (r *ProductRepository) NewArrivals(ctx context.Context, limit int) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load new arrivals: %w", err)
	}
	return products, nil
}

// TopSustainable returns the highest-scoring products
func (r *ProductRepository) TopSustainable(ctx context.Context, limit int) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Order("sustainability_score DESC").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load top sustainable products: %w", err)
	}
	return products, nil
}

// UpdateRatings sets the denormalized review averages on a product
func (r *ProductRepository) UpdateRatings(ctx context.Context, productID uuid.UUID, avgRating, avgSustainabilityRating float64) error {
	err := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", productID).
		Updates(map[string]interface{}{
			"average_rating":                avgRating,
			"average_sustainability_rating": avgSustainabilityRating,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update product ratings: %w", err)
	}
	return nil
}

// Count returns the total number of products
func (r *ProductRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}

// RecordScore appends a score-history entry for a product
func (r *ProductRepository) RecordScore(ctx context.Context, productID uuid.UUID, score int, source string) error {
	entry := &models.ScoreHistory{
		ProductID: productID,
		Score:     score,
		Source:    source,
	}
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to record score history: %w", err)
	}
	return nil
}

// ScoreHistory returns a product's score changes, oldest first
func (r *ProductRepository) ScoreHistory(ctx context.Context, productID uuid.UUID) ([]models.ScoreHistory, error) {
	var entries []models.ScoreHistory
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load score history: %w", err)
	}
	return entries, nil
}
