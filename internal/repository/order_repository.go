package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ecolaura/ecolaura-api/internal/models"
)

// OrderRepository handles order persistence
type OrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create persists a new order together with its product associations
func (r *OrderRepository) Create(ctx context.Context, order *models.Order, productIDs []uuid.UUID) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var products []models.Product
		if len(productIDs) > 0 {
			if err := tx.Find(&products, "id IN ?", productIDs).Error; err != nil {
				return fmt.Errorf("failed to load order products: %w", err)
			}
			if len(products) != len(productIDs) {
				return ErrNotFound
			}
		}
		order.Products = products
		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		return nil
	})
}

// GetByID retrieves an order with its products and owner
func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Products").
		Preload("User").
		First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &order, nil
}

// ListByUser returns a user's orders with products, newest first
func (r *OrderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("Products").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list user orders: %w", err)
	}
	return orders, nil
}

// Update persists changes to an order
func (r *OrderRepository) Update(ctx context.Context, order *models.Order) error {
	if err := r.db.WithContext(ctx).Omit("Products", "User").Save(order).Error; err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}
	return nil
}

// CompletePurchase marks the order paid and applies the buyer's new points,
// level and score in a single transaction, so a crash mid-cascade cannot
// leave points awarded without the matching score update.
func (r *OrderRepository) CompletePurchase(ctx context.Context, order *models.Order, user *models.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Order{}).
			Where("id = ?", order.ID).
			Update("status", order.Status).Error; err != nil {
			return fmt.Errorf("failed to mark order paid: %w", err)
		}
		if err := tx.Model(&models.User{}).
			Where("id = ?", user.ID).
			Updates(map[string]interface{}{
				"sustainability_points": user.SustainabilityPoints,
				"level":                 user.Level,
				"sustainability_score":  user.SustainabilityScore,
			}).Error; err != nil {
			return fmt.Errorf("failed to apply purchase rewards: %w", err)
		}
		return nil
	})
}

// CountByUser returns the number of orders placed by a user
func (r *OrderRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count user orders: %w", err)
	}
	return count, nil
}

// Count returns the total number of orders
func (r *OrderRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Order{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return count, nil
}

// TotalRevenue sums totalAmount across all orders
func (r *OrderRepository) TotalRevenue(ctx context.Context) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum order revenue: %w", err)
	}
	return total, nil
}

// SpendByUser returns total and average order value for a user
func (r *OrderRepository) SpendByUser(ctx context.Context, userID uuid.UUID) (total float64, avg float64, err error) {
	row := struct {
		Total float64
		Avg   float64
	}{}
	err = r.db.WithContext(ctx).Model(&models.Order{}).
		Select("COALESCE(SUM(total_amount), 0) AS total, COALESCE(AVG(total_amount), 0) AS avg").
		Where("user_id = ?", userID).
		Scan(&row).Error
	if err != nil {
		return 0, 0, fmt.Errorf("failed to aggregate user spend: %w", err)
	}
	return row.Total, row.Avg, nil
}

// PurchasedProducts returns every product across the user's orders,
// duplicated per purchase, for impact calculations.
func (r *OrderRepository) PurchasedProducts(ctx context.Context, userID uuid.UUID) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Joins("JOIN order_products op ON op.product_id = products.id").
		Joins("JOIN orders o ON o.id = op.order_id").
		Where("o.user_id = ?", userID).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load purchased products: %w", err)
	}
	return products, nil
}

// CategoriesByUser returns the distinct product categories a user has ordered from
func (r *OrderRepository) CategoriesByUser(ctx context.Context, userID uuid.UUID) ([]string, error) {
	var categories []string
	err := r.db.WithContext(ctx).Model(&models.Product{}).
		Distinct("products.category").
		Joins("JOIN order_products op ON op.product_id = products.id").
		Joins("JOIN orders o ON o.id = op.order_id").
		Where("o.user_id = ?", userID).
		Pluck("products.category", &categories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load user categories: %w", err)
	}
	return categories, nil
}

// CountCreatedSince returns the number of orders placed after the cutoff
func (r *OrderRepository) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("created_at >= ?", since).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count recent orders: %w", err)
	}
	return count, nil
}
