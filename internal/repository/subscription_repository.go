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

// SubscriptionRepository handles subscriptions and subscription boxes
type SubscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a new subscription repository
func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// CreateBox persists a new subscription box with product associations
func (r *SubscriptionRepository) CreateBox(ctx context.Context, box *models.SubscriptionBox, productIDs []uuid.UUID) error {
	if box.ID == uuid.Nil {
		box.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(productIDs) > 0 {
			var products []models.Product
			if err := tx.Find(&products, "id IN ?", productIDs).Error; err != nil {
				return fmt.Errorf("failed to load box products: %w", err)
			}
			if len(products) != len(productIDs) {
				return ErrNotFound
			}
			box.Products = products
		}
		if err := tx.Create(box).Error; err != nil {
			return fmt.Errorf("failed to create subscription box: %w", err)
		}
		return nil
	})
}

// GetBoxByID retrieves a subscription box with its products
func (r *SubscriptionRepository) GetBoxByID(ctx context.Context, id uuid.UUID) (*models.SubscriptionBox, error) {
	var box models.SubscriptionBox
	err := r.db.WithContext(ctx).Preload("Products").First(&box, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get subscription box: %w", err)
	}
	return &box, nil
}

// ListBoxes returns all subscription boxes with their products
func (r *SubscriptionRepository) ListBoxes(ctx context.Context) ([]models.SubscriptionBox, error) {
	var boxes []models.SubscriptionBox
	if err := r.db.WithContext(ctx).Preload("Products").Find(&boxes).Error; err != nil {
		return nil, fmt.Errorf("failed to list subscription boxes: %w", err)
	}
	return boxes, nil
}

// CreateSubscription persists a new subscription
func (r *SubscriptionRepository) CreateSubscription(ctx context.Context, sub *models.Subscription) error {
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(sub).Error; err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	return nil
}

// ListByUser returns a user's subscriptions with their boxes
func (r *SubscriptionRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.WithContext(ctx).
		Preload("SubscriptionBox").
		Preload("SubscriptionBox.Products").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&subs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list user subscriptions: %w", err)
	}
	return subs, nil
}

// UpdateStatus sets the status of a subscription owned by the given user.
// Returns ErrNotFound when no owned row matches.
func (r *SubscriptionRepository) UpdateStatus(ctx context.Context, id, userID uuid.UUID, status string) error {
	result := r.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("failed to update subscription status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DueForDelivery returns active subscriptions whose next delivery falls
// before the cutoff, with owner and box preloaded for the sweep.
func (r *SubscriptionRepository) DueForDelivery(ctx context.Context, before time.Time) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("SubscriptionBox").
		Where("status = ?", models.SubscriptionStatusActive).
		Where("next_delivery_date < ?", before).
		Find(&subs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load due subscriptions: %w", err)
	}
	return subs, nil
}

// AdvanceDelivery moves a subscription's next delivery date forward
func (r *SubscriptionRepository) AdvanceDelivery(ctx context.Context, id uuid.UUID, next time.Time) error {
	err := r.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("id = ?", id).
		Update("next_delivery_date", next).Error
	if err != nil {
		return fmt.Errorf("failed to advance delivery date: %w", err)
	}
	return nil
}
