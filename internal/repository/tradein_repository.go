package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ecolaura/ecolaura-api/internal/models"
)

// TradeInRepository handles trade-in request persistence
type TradeInRepository struct {
	db *gorm.DB
}

// NewTradeInRepository creates a new trade-in repository
func NewTradeInRepository(db *gorm.DB) *TradeInRepository {
	return &TradeInRepository{db: db}
}

// Create persists a new trade-in request
func (r *TradeInRepository) Create(ctx context.Context, tradeIn *models.TradeIn) error {
	if tradeIn.ID == uuid.Nil {
		tradeIn.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(tradeIn).Error; err != nil {
		return fmt.Errorf("failed to create trade-in: %w", err)
	}
	return nil
}

// GetByID retrieves a trade-in with its owner
func (r *TradeInRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.TradeIn, error) {
	var tradeIn models.TradeIn
	err := r.db.WithContext(ctx).Preload("User").First(&tradeIn, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get trade-in: %w", err)
	}
	return &tradeIn, nil
}

// ListByUser returns a user's trade-ins, newest first
func (r *TradeInRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.TradeIn, error) {
	var tradeIns []models.TradeIn
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&tradeIns).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list user trade-ins: %w", err)
	}
	return tradeIns, nil
}

// Update persists changes to a trade-in
func (r *TradeInRepository) Update(ctx context.Context, tradeIn *models.TradeIn) error {
	if err := r.db.WithContext(ctx).Omit("User").Save(tradeIn).Error; err != nil {
		return fmt.Errorf("failed to update trade-in: %w", err)
	}
	return nil
}
