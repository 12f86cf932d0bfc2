package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ecolaura/ecolaura-api/internal/models"
)

// AchievementRepository handles achievement definitions
type AchievementRepository struct {
	db *gorm.DB
}

// NewAchievementRepository creates a new achievement repository
func NewAchievementRepository(db *gorm.DB) *AchievementRepository {
	return &AchievementRepository{db: db}
}

// List returns all achievement definitions in insertion order
func (r *AchievementRepository) List(ctx context.Context) ([]models.Achievement, error) {
	var achievements []models.Achievement
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&achievements).Error; err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}
	return achievements, nil
}

// ListByIDs returns the achievement definitions matching the given ids
func (r *AchievementRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Achievement, error) {
	if len(ids) == 0 {
		return []models.Achievement{}, nil
	}
	var achievements []models.Achievement
	if err := r.db.WithContext(ctx).Find(&achievements, "id IN ?", ids).Error; err != nil {
		return nil, fmt.Errorf("failed to load achievements: %w", err)
	}
	return achievements, nil
}

// Seed creates the built-in achievement set if it is not present yet
func (r *AchievementRepository) Seed(ctx context.Context, achievements []models.Achievement) error {
	for i := range achievements {
		a := achievements[i]
		if a.ID == uuid.Nil {
			a.ID = uuid.New()
		}
		result := r.db.WithContext(ctx).
			Where("name = ?", a.Name).
			FirstOrCreate(&a)
		if result.Error != nil {
			return fmt.Errorf("failed to seed achievement %q: %w", a.Name, result.Error)
		}
	}
	return nil
}
