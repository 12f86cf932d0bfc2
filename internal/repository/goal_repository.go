package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ecolaura/ecolaura-api/internal/models"
)

// GoalRepository handles sustainability goal persistence
type GoalRepository struct {
	db *gorm.DB
}

// NewGoalRepository creates a new goal repository
func NewGoalRepository(db *gorm.DB) *GoalRepository {
	return &GoalRepository{db: db}
}

// Create persists a new goal
func (r *GoalRepository) Create(ctx context.Context, goal *models.SustainabilityGoal) error {
	if goal.ID == uuid.Nil {
		goal.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(goal).Error; err != nil {
		return fmt.Errorf("failed to create goal: %w", err)
	}
	return nil
}

// GetOwned retrieves a goal scoped to its owner
func (r *GoalRepository) GetOwned(ctx context.Context, id, userID uuid.UUID) (*models.SustainabilityGoal, error) {
	var goal models.SustainabilityGoal
	err := r.db.WithContext(ctx).
		First(&goal, "id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get goal: %w", err)
	}
	return &goal, nil
}

// ListByUser returns a user's goals, newest first
func (r *GoalRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.SustainabilityGoal, error) {
	var goals []models.SustainabilityGoal
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&goals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list user goals: %w", err)
	}
	return goals, nil
}

// Update persists changes to a goal
func (r *GoalRepository) Update(ctx context.Context, goal *models.SustainabilityGoal) error {
	if err := r.db.WithContext(ctx).Save(goal).Error; err != nil {
		return fmt.Errorf("failed to update goal: %w", err)
	}
	return nil
}

// Delete removes a goal scoped to its owner
func (r *GoalRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Delete(&models.SustainabilityGoal{}, "id = ? AND user_id = ?", id, userID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete goal: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByUser returns the number of goals for a user, optionally filtered by status
func (r *GoalRepository) CountByUser(ctx context.Context, userID uuid.UUID, status string) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.SustainabilityGoal{}).
		Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count user goals: %w", err)
	}
	return count, nil
}
