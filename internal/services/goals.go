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

// GoalCompletionPoints is awarded when a user completes a sustainability goal.
const GoalCompletionPoints = 50

// GoalService manages user sustainability goals
type GoalService struct {
	repo         *repository.GoalRepository
	gamification *GamificationService
	notifier     *NotificationService
	logger       *logrus.Logger
}

// NewGoalService creates a new goal service
func NewGoalService(
	repo *repository.GoalRepository,
	gamification *GamificationService,
	notifier *NotificationService,
	logger *logrus.Logger,
) *GoalService {
	return &GoalService{
		repo:         repo,
		gamification: gamification,
		notifier:     notifier,
		logger:       logger,
	}
}

// Create records a new goal for the user and re-evaluates achievements
// (creating a first goal unlocks one)
func (s *GoalService) Create(ctx context.Context, userID uuid.UUID, goal *models.SustainabilityGoal) (*models.SustainabilityGoal, error) {
	if goal.TargetValue <= 0 {
		return nil, NewValidationError("target_value", "must be greater than zero")
	}
	if goal.Deadline != nil && goal.Deadline.Before(time.Now()) {
		return nil, NewValidationError("deadline", "must be in the future")
	}

	goal.UserID = userID
	goal.Status = models.GoalStatusInProgress

	if err := s.repo.Create(ctx, goal); err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}

	message := fmt.Sprintf("New sustainability goal created: %s", goal.Title)
	if _, err := s.notifier.DispatchToUser(ctx, userID, "Goal created", message, NotificationTypeGoal, map[string]string{
		"goal_id": goal.ID.String(),
	}); err != nil {
		s.logger.WithError(err).WithField("goal_id", goal.ID).Warn("Failed to store goal notification")
	}

	user, err := s.gamification.users.GetByID(ctx, userID)
	if err == nil {
		if err := s.gamification.CheckAchievements(ctx, user); err != nil {
			s.logger.WithError(err).WithField("user_id", userID).Warn("Achievement check failed")
		}
	}

	return goal, nil
}

// ListByUser returns the user's goals, expiring any whose deadline has
// passed along the way
func (s *GoalService) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.SustainabilityGoal, error) {
	goals, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	for i := range goals {
		if s.expireIfOverdue(ctx, &goals[i]) {
			continue
		}
	}

	return goals, nil
}

// resolveGoalStatus decides the status after a progress update. Reaching the
// target completes the goal even when the deadline has already passed.
func resolveGoalStatus(goal *models.SustainabilityGoal, currentValue float64, now time.Time) string {
	if currentValue >= goal.TargetValue {
		return models.GoalStatusCompleted
	}
	if goal.Deadline != nil && goal.Deadline.Before(now) {
		return models.GoalStatusFailed
	}
	return models.GoalStatusInProgress
}

// UpdateProgress sets a goal's current value. Reaching the target completes
// the goal, awards points and re-evaluates achievements; missing the deadline
// without reaching the target fails it.
func (s *GoalService) UpdateProgress(ctx context.Context, id, userID uuid.UUID, currentValue float64) (*models.SustainabilityGoal, error) {
	goal, err := s.repo.GetOwned(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewNotFoundError("goal")
		}
		return nil, err
	}

	if goal.Status != models.GoalStatusInProgress {
		return nil, NewConflictError("goal", fmt.Sprintf("goal is already %s", goal.Status))
	}
	if currentValue < 0 {
		return nil, NewValidationError("current_value", "must not be negative")
	}

	goal.CurrentValue = currentValue
	goal.Status = resolveGoalStatus(goal, currentValue, time.Now())

	if err := s.repo.Update(ctx, goal); err != nil {
		return nil, fmt.Errorf("failed to update goal: %w", err)
	}

	switch goal.Status {
	case models.GoalStatusCompleted:
		s.logger.WithFields(logrus.Fields{
			"goal_id": goal.ID,
			"user_id": userID,
		}).Info("Sustainability goal completed")

		message := fmt.Sprintf("Congratulations! You completed your goal %q and earned %d points.", goal.Title, GoalCompletionPoints)
		if _, err := s.notifier.DispatchToUser(ctx, userID, "Goal completed", message, NotificationTypeGoal, map[string]string{
			"goal_id": goal.ID.String(),
		}); err != nil {
			s.logger.WithError(err).WithField("goal_id", goal.ID).Warn("Failed to store goal notification")
		}

		if _, err := s.gamification.AwardPoints(ctx, userID, GoalCompletionPoints, "completing a goal"); err != nil {
			s.logger.WithError(err).WithField("goal_id", goal.ID).Error("Failed to award goal completion points")
		}
	case models.GoalStatusFailed:
		s.notifyExpired(ctx, goal)
	}

	return goal, nil
}

// Delete removes a user's own goal
func (s *GoalService) Delete(ctx context.Context, id, userID uuid.UUID) error {
	if err := s.repo.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NewNotFoundError("goal")
		}
		return err
	}
	return nil
}

// expireIfOverdue fails an in-progress goal whose deadline has passed and
// notifies the owner. Returns true when the goal was expired.
func (s *GoalService) expireIfOverdue(ctx context.Context, goal *models.SustainabilityGoal) bool {
	if goal.Status != models.GoalStatusInProgress || goal.Deadline == nil || goal.Deadline.After(time.Now()) {
		return false
	}

	goal.Status = models.GoalStatusFailed
	if err := s.repo.Update(ctx, goal); err != nil {
		s.logger.WithError(err).WithField("goal_id", goal.ID).Error("Failed to expire goal")
		goal.Status = models.GoalStatusInProgress
		return false
	}

	s.notifyExpired(ctx, goal)

	return true
}

// notifyExpired tells the owner their goal ran out without points
func (s *GoalService) notifyExpired(ctx context.Context, goal *models.SustainabilityGoal) {
	message := fmt.Sprintf("Your goal %q has expired. Set a new one to keep your streak going!", goal.Title)
	if _, err := s.notifier.DispatchToUser(ctx, goal.UserID, "Goal expired", message, NotificationTypeGoal, map[string]string{
		"goal_id": goal.ID.String(),
	}); err != nil {
		s.logger.WithError(err).WithField("goal_id", goal.ID).Warn("Failed to store goal expiry notification")
	}
}
