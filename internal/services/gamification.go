package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ecolaura/ecolaura-api/internal/health"
	"github.com/ecolaura/ecolaura-api/internal/models"
	natsclient "github.com/ecolaura/ecolaura-api/internal/nats"
	redisclient "github.com/ecolaura/ecolaura-api/internal/redis"
	"github.com/ecolaura/ecolaura-api/internal/repository"
)

// PointsPerLevel is the fixed level step: level = points/100 + 1.
const PointsPerLevel = 100

const leaderboardSize = 10
const leaderboardCacheTTL = 5 * time.Minute

// LevelForPoints derives a user's level from their lifetime points
func LevelForPoints(points int) int {
	return points/PointsPerLevel + 1
}

// ApplyPoints adds points to the user in memory and recomputes the level.
// Returns true when the user crossed a level threshold. The caller is
// responsible for persisting the user.
func ApplyPoints(user *models.User, points int) bool {
	user.SustainabilityPoints += points
	newLevel := LevelForPoints(user.SustainabilityPoints)
	if newLevel > user.Level {
		user.Level = newLevel
		return true
	}
	return false
}

// AchievementPredicate decides whether a user qualifies for an achievement
type AchievementPredicate func(ctx context.Context, user *models.User) (bool, error)

// GamificationService owns points, levels, achievements and the leaderboard
type GamificationService struct {
	users        *repository.UserRepository
	achievements *repository.AchievementRepository
	orders       *repository.OrderRepository
	reviews      *repository.ReviewRepository
	goals        *repository.GoalRepository
	notifier     *NotificationService
	cache        *redisclient.Client
	events       *natsclient.Client
	predicates   map[string]AchievementPredicate
	logger       *logrus.Logger
}

// NewGamificationService creates a new gamification service and registers
// the achievement predicates
func NewGamificationService(
	users *repository.UserRepository,
	achievements *repository.AchievementRepository,
	orders *repository.OrderRepository,
	reviews *repository.ReviewRepository,
	goals *repository.GoalRepository,
	notifier *NotificationService,
	cache *redisclient.Client,
	events *natsclient.Client,
	logger *logrus.Logger,
) *GamificationService {
	s := &GamificationService{
		users:        users,
		achievements: achievements,
		orders:       orders,
		reviews:      reviews,
		goals:        goals,
		notifier:     notifier,
		cache:        cache,
		events:       events,
		logger:       logger,
	}

	s.predicates = map[string]AchievementPredicate{
		"First Purchase": func(ctx context.Context, user *models.User) (bool, error) {
			count, err := orders.CountByUser(ctx, user.ID)
			return count >= 1, err
		},
		"Eco Warrior": func(ctx context.Context, user *models.User) (bool, error) {
			return user.SustainabilityPoints >= 1000, nil
		},
		"Review Master": func(ctx context.Context, user *models.User) (bool, error) {
			count, err := reviews.CountByUser(ctx, user.ID)
			return count >= 10, err
		},
		"Goal Setter": func(ctx context.Context, user *models.User) (bool, error) {
			count, err := goals.CountByUser(ctx, user.ID, "")
			return count >= 1, err
		},
		"Goal Achiever": func(ctx context.Context, user *models.User) (bool, error) {
			count, err := goals.CountByUser(ctx, user.ID, models.GoalStatusCompleted)
			return count >= 1, err
		},
		"Sustainability Master": func(ctx context.Context, user *models.User) (bool, error) {
			count, err := goals.CountByUser(ctx, user.ID, models.GoalStatusCompleted)
			return count >= 10, err
		},
	}

	return s
}

// DefaultAchievements returns the seed set of achievement definitions.
// Names are the keys into the predicate registry.
func DefaultAchievements() []models.Achievement {
	return []models.Achievement{
		{Name: "First Purchase", Description: "Complete your first purchase", PointValue: 50, Icon: "shopping-bag"},
		{Name: "Eco Warrior", Description: "Earn 1000 sustainability points", PointValue: 100, Icon: "shield"},
		{Name: "Review Master", Description: "Write 10 product reviews", PointValue: 75, Icon: "star"},
		{Name: "Goal Setter", Description: "Create your first sustainability goal", PointValue: 25, Icon: "target"},
		{Name: "Goal Achiever", Description: "Complete a sustainability goal", PointValue: 50, Icon: "check-circle"},
		{Name: "Sustainability Master", Description: "Complete 10 sustainability goals", PointValue: 200, Icon: "award"},
	}
}

// AwardPoints grants points to a user, persists the change, sends a level-up
// notification when a threshold is crossed, and re-evaluates achievements.
func (s *GamificationService) AwardPoints(ctx context.Context, userID uuid.UUID, points int, reason string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewNotFoundError("user")
		}
		return nil, err
	}

	leveledUp := ApplyPoints(user, points)
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to save awarded points: %w", err)
	}

	health.RecordPointsAwarded(points)
	s.afterPointsChange(ctx, user, points, reason, leveledUp)

	if err := s.CheckAchievements(ctx, user); err != nil {
		s.logger.WithError(err).WithField("user_id", user.ID).Warn("Achievement check failed")
	}

	return user, nil
}

// afterPointsChange handles the side effects of a points grant: level-up
// notification, event publishing and leaderboard invalidation. All of it is
// best-effort.
func (s *GamificationService) afterPointsChange(ctx context.Context, user *models.User, points int, reason string, leveledUp bool) {
	s.logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"points":  points,
		"reason":  reason,
		"level":   user.Level,
	}).Info("Sustainability points awarded")

	pointsMessage := fmt.Sprintf("You earned %d sustainability points for %s.", points, reason)
	if _, err := s.notifier.Dispatch(ctx, user, "Points earned", pointsMessage, NotificationTypePoints, map[string]string{
		"points": fmt.Sprintf("%d", points),
		"reason": reason,
	}); err != nil {
		s.logger.WithError(err).WithField("user_id", user.ID).Warn("Failed to store points notification")
	}

	if leveledUp {
		message := fmt.Sprintf("Congratulations! You've reached level %d", user.Level)
		if _, err := s.notifier.Dispatch(ctx, user, "Level up!", message, NotificationTypeLevelUp, map[string]string{
			"level": fmt.Sprintf("%d", user.Level),
		}); err != nil {
			s.logger.WithError(err).WithField("user_id", user.ID).Warn("Failed to store level-up notification")
		}

		if err := s.events.PublishUserLevelUp(ctx, &natsclient.UserLevelUpEvent{
			UserID: user.ID.String(),
			Level:  user.Level,
			Points: user.SustainabilityPoints,
		}); err != nil {
			s.logger.WithError(err).Warn("Failed to publish level-up event")
		}
	}

	if s.cache != nil {
		if err := s.cache.InvalidateLeaderboard(ctx); err != nil {
			s.logger.WithError(err).Warn("Failed to invalidate leaderboard cache")
		}
	}
}

// CheckAchievements evaluates every unearned achievement against its
// predicate and grants the ones the user now qualifies for. Achievement
// point rewards can themselves trigger a level up, but do not re-run the
// achievement scan.
func (s *GamificationService) CheckAchievements(ctx context.Context, user *models.User) error {
	defs, err := s.achievements.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to load achievements: %w", err)
	}

	earned := false
	for i := range defs {
		def := &defs[i]
		if user.HasAchievement(def.ID) {
			continue
		}

		predicate, ok := s.predicates[def.Name]
		if !ok {
			continue
		}

		qualifies, err := predicate(ctx, user)
		if err != nil {
			return fmt.Errorf("failed to evaluate achievement %q: %w", def.Name, err)
		}
		if !qualifies {
			continue
		}

		user.Achievements = append(user.Achievements, def.ID.String())
		leveledUp := ApplyPoints(user, def.PointValue)
		earned = true

		health.RecordAchievementUnlocked()
		health.RecordPointsAwarded(def.PointValue)

		message := fmt.Sprintf("Achievement unlocked: %s! You've earned %d points.", def.Name, def.PointValue)
		if _, err := s.notifier.Dispatch(ctx, user, "Achievement unlocked", message, NotificationTypeAchievement, map[string]string{
			"achievement": def.Name,
		}); err != nil {
			s.logger.WithError(err).WithField("user_id", user.ID).Warn("Failed to store achievement notification")
		}

		if err := s.events.PublishAchievementEarned(ctx, &natsclient.AchievementEarnedEvent{
			UserID:          user.ID.String(),
			AchievementID:   def.ID.String(),
			AchievementName: def.Name,
		}); err != nil {
			s.logger.WithError(err).Warn("Failed to publish achievement event")
		}

		if leveledUp {
			s.afterPointsChange(ctx, user, def.PointValue, "unlocking an achievement", true)
		}
	}

	if !earned {
		return nil
	}

	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to save earned achievements: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.InvalidateLeaderboard(ctx); err != nil {
			s.logger.WithError(err).Warn("Failed to invalidate leaderboard cache")
		}
	}

	return nil
}

// UserStats is the gamification summary for a user
type UserStats struct {
	SustainabilityScore  int                  `json:"sustainability_score"`
	SustainabilityPoints int                  `json:"sustainability_points"`
	Level                int                  `json:"level"`
	PointsToNextLevel    int                  `json:"points_to_next_level"`
	Achievements         []models.Achievement `json:"achievements"`
	Rank                 int64                `json:"rank"`
	TotalUsers           int64                `json:"total_users"`
}

// Stats returns the gamification summary for a user
func (s *GamificationService) Stats(ctx context.Context, userID uuid.UUID) (*UserStats, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewNotFoundError("user")
		}
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(user.Achievements))
	for _, raw := range user.Achievements {
		id, err := uuid.Parse(raw)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}

	earned, err := s.achievements.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load earned achievements: %w", err)
	}

	rank, total, err := s.users.RankByScore(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute rank: %w", err)
	}

	return &UserStats{
		SustainabilityScore:  user.SustainabilityScore,
		SustainabilityPoints: user.SustainabilityPoints,
		Level:                user.Level,
		PointsToNextLevel:    user.Level*PointsPerLevel - user.SustainabilityPoints,
		Achievements:         earned,
		Rank:                 rank,
		TotalUsers:           total,
	}, nil
}

// Leaderboard returns the top users by points, backed by a short-lived
// Redis cache
func (s *GamificationService) Leaderboard(ctx context.Context) ([]redisclient.LeaderboardEntry, error) {
	if s.cache != nil {
		cached, err := s.cache.GetLeaderboard(ctx)
		if err != nil {
			s.logger.WithError(err).Warn("Leaderboard cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	users, err := s.users.Leaderboard(ctx, leaderboardSize)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}

	entries := make([]redisclient.LeaderboardEntry, 0, len(users))
	for _, u := range users {
		entries = append(entries, redisclient.LeaderboardEntry{
			UserID: u.ID,
			Name:   u.Name,
			Points: u.SustainabilityPoints,
			Level:  u.Level,
		})
	}

	if s.cache != nil {
		if err := s.cache.SetLeaderboard(ctx, entries, leaderboardCacheTTL); err != nil {
			s.logger.WithError(err).Warn("Leaderboard cache write failed")
		}
	}

	return entries, nil
}

// ListAchievements returns all achievement definitions
func (s *GamificationService) ListAchievements(ctx context.Context) ([]models.Achievement, error) {
	return s.achievements.List(ctx)
}
