package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/ecolaura/ecolaura-api/internal/health"
	"github.com/ecolaura/ecolaura-api/internal/models"
	"github.com/ecolaura/ecolaura-api/internal/notify"
	"github.com/ecolaura/ecolaura-api/internal/repository"
)

// Notification types
const (
	NotificationTypeOrder          = "order_update"
	NotificationTypeReviewReminder = "review_reminder"
	NotificationTypePoints         = "points_earned"
	NotificationTypeComment        = "comment"
	NotificationTypeLevelUp        = "level_up"
	NotificationTypeAchievement    = "achievement"
	NotificationTypeGoal           = "goal_update"
	NotificationTypeTradeIn        = "trade_in_update"
	NotificationTypeSubscription   = "subscription_update"
)

// NotificationService persists notifications and fans them out to delivery
// channels. Persistence must succeed; channel delivery is best-effort.
type NotificationService struct {
	repo     *repository.NotificationRepository
	users    *repository.UserRepository
	channels []notify.Channel
	logger   *logrus.Logger
}

// NewNotificationService creates a new notification service
func NewNotificationService(
	repo *repository.NotificationRepository,
	users *repository.UserRepository,
	channels []notify.Channel,
	logger *logrus.Logger,
) *NotificationService {
	return &NotificationService{
		repo:     repo,
		users:    users,
		channels: channels,
		logger:   logger,
	}
}

// Dispatch stores a notification for the user and attempts delivery on every
// configured channel. A channel failure is logged and counted but never
// bubbles up to the caller.
func (s *NotificationService) Dispatch(ctx context.Context, user *models.User, subject, message, notifType string, data map[string]string) (*models.Notification, error) {
	payload := datatypes.JSON([]byte("{}"))
	if len(data) > 0 {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal notification data: %w", err)
		}
		payload = datatypes.JSON(raw)
	}

	notification := &models.Notification{
		UserID:  user.ID,
		Message: message,
		Type:    notifType,
		Data:    payload,
	}

	if err := s.repo.Create(ctx, notification); err != nil {
		return nil, fmt.Errorf("failed to store notification: %w", err)
	}

	for _, channel := range s.channels {
		msg := &notify.Message{
			Subject: subject,
			Body:    message,
			Data:    data,
		}

		switch channel.Name() {
		case "fcm":
			if user.FCMToken == nil || *user.FCMToken == "" {
				continue
			}
			msg.To = *user.FCMToken
		default:
			msg.To = user.Email
		}

		if err := channel.Send(ctx, msg); err != nil {
			health.RecordNotificationDelivery(channel.Name(), false)
			s.logger.WithError(err).WithFields(logrus.Fields{
				"channel": channel.Name(),
				"user_id": user.ID,
				"type":    notifType,
			}).Warn("Notification channel delivery failed")
			continue
		}
		health.RecordNotificationDelivery(channel.Name(), true)
	}

	return notification, nil
}

// DispatchToUser loads the user and dispatches a notification to them
func (s *NotificationService) DispatchToUser(ctx context.Context, userID uuid.UUID, subject, message, notifType string, data map[string]string) (*models.Notification, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewNotFoundError("user")
		}
		return nil, err
	}

	return s.Dispatch(ctx, user, subject, message, notifType, data)
}

// List returns the user's notifications, newest first
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]models.Notification, error) {
	return s.repo.ListByUser(ctx, userID, unreadOnly)
}

// MarkRead marks a notification as read for its owner
func (s *NotificationService) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	if err := s.repo.MarkRead(ctx, id, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NewNotFoundError("notification")
		}
		return err
	}
	return nil
}
