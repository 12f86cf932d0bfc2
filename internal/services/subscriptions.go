package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ecolaura/ecolaura-api/internal/models"
	natsclient "github.com/ecolaura/ecolaura-api/internal/nats"
	"github.com/ecolaura/ecolaura-api/internal/repository"
)

// SubscriptionService manages subscription boxes and user subscriptions
type SubscriptionService struct {
	repo     *repository.SubscriptionRepository
	products *repository.ProductRepository
	notifier *NotificationService
	events   *natsclient.Client
	logger   *logrus.Logger
}

// NewSubscriptionService creates a new subscription service
func NewSubscriptionService(
	repo *repository.SubscriptionRepository,
	products *repository.ProductRepository,
	notifier *NotificationService,
	events *natsclient.Client,
	logger *logrus.Logger,
) *SubscriptionService {
	return &SubscriptionService{
		repo:     repo,
		products: products,
		notifier: notifier,
		events:   events,
		logger:   logger,
	}
}

// NextDeliveryDate advances a delivery date by one box frequency interval
func NextDeliveryDate(from time.Time, frequency string) (time.Time, error) {
	switch frequency {
	case models.FrequencyWeekly:
		return from.AddDate(0, 0, 7), nil
	case models.FrequencyBiweekly:
		return from.AddDate(0, 0, 14), nil
	case models.FrequencyMonthly:
		return from.AddDate(0, 1, 0), nil
	default:
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidFrequency, frequency)
	}
}

// CreateBox creates a new subscription box with its product set
func (s *SubscriptionService) CreateBox(ctx context.Context, box *models.SubscriptionBox, productIDs []uuid.UUID) (*models.SubscriptionBox, error) {
	if _, err := NextDeliveryDate(time.Now(), box.Frequency); err != nil {
		return nil, NewValidationError("frequency", "must be weekly, biweekly or monthly")
	}
	if box.Price <= 0 {
		return nil, NewValidationError("price", "must be greater than zero")
	}

	if err := s.repo.CreateBox(ctx, box, productIDs); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewNotFoundError("product")
		}
		return nil, fmt.Errorf("failed to create subscription box: %w", err)
	}

	return box, nil
}

// ListBoxes returns all available subscription boxes
func (s *SubscriptionService) ListBoxes(ctx context.Context) ([]models.SubscriptionBox, error) {
	return s.repo.ListBoxes(ctx)
}

// GetBox returns a single subscription box with its products
func (s *SubscriptionService) GetBox(ctx context.Context, id uuid.UUID) (*models.SubscriptionBox, error) {
	box, err := s.repo.GetBoxByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewNotFoundError("subscription box")
		}
		return nil, err
	}
	return box, nil
}

// Subscribe enrolls a user in a box. The first delivery is scheduled one
// frequency interval out.
func (s *SubscriptionService) Subscribe(ctx context.Context, userID, boxID uuid.UUID) (*models.Subscription, error) {
	box, err := s.repo.GetBoxByID(ctx, boxID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewNotFoundError("subscription box")
		}
		return nil, err
	}

	next, err := NextDeliveryDate(time.Now(), box.Frequency)
	if err != nil {
		return nil, err
	}

	sub := &models.Subscription{
		UserID:            userID,
		SubscriptionBoxID: box.ID,
		Status:            models.SubscriptionStatusActive,
		NextDeliveryDate:  next,
	}

	if err := s.repo.CreateSubscription(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"subscription_id": sub.ID,
		"user_id":         userID,
		"box":             box.Name,
		"next_delivery":   next,
	}).Info("Subscription created")

	message := fmt.Sprintf("You're subscribed to the %s box! Your first delivery is scheduled for %s.", box.Name, next.Format("January 2, 2006"))
	if _, err := s.notifier.DispatchToUser(ctx, userID, "Subscription confirmed", message, NotificationTypeSubscription, map[string]string{
		"subscription_id": sub.ID.String(),
	}); err != nil {
		s.logger.WithError(err).WithField("subscription_id", sub.ID).Warn("Failed to store subscription notification")
	}

	sub.SubscriptionBox = *box
	return sub, nil
}

// ListByUser returns the user's subscriptions with their boxes
func (s *SubscriptionService) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Subscription, error) {
	return s.repo.ListByUser(ctx, userID)
}

// UpdateStatus pauses, resumes or cancels a user's own subscription
func (s *SubscriptionService) UpdateStatus(ctx context.Context, id, userID uuid.UUID, status string) error {
	switch status {
	case models.SubscriptionStatusActive, models.SubscriptionStatusPaused, models.SubscriptionStatusCancelled:
	default:
		return NewValidationError("status", "must be active, paused or cancelled")
	}

	if err := s.repo.UpdateStatus(ctx, id, userID, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NewNotFoundError("subscription")
		}
		return err
	}

	return nil
}

// ProcessDueDeliveries finds active subscriptions due before tomorrow,
// notifies their owners and schedules the following delivery. A failure on
// one subscription never blocks the rest. Returns the number of
// subscriptions advanced.
func (s *SubscriptionService) ProcessDueDeliveries(ctx context.Context) (int, error) {
	now := time.Now()
	tomorrow := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)

	due, err := s.repo.DueForDelivery(ctx, tomorrow)
	if err != nil {
		return 0, fmt.Errorf("failed to load due subscriptions: %w", err)
	}

	processed := 0
	for i := range due {
		sub := &due[i]
		log := s.logger.WithFields(logrus.Fields{
			"subscription_id": sub.ID,
			"user_id":         sub.UserID,
			"box":             sub.SubscriptionBox.Name,
		})

		next, err := NextDeliveryDate(sub.NextDeliveryDate, sub.SubscriptionBox.Frequency)
		if err != nil {
			log.WithError(err).Error("Skipping subscription with invalid frequency")
			continue
		}

		message := fmt.Sprintf("Your %s box is on its way! Your next delivery is scheduled for %s.", sub.SubscriptionBox.Name, next.Format("January 2, 2006"))
		if _, err := s.notifier.Dispatch(ctx, &sub.User, "Delivery on the way", message, NotificationTypeSubscription, map[string]string{
			"subscription_id": sub.ID.String(),
		}); err != nil {
			log.WithError(err).Error("Failed to store delivery notification, will retry next sweep")
			continue
		}

		if err := s.repo.AdvanceDelivery(ctx, sub.ID, next); err != nil {
			log.WithError(err).Error("Failed to advance delivery date")
			continue
		}

		if err := s.events.PublishSubscriptionDue(ctx, &natsclient.SubscriptionDueEvent{
			SubscriptionID: sub.ID.String(),
			UserID:         sub.UserID.String(),
			BoxName:        sub.SubscriptionBox.Name,
			NextDelivery:   next,
		}); err != nil {
			log.WithError(err).Warn("Failed to publish delivery event")
		}

		processed++
	}

	return processed, nil
}
