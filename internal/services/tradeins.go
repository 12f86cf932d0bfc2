package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ecolaura/ecolaura-api/internal/models"
	natsclient "github.com/ecolaura/ecolaura-api/internal/nats"
	"github.com/ecolaura/ecolaura-api/internal/repository"
)

// TradeInApprovalPoints is awarded when a trade-in request is approved.
const TradeInApprovalPoints = 50

// tradeInTransitions maps each trade-in status to its allowed successors
var tradeInTransitions = map[string][]string{
	models.TradeInStatusPending:  {models.TradeInStatusApproved, models.TradeInStatusRejected},
	models.TradeInStatusApproved: {models.TradeInStatusCompleted},
}

// TradeInService manages used-product trade-in requests
type TradeInService struct {
	repo         *repository.TradeInRepository
	gamification *GamificationService
	notifier     *NotificationService
	events       *natsclient.Client
	logger       *logrus.Logger
}

// NewTradeInService creates a new trade-in service
func NewTradeInService(
	repo *repository.TradeInRepository,
	gamification *GamificationService,
	notifier *NotificationService,
	events *natsclient.Client,
	logger *logrus.Logger,
) *TradeInService {
	return &TradeInService{
		repo:         repo,
		gamification: gamification,
		notifier:     notifier,
		events:       events,
		logger:       logger,
	}
}

// Create submits a new trade-in request
func (s *TradeInService) Create(ctx context.Context, userID uuid.UUID, tradeIn *models.TradeIn) (*models.TradeIn, error) {
	switch tradeIn.Condition {
	case "like_new", "good", "fair", "poor":
	default:
		return nil, NewValidationError("condition", "must be like_new, good, fair or poor")
	}
	if tradeIn.ProductName == "" {
		return nil, NewValidationError("product_name", "is required")
	}

	tradeIn.UserID = userID
	tradeIn.Status = models.TradeInStatusPending

	if err := s.repo.Create(ctx, tradeIn); err != nil {
		return nil, fmt.Errorf("failed to create trade-in: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"trade_in_id": tradeIn.ID,
		"user_id":     userID,
		"product":     tradeIn.ProductName,
	}).Info("Trade-in submitted")

	s.notifyOwner(ctx, tradeIn, fmt.Sprintf("Your trade-in request for %q was received and is being reviewed.", tradeIn.ProductName))

	return tradeIn, nil
}

// ListByUser returns the user's trade-in requests
func (s *TradeInService) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.TradeIn, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Get returns a trade-in visible to the caller
func (s *TradeInService) Get(ctx context.Context, id, userID uuid.UUID, isAdmin bool) (*models.TradeIn, error) {
	tradeIn, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewNotFoundError("trade-in")
		}
		return nil, err
	}
	if !isAdmin && tradeIn.UserID != userID {
		return nil, NewNotFoundError("trade-in")
	}
	return tradeIn, nil
}

// Decide moves a trade-in through its lifecycle. Approval sets the credited
// value, notifies the owner and awards points; completion confirms the
// credit was issued.
func (s *TradeInService) Decide(ctx context.Context, id uuid.UUID, status string, estimatedValue float64) (*models.TradeIn, error) {
	tradeIn, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewNotFoundError("trade-in")
		}
		return nil, err
	}

	allowed := false
	for _, next := range tradeInTransitions[tradeIn.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, NewConflictError("trade-in", fmt.Sprintf("cannot move trade-in from %q to %q", tradeIn.Status, status))
	}

	tradeIn.Status = status
	if status == models.TradeInStatusApproved && estimatedValue > 0 {
		tradeIn.EstimatedValue = estimatedValue
	}

	if err := s.repo.Update(ctx, tradeIn); err != nil {
		return nil, fmt.Errorf("failed to update trade-in: %w", err)
	}

	switch status {
	case models.TradeInStatusApproved:
		message := fmt.Sprintf("Your trade-in for %q was approved for $%.2f credit. You earned %d points!", tradeIn.ProductName, tradeIn.EstimatedValue, TradeInApprovalPoints)
		s.notifyOwner(ctx, tradeIn, message)

		if _, err := s.gamification.AwardPoints(ctx, tradeIn.UserID, TradeInApprovalPoints, "trading in a product"); err != nil {
			s.logger.WithError(err).WithField("trade_in_id", tradeIn.ID).Error("Failed to award trade-in points")
		}
	case models.TradeInStatusRejected:
		message := fmt.Sprintf("Your trade-in for %q was not accepted this time.", tradeIn.ProductName)
		s.notifyOwner(ctx, tradeIn, message)
	case models.TradeInStatusCompleted:
		message := fmt.Sprintf("Your trade-in for %q is complete. $%.2f has been credited to your account.", tradeIn.ProductName, tradeIn.EstimatedValue)
		s.notifyOwner(ctx, tradeIn, message)
	}

	if err := s.events.PublishTradeInDecided(ctx, &natsclient.TradeInDecidedEvent{
		TradeInID: tradeIn.ID.String(),
		UserID:    tradeIn.UserID.String(),
		Status:    status,
	}); err != nil {
		s.logger.WithError(err).Warn("Failed to publish trade-in event")
	}

	return tradeIn, nil
}

func (s *TradeInService) notifyOwner(ctx context.Context, tradeIn *models.TradeIn, message string) {
	if _, err := s.notifier.DispatchToUser(ctx, tradeIn.UserID, "Trade-in update", message, NotificationTypeTradeIn, map[string]string{
		"trade_in_id": tradeIn.ID.String(),
	}); err != nil {
		s.logger.WithError(err).WithField("trade_in_id", tradeIn.ID).Warn("Failed to store trade-in notification")
	}
}
