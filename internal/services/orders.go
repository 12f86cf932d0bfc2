package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ecolaura/ecolaura-api/internal/health"
	"github.com/ecolaura/ecolaura-api/internal/models"
	natsclient "github.com/ecolaura/ecolaura-api/internal/nats"
	redisclient "github.com/ecolaura/ecolaura-api/internal/redis"
	"github.com/ecolaura/ecolaura-api/internal/repository"
)

// paymentClaimTTL bounds how long a payment intent claim blocks retries.
// A crashed confirmation frees up after this window.
const paymentClaimTTL = 15 * time.Minute

// OrderService handles order creation, payment confirmation and fulfillment
type OrderService struct {
	orders       *repository.OrderRepository
	products     *repository.ProductRepository
	users        *repository.UserRepository
	payments     PaymentProvider
	gamification *GamificationService
	notifier     *NotificationService
	cache        *redisclient.Client
	events       *natsclient.Client
	logger       *logrus.Logger
}

// NewOrderService creates a new order service
func NewOrderService(
	orders *repository.OrderRepository,
	products *repository.ProductRepository,
	users *repository.UserRepository,
	payments PaymentProvider,
	gamification *GamificationService,
	notifier *NotificationService,
	cache *redisclient.Client,
	events *natsclient.Client,
	logger *logrus.Logger,
) *OrderService {
	return &OrderService{
		orders:       orders,
		products:     products,
		users:        users,
		payments:     payments,
		gamification: gamification,
		notifier:     notifier,
		cache:        cache,
		events:       events,
		logger:       logger,
	}
}

// CreateOrderResult is returned after order creation so the client can
// complete the payment
type CreateOrderResult struct {
	Order        *models.Order `json:"order"`
	ClientSecret string        `json:"client_secret"`
}

// Create creates a pending order for the given products and opens a payment
// intent for its total
func (s *OrderService) Create(ctx context.Context, userID uuid.UUID, productIDs []uuid.UUID) (*CreateOrderResult, error) {
	if len(productIDs) == 0 {
		return nil, NewValidationError("products", "at least one product is required")
	}

	total := 0.0
	for _, id := range productIDs {
		product, err := s.products.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, NewNotFoundError("product")
			}
			return nil, err
		}
		total += product.Price
	}
	if total <= 0 {
		return nil, NewValidationError("total", "order total must be greater than zero")
	}

	order := &models.Order{
		UserID:      userID,
		TotalAmount: total,
		Status:      models.OrderStatusPending,
	}

	if err := s.orders.Create(ctx, order, productIDs); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewNotFoundError("product")
		}
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	intent, err := s.payments.CreateIntent(ctx, total, map[string]string{
		"order_id": order.ID.String(),
		"user_id":  userID.String(),
	})
	if err != nil {
		return nil, err
	}

	order.PaymentIntentID = intent.ID
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to attach payment intent: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"order_id":     order.ID,
		"user_id":      userID,
		"total_amount": total,
	}).Info("Order created")

	return &CreateOrderResult{Order: order, ClientSecret: intent.ClientSecret}, nil
}

// Confirm finalizes payment for an order. The whole post-payment cascade
// (order status, points, level, sustainability score) commits in a single
// transaction; notifications, achievements and events follow best-effort.
// Confirming an already-paid order with the same payment intent is a no-op
// and returns the order unchanged.
func (s *OrderService) Confirm(ctx context.Context, orderID, userID uuid.UUID, paymentIntentID string) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewNotFoundError("order")
		}
		return nil, err
	}
	if order.UserID != userID {
		return nil, NewNotFoundError("order")
	}
	if order.PaymentIntentID != paymentIntentID {
		return nil, NewValidationError("payment_intent_id", "payment intent does not match order")
	}

	// Idempotent replay of an already-settled confirmation
	if order.Status == models.OrderStatusPaid || order.Status == models.OrderStatusDelivered {
		return order, nil
	}
	if order.Status != models.OrderStatusPending {
		return nil, NewConflictError("order", fmt.Sprintf("cannot confirm order in status %q", order.Status))
	}

	if s.cache != nil {
		claimed, err := s.cache.ClaimPaymentIntent(ctx, paymentIntentID, paymentClaimTTL)
		if err != nil {
			s.logger.WithError(err).Warn("Payment intent claim failed, proceeding without lock")
		} else if !claimed {
			return nil, ErrDuplicateConfirmation
		}
	}

	release := func() {
		if s.cache != nil {
			if err := s.cache.ReleasePaymentIntent(context.WithoutCancel(ctx), paymentIntentID); err != nil {
				s.logger.WithError(err).Warn("Failed to release payment intent claim")
			}
		}
	}

	intent, err := s.payments.GetIntent(ctx, paymentIntentID)
	if err != nil {
		release()
		return nil, err
	}
	if intent.Status != "succeeded" {
		release()
		health.RecordOrderConfirmation(false)
		return nil, fmt.Errorf("%w: payment intent status %q", ErrPaymentFailed, intent.Status)
	}

	user, err := s.users.GetByID(ctx, order.UserID)
	if err != nil {
		release()
		return nil, err
	}

	points := int(order.TotalAmount)
	leveledUp := ApplyPoints(user, points)
	user.SustainabilityScore = BlendUserScore(user.SustainabilityScore, order.Products)
	order.Status = models.OrderStatusPaid

	if err := s.orders.CompletePurchase(ctx, order, user); err != nil {
		release()
		health.RecordOrderConfirmation(false)
		return nil, fmt.Errorf("failed to complete purchase: %w", err)
	}

	health.RecordOrderConfirmation(true)
	health.RecordPointsAwarded(points)
	s.logger.WithFields(logrus.Fields{
		"order_id": order.ID,
		"user_id":  user.ID,
		"points":   points,
		"level":    user.Level,
	}).Info("Order payment confirmed")

	message := fmt.Sprintf("Your order has been confirmed. You earned %d sustainability points for making a purchase!", points)
	if _, err := s.notifier.Dispatch(ctx, user, "Order confirmed", message, NotificationTypeOrder, map[string]string{
		"order_id": order.ID.String(),
	}); err != nil {
		s.logger.WithError(err).WithField("order_id", order.ID).Warn("Failed to store order confirmation notification")
	}

	s.gamification.afterPointsChange(ctx, user, points, "making a purchase", leveledUp)
	if err := s.gamification.CheckAchievements(ctx, user); err != nil {
		s.logger.WithError(err).WithField("user_id", user.ID).Warn("Achievement check failed")
	}

	if err := s.events.PublishOrderPaid(ctx, &natsclient.OrderPaidEvent{
		OrderID:       order.ID.String(),
		UserID:        user.ID.String(),
		TotalAmount:   order.TotalAmount,
		PointsAwarded: points,
	}); err != nil {
		s.logger.WithError(err).Warn("Failed to publish order paid event")
	}

	return order, nil
}

// validStatusTransitions maps each order status to the statuses it may
// move to
var validStatusTransitions = map[string][]string{
	models.OrderStatusPending:   {models.OrderStatusPaid, models.OrderStatusCancelled},
	models.OrderStatusPaid:      {models.OrderStatusDelivered, models.OrderStatusCancelled},
	models.OrderStatusDelivered: {},
	models.OrderStatusCancelled: {},
}

// UpdateStatus moves an order to a new status. Reaching delivered triggers a
// review reminder listing the purchased products.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status string) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewNotFoundError("order")
		}
		return nil, err
	}

	allowed := false
	for _, next := range validStatusTransitions[order.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, NewConflictError("order", fmt.Sprintf("cannot move order from %q to %q", order.Status, status))
	}

	order.Status = status
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	if status == models.OrderStatusDelivered {
		names := make([]string, 0, len(order.Products))
		for _, p := range order.Products {
			names = append(names, p.Name)
		}
		message := fmt.Sprintf("Your order has been delivered! We'd love to hear what you think of %s.", strings.Join(names, ", "))
		if _, err := s.notifier.DispatchToUser(ctx, order.UserID, "How was your order?", message, NotificationTypeReviewReminder, map[string]string{
			"order_id": order.ID.String(),
		}); err != nil {
			s.logger.WithError(err).WithField("order_id", order.ID).Warn("Failed to store review reminder")
		}

		if err := s.events.PublishOrderDelivered(ctx, &natsclient.OrderDeliveredEvent{
			OrderID: order.ID.String(),
			UserID:  order.UserID.String(),
		}); err != nil {
			s.logger.WithError(err).Warn("Failed to publish order delivered event")
		}
	}

	return order, nil
}

// Get returns an order visible to the caller. Non-admin callers only see
// their own orders.
func (s *OrderService) Get(ctx context.Context, orderID, userID uuid.UUID, isAdmin bool) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewNotFoundError("order")
		}
		return nil, err
	}
	if !isAdmin && order.UserID != userID {
		return nil, NewNotFoundError("order")
	}
	return order, nil
}

// ListByUser returns the user's orders, newest first
func (s *OrderService) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}
