package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"github.com/ecolaura/ecolaura-api/internal/config"
)

// PaymentIntent is the provider-neutral view of a created payment
type PaymentIntent struct {
	ID           string
	ClientSecret string
	Status       string
}

// PaymentProvider abstracts the payment processor
type PaymentProvider interface {
	CreateIntent(ctx context.Context, amount float64, metadata map[string]string) (*PaymentIntent, error)
	GetIntent(ctx context.Context, id string) (*PaymentIntent, error)
}

// StripeProvider implements PaymentProvider on top of the Stripe API,
// wrapped in a circuit breaker so a Stripe outage fails fast instead of
// piling up requests.
type StripeProvider struct {
	api      *client.API
	currency string
	breaker  *gobreaker.CircuitBreaker
	logger   *logrus.Logger
}

// NewStripeProvider creates a Stripe-backed payment provider
func NewStripeProvider(cfg config.StripeConfig, logger *logrus.Logger) *StripeProvider {
	api := &client.API{}
	api.Init(cfg.SecretKey, nil)

	settings := gobreaker.Settings{
		Name:        "stripe",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5 ||
				(counts.Requests >= 10 && float64(counts.TotalFailures)/float64(counts.Requests) >= 0.5)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"circuit_breaker": name,
				"from":            from.String(),
				"to":              to.String(),
			}).Info("Circuit breaker state changed")
		},
	}

	return &StripeProvider{
		api:      api,
		currency: cfg.Currency,
		breaker:  gobreaker.NewCircuitBreaker(settings),
		logger:   logger,
	}
}

// CreateIntent creates a payment intent for the given amount in the
// configured currency. Amount is in major units and converted to cents.
func (p *StripeProvider) CreateIntent(ctx context.Context, amount float64, metadata map[string]string) (*PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(int64(amount * 100)),
		Currency: stripe.String(p.currency),
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	result, err := p.breaker.Execute(func() (interface{}, error) {
		return p.api.PaymentIntents.New(params)
	})
	if err != nil {
		return nil, NewExternalServiceError("stripe", fmt.Errorf("failed to create payment intent: %w", err))
	}

	intent := result.(*stripe.PaymentIntent)
	return &PaymentIntent{
		ID:           intent.ID,
		ClientSecret: intent.ClientSecret,
		Status:       string(intent.Status),
	}, nil
}

// GetIntent retrieves the current state of a payment intent
func (p *StripeProvider) GetIntent(ctx context.Context, id string) (*PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	result, err := p.breaker.Execute(func() (interface{}, error) {
		return p.api.PaymentIntents.Get(id, params)
	})
	if err != nil {
		return nil, NewExternalServiceError("stripe", fmt.Errorf("failed to retrieve payment intent: %w", err))
	}

	intent := result.(*stripe.PaymentIntent)
	return &PaymentIntent{
		ID:           intent.ID,
		ClientSecret: intent.ClientSecret,
		Status:       string(intent.Status),
	}, nil
}
