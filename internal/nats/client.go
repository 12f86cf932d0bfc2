package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/nats-io/nats.go"
)

// Event types
const (
	EventOrderPaid         = "ecolaura.order.paid"
	EventOrderDelivered    = "ecolaura.order.delivered"
	EventUserLevelUp       = "ecolaura.user.level_up"
	EventAchievementEarned = "ecolaura.achievement.earned"
	EventTradeInDecided    = "ecolaura.tradein.decided"
	EventSubscriptionDue   = "ecolaura.subscription.delivery_due"
)

// OrderPaidEvent is published when an order payment is confirmed
type OrderPaidEvent struct {
	EventType     string    `json:"event_type"`
	OrderID       string    `json:"order_id"`
	UserID        string    `json:"user_id"`
	TotalAmount   float64   `json:"total_amount"`
	PointsAwarded int       `json:"points_awarded"`
	Timestamp     time.Time `json:"timestamp"`
}

// OrderDeliveredEvent is published when an order reaches the delivered status
type OrderDeliveredEvent struct {
	EventType string    `json:"event_type"`
	OrderID   string    `json:"order_id"`
	UserID    string    `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

// UserLevelUpEvent is published when a user crosses a level threshold
type UserLevelUpEvent struct {
	EventType string    `json:"event_type"`
	UserID    string    `json:"user_id"`
	Level     int       `json:"level"`
	Points    int       `json:"points"`
	Timestamp time.Time `json:"timestamp"`
}

// AchievementEarnedEvent is published when a user unlocks an achievement
type AchievementEarnedEvent struct {
	EventType       string    `json:"event_type"`
	UserID          string    `json:"user_id"`
	AchievementID   string    `json:"achievement_id"`
	AchievementName string    `json:"achievement_name"`
	Timestamp       time.Time `json:"timestamp"`
}

// TradeInDecidedEvent is published when a trade-in request is approved,
// rejected or completed
type TradeInDecidedEvent struct {
	EventType string    `json:"event_type"`
	TradeInID string    `json:"trade_in_id"`
	UserID    string    `json:"user_id"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// SubscriptionDueEvent is published for each subscription processed by the
// delivery sweep
type SubscriptionDueEvent struct {
	EventType      string    `json:"event_type"`
	SubscriptionID string    `json:"subscription_id"`
	UserID         string    `json:"user_id"`
	BoxName        string    `json:"box_name"`
	NextDelivery   time.Time `json:"next_delivery"`
	Timestamp      time.Time `json:"timestamp"`
}

// Client wraps the NATS connection
type Client struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// Config holds NATS connection configuration
type Config struct {
	URL string
}

// DefaultConfig returns the default NATS configuration
func DefaultConfig() *Config {
	url := os.Getenv("NATS_URL")
	if url == "" {
		url = nats.DefaultURL
	}
	return &Config{
		URL: url,
	}
}

// NewClient creates a new NATS client
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	log.Printf("[NATS] Connecting to %s", cfg.URL)

	opts := []nats.Option{
		nats.Name("ecolaura-api"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Printf("[NATS] Disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("[NATS] Reconnected to %s", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Printf("[NATS] Connection closed")
		}),
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	// Ensure the events stream exists. LimitsPolicy allows multiple
	// downstream consumers (analytics, fulfillment, email digests).
	_, err = js.AddStream(&nats.StreamConfig{
		Name:        "ECOLAURA_EVENTS",
		Description: "Stream for order, gamification and subscription events",
		Subjects:    []string{"ecolaura.>"},
		Storage:     nats.FileStorage,
		Retention:   nats.LimitsPolicy,
		MaxAge:      24 * time.Hour * 7,
		MaxMsgs:     100000,
		Discard:     nats.DiscardOld,
	})
	if err != nil && err != nats.ErrStreamNameAlreadyInUse {
		log.Printf("[NATS] Warning: Could not create stream (may already exist): %v", err)
	}

	log.Printf("[NATS] Connected successfully to %s", cfg.URL)

	return &Client{
		conn: conn,
		js:   js,
	}, nil
}

// publish marshals and publishes an event, skipping silently when the client
// was never initialized. Event delivery is best-effort on the request path.
func (c *Client) publish(subject string, event interface{}) error {
	if c == nil || c.js == nil {
		log.Printf("[NATS] Client not initialized, skipping publish of %s", subject)
		return nil
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	ack, err := c.js.Publish(subject, data)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	log.Printf("[NATS] Published %s event (seq: %d)", subject, ack.Sequence)
	return nil
}

// PublishOrderPaid publishes an order paid event
func (c *Client) PublishOrderPaid(ctx context.Context, event *OrderPaidEvent) error {
	event.EventType = EventOrderPaid
	event.Timestamp = time.Now().UTC()
	return c.publish(EventOrderPaid, event)
}

// PublishOrderDelivered publishes an order delivered event
func (c *Client) PublishOrderDelivered(ctx context.Context, event *OrderDeliveredEvent) error {
	event.EventType = EventOrderDelivered
	event.Timestamp = time.Now().UTC()
	return c.publish(EventOrderDelivered, event)
}

// PublishUserLevelUp publishes a level up event
func (c *Client) PublishUserLevelUp(ctx context.Context, event *UserLevelUpEvent) error {
	event.EventType = EventUserLevelUp
	event.Timestamp = time.Now().UTC()
	return c.publish(EventUserLevelUp, event)
}

// PublishAchievementEarned publishes an achievement earned event
func (c *Client) PublishAchievementEarned(ctx context.Context, event *AchievementEarnedEvent) error {
	event.EventType = EventAchievementEarned
	event.Timestamp = time.Now().UTC()
	return c.publish(EventAchievementEarned, event)
}

// PublishTradeInDecided publishes a trade-in decision event
func (c *Client) PublishTradeInDecided(ctx context.Context, event *TradeInDecidedEvent) error {
	event.EventType = EventTradeInDecided
	event.Timestamp = time.Now().UTC()
	return c.publish(EventTradeInDecided, event)
}

// PublishSubscriptionDue publishes a subscription delivery due event
func (c *Client) PublishSubscriptionDue(ctx context.Context, event *SubscriptionDueEvent) error {
	event.EventType = EventSubscriptionDue
	event.Timestamp = time.Now().UTC()
	return c.publish(EventSubscriptionDue, event)
}

// Close closes the NATS connection
func (c *Client) Close() {
	if c != nil && c.conn != nil {
		c.conn.Close()
		log.Printf("[NATS] Connection closed")
	}
}

// IsConnected returns true if the client is connected
func (c *Client) IsConnected() bool {
	return c != nil && c.conn != nil && c.conn.IsConnected()
}
