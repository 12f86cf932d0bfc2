package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ecolaura/ecolaura-api/internal/config"
)

// Client wraps the Redis client with application-specific methods
type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(cfg config.RedisConfig) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping checks the connection to Redis
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Key prefixes
const (
	LeaderboardKey        = "gamification:leaderboard"
	PaymentClaimKeyPrefix = "orders:payment_intent:"
	SweepLeaseKey         = "subscriptions:delivery_sweep:lease"
)

// LeaderboardEntry is a cached leaderboard row
type LeaderboardEntry struct {
	UserID uuid.UUID `json:"user_id"`
	Name   string    `json:"name"`
	Points int       `json:"points"`
	Level  int       `json:"level"`
}

// GetLeaderboard returns the cached leaderboard, or nil when the cache is cold
func (c *Client) GetLeaderboard(ctx context.Context) ([]LeaderboardEntry, error) {
	data, err := c.rdb.Get(ctx, LeaderboardKey).Bytes()
	if err == redis.Nil {
		return nil, nil // Cache miss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard cache: %w", err)
	}

	var entries []LeaderboardEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal leaderboard cache: %w", err)
	}

	return entries, nil
}

// SetLeaderboard caches the leaderboard for the given TTL
func (c *Client) SetLeaderboard(ctx context.Context, entries []LeaderboardEntry, ttl time.Duration) error {
	jsonData, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to marshal leaderboard cache: %w", err)
	}

	return c.rdb.Set(ctx, LeaderboardKey, jsonData, ttl).Err()
}

// InvalidateLeaderboard drops the cached leaderboard
func (c *Client) InvalidateLeaderboard(ctx context.Context) error {
	return c.rdb.Del(ctx, LeaderboardKey).Err()
}

// ClaimPaymentIntent atomically marks a payment intent as processed.
// Returns false when another confirmation already claimed it.
func (c *Client) ClaimPaymentIntent(ctx context.Context, paymentIntentID string, ttl time.Duration) (bool, error) {
	key := PaymentClaimKeyPrefix + paymentIntentID

	ok, err := c.rdb.SetNX(ctx, key, "processed", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim payment intent: %w", err)
	}

	return ok, nil
}

// ReleasePaymentIntent drops a payment intent claim so a failed
// confirmation can be retried
func (c *Client) ReleasePaymentIntent(ctx context.Context, paymentIntentID string) error {
	key := PaymentClaimKeyPrefix + paymentIntentID
	return c.rdb.Del(ctx, key).Err()
}

// AcquireSweepLease takes the delivery sweep lease for this instance.
// Returns false when another instance holds it.
func (c *Client) AcquireSweepLease(ctx context.Context, instanceID string, ttl time.Duration) (bool, error) {
	ok, err := c.rdb.SetNX(ctx, SweepLeaseKey, instanceID, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire sweep lease: %w", err)
	}

	return ok, nil
}

// ReleaseSweepLease releases the delivery sweep lease if this instance holds it
func (c *Client) ReleaseSweepLease(ctx context.Context, instanceID string) error {
	holder, err := c.rdb.Get(ctx, SweepLeaseKey).Result()
	if err == redis.Nil {
		return nil // Lease already expired
	}
	if err != nil {
		return fmt.Errorf("failed to read sweep lease: %w", err)
	}
	if holder != instanceID {
		return nil // Another instance took over
	}

	return c.rdb.Del(ctx, SweepLeaseKey).Err()
}
