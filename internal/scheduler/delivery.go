package scheduler

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/ecolaura/ecolaura-api/internal/config"
	"github.com/ecolaura/ecolaura-api/internal/health"
	redisclient "github.com/ecolaura/ecolaura-api/internal/redis"
	"github.com/ecolaura/ecolaura-api/internal/services"
)

const sweepLeaseTTL = 10 * time.Minute

// DeliveryScheduler runs the daily subscription delivery sweep. A Redis
// lease keeps concurrent instances from sweeping the same subscriptions.
type DeliveryScheduler struct {
	subscriptions *services.SubscriptionService
	cache         *redisclient.Client
	config        config.SchedulerConfig
	logger        *logrus.Logger
	instanceID    string
	cron          *cron.Cron
	mu            sync.Mutex
	running       bool
}

// NewDeliveryScheduler creates a new delivery scheduler
func NewDeliveryScheduler(
	subscriptions *services.SubscriptionService,
	cache *redisclient.Client,
	cfg config.SchedulerConfig,
	logger *logrus.Logger,
) *DeliveryScheduler {
	return &DeliveryScheduler{
		subscriptions: subscriptions,
		cache:         cache,
		config:        cfg,
		logger:        logger,
		instanceID:    uuid.New().String(),
	}
}

// Start starts the delivery scheduler
func (s *DeliveryScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	if !s.config.DeliverySweepEnabled {
		s.logger.Info("Subscription delivery sweep is disabled")
		return nil
	}

	s.cron = cron.New(cron.WithSeconds())

	schedule := s.config.DeliverySweepSchedule
	if schedule == "" {
		schedule = "0 0 8 * * *" // 8 AM daily
	}

	// Accept standard 5-field expressions by prefixing a seconds field
	fields := strings.Fields(schedule)
	if len(fields) == 5 {
		schedule = "0 " + schedule
	}

	_, err := s.cron.AddFunc(schedule, s.runSweep)
	if err != nil {
		s.logger.WithError(err).Error("Failed to schedule delivery sweep")
		return err
	}

	s.cron.Start()
	s.running = true

	s.logger.WithFields(logrus.Fields{
		"schedule":    s.config.DeliverySweepSchedule,
		"instance_id": s.instanceID,
	}).Info("Subscription delivery scheduler started")

	return nil
}

// Stop stops the delivery scheduler
func (s *DeliveryScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running || s.cron == nil {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.running = false
	s.logger.Info("Subscription delivery scheduler stopped")
}

// runSweep processes every subscription due for delivery
func (s *DeliveryScheduler) runSweep() {
	ctx := context.Background()
	startTime := time.Now()

	if s.cache != nil {
		acquired, err := s.cache.AcquireSweepLease(ctx, s.instanceID, sweepLeaseTTL)
		if err != nil {
			s.logger.WithError(err).Error("Failed to acquire sweep lease")
			health.RecordSweepRun(false, 0)
			return
		}
		if !acquired {
			s.logger.Info("Delivery sweep skipped, another instance holds the lease")
			return
		}
		defer func() {
			if err := s.cache.ReleaseSweepLease(ctx, s.instanceID); err != nil {
				s.logger.WithError(err).Warn("Failed to release sweep lease")
			}
		}()
	}

	s.logger.Info("Starting subscription delivery sweep")

	processed, err := s.subscriptions.ProcessDueDeliveries(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Delivery sweep failed")
		health.RecordSweepRun(false, processed)
		return
	}

	health.RecordSweepRun(true, processed)
	s.logger.WithFields(logrus.Fields{
		"subscriptions_processed": processed,
		"duration":                time.Since(startTime).String(),
	}).Info("Completed subscription delivery sweep")
}

// RunNow triggers an immediate sweep (for testing/manual trigger)
func (s *DeliveryScheduler) RunNow() {
	go s.runSweep()
}

// IsRunning returns whether the scheduler is running
func (s *DeliveryScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Stats returns scheduler state for the admin surface
func (s *DeliveryScheduler) Stats() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := map[string]interface{}{
		"running":     s.running,
		"enabled":     s.config.DeliverySweepEnabled,
		"schedule":    s.config.DeliverySweepSchedule,
		"instance_id": s.instanceID,
	}

	if s.cron != nil && s.running {
		entries := s.cron.Entries()
		if len(entries) > 0 {
			stats["next_run"] = entries[0].Next.Format(time.RFC3339)
		}
	}

	return stats
}
