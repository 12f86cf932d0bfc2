package health

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// HealthChecker manages health check state and metrics
type HealthChecker struct {
	db        *gorm.DB
	ready     atomic.Bool
	startTime time.Time
	version   string
}

// Prometheus metrics
var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecolaura_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ecolaura_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	dbConnectionStatus = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ecolaura_db_connection_status",
		Help: "Database connection status (1 = connected, 0 = disconnected)",
	})

	serviceInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ecolaura_service_info",
			Help: "Service information",
		},
		[]string{"version"},
	)

	ordersConfirmed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecolaura_orders_confirmed_total",
			Help: "Total number of order payment confirmations",
		},
		[]string{"status"},
	)

	notificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecolaura_notifications_sent_total",
			Help: "Total number of notification channel deliveries",
		},
		[]string{"channel", "status"},
	)

	pointsAwarded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ecolaura_points_awarded_total",
			Help: "Total sustainability points awarded to users",
		},
	)

	achievementsUnlocked = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ecolaura_achievements_unlocked_total",
			Help: "Total achievements unlocked across all users",
		},
	)

	deliverySweepRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecolaura_delivery_sweep_runs_total",
			Help: "Total number of subscription delivery sweep runs",
		},
		[]string{"status"},
	)

	deliverySweepProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ecolaura_delivery_sweep_subscriptions_total",
			Help: "Total subscriptions advanced by the delivery sweep",
		},
	)
)

// NewHealthChecker creates a new health checker instance
func NewHealthChecker(db *gorm.DB, version string) *HealthChecker {
	hc := &HealthChecker{
		db:        db,
		startTime: time.Now(),
		version:   version,
	}

	serviceInfo.WithLabelValues(version).Set(1)

	return hc
}

// SetReady marks the service as ready to receive traffic
func (h *HealthChecker) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady returns whether the service is ready
func (h *HealthChecker) IsReady() bool {
	return h.ready.Load()
}

// CheckDatabase verifies database connectivity
func (h *HealthChecker) CheckDatabase() error {
	sqlDB, err := h.db.DB()
	if err != nil {
		dbConnectionStatus.Set(0)
		return err
	}

	if err := sqlDB.Ping(); err != nil {
		dbConnectionStatus.Set(0)
		return err
	}

	dbConnectionStatus.Set(1)
	return nil
}

// LivezHandler handles liveness probe requests
func (h *HealthChecker) LivezHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}

// ReadyzHandler handles readiness probe requests
// Returns 200 only if the service can handle traffic (DB connected)
func (h *HealthChecker) ReadyzHandler(c *gin.Context) {
	if !h.IsReady() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not_ready",
			"reason": "service not initialized",
		})
		return
	}

	if err := h.CheckDatabase(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not_ready",
			"reason": "database unavailable",
			"error":  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// HealthHandler handles general health check requests
func (h *HealthChecker) HealthHandler(c *gin.Context) {
	uptime := time.Since(h.startTime)

	dbStatus := "connected"
	if err := h.CheckDatabase(); err != nil {
		dbStatus = "disconnected"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "ecolaura-api",
		"version": h.version,
		"uptime":  uptime.String(),
		"database": gin.H{
			"status": dbStatus,
		},
	})
}

// MetricsHandler returns Prometheus metrics handler
func MetricsHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// MetricsMiddleware records HTTP request metrics
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()
		statusStr := http.StatusText(status)
		if statusStr == "" {
			statusStr = "unknown"
		}

		// Skip metrics for health/metrics endpoints to avoid noise
		if path != "/livez" && path != "/readyz" && path != "/metrics" && path != "/health" {
			httpRequestsTotal.WithLabelValues(c.Request.Method, path, statusStr).Inc()
			httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(duration)
		}
	}
}

// RecordOrderConfirmation records an order confirmation attempt
func RecordOrderConfirmation(success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	ordersConfirmed.WithLabelValues(status).Inc()
}

// RecordNotificationDelivery records a channel delivery attempt
func RecordNotificationDelivery(channel string, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	notificationsSent.WithLabelValues(channel, status).Inc()
}

// RecordPointsAwarded records sustainability points granted to a user
func RecordPointsAwarded(points int) {
	if points > 0 {
		pointsAwarded.Add(float64(points))
	}
}

// RecordAchievementUnlocked records a newly unlocked achievement
func RecordAchievementUnlocked() {
	achievementsUnlocked.Inc()
}

// RecordSweepRun records a delivery sweep run
func RecordSweepRun(success bool, processed int) {
	status := "success"
	if !success {
		status = "error"
	}
	deliverySweepRuns.WithLabelValues(status).Inc()
	deliverySweepProcessed.Add(float64(processed))
}
