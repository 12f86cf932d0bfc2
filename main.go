package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/ecolaura/ecolaura-api/internal/config"
	"github.com/ecolaura/ecolaura-api/internal/handlers"
	"github.com/ecolaura/ecolaura-api/internal/health"
	"github.com/ecolaura/ecolaura-api/internal/middleware"
	"github.com/ecolaura/ecolaura-api/internal/models"
	natsClient "github.com/ecolaura/ecolaura-api/internal/nats"
	"github.com/ecolaura/ecolaura-api/internal/notify"
	redisClient "github.com/ecolaura/ecolaura-api/internal/redis"
	"github.com/ecolaura/ecolaura-api/internal/repository"
	"github.com/ecolaura/ecolaura-api/internal/scheduler"
	"github.com/ecolaura/ecolaura-api/internal/services"
)

const version = "1.0.0"

func main() {
	// .env is optional, real deployments set env vars directly
	_ = godotenv.Load()

	cfg := config.New()
	logger := newLogger(cfg.App)

	db, err := initDatabase(cfg.Database)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}

	if err := autoMigrate(db, logger); err != nil {
		logger.WithError(err).Fatal("Failed to migrate database")
	}

	var cache *redisClient.Client
	cache, err = redisClient.NewClient(cfg.Redis)
	if err != nil {
		logger.WithError(err).Warn("Failed to connect to Redis, caching and idempotency locks disabled")
		cache = nil
	} else {
		logger.Info("Connected to Redis successfully")
	}

	var nc *natsClient.Client
	nc, err = natsClient.NewClient(&natsClient.Config{URL: cfg.NATS.URL})
	if err != nil {
		logger.WithError(err).Warn("Failed to connect to NATS, event publishing disabled")
		nc = nil
	} else {
		logger.Info("Connected to NATS successfully")
		defer nc.Close()
	}

	// Delivery channels are optional, missing credentials just drop the channel
	var channels []notify.Channel
	if cfg.FCM.ProjectID != "" && cfg.FCM.CredentialsJSON != "" {
		fcm, err := notify.NewFCMChannel(context.Background(), cfg.FCM)
		if err != nil {
			logger.WithError(err).Warn("Failed to initialize FCM channel, push notifications disabled")
		} else {
			channels = append(channels, fcm)
			logger.Info("FCM push channel enabled")
		}
	}
	if cfg.Email.SendGridAPIKey != "" {
		channels = append(channels, notify.NewSendGridChannel(cfg.Email))
		logger.Info("SendGrid email channel enabled")
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	goalRepo := repository.NewGoalRepository(db)
	communityRepo := repository.NewCommunityRepository(db)
	tradeInRepo := repository.NewTradeInRepository(db)
	achievementRepo := repository.NewAchievementRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	if err := achievementRepo.Seed(context.Background(), services.DefaultAchievements()); err != nil {
		logger.WithError(err).Warn("Failed to seed achievements")
	}

	// Services
	notificationSvc := services.NewNotificationService(notificationRepo, userRepo, channels, logger)
	gamificationSvc := services.NewGamificationService(userRepo, achievementRepo, orderRepo, reviewRepo, goalRepo, notificationSvc, cache, nc, logger)
	paymentProvider := services.NewStripeProvider(cfg.Stripe, logger)
	orderSvc := services.NewOrderService(orderRepo, productRepo, userRepo, paymentProvider, gamificationSvc, notificationSvc, cache, nc, logger)
	subscriptionSvc := services.NewSubscriptionService(subscriptionRepo, productRepo, notificationSvc, nc, logger)
	goalSvc := services.NewGoalService(goalRepo, gamificationSvc, notificationSvc, logger)
	reviewSvc := services.NewReviewService(reviewRepo, productRepo, gamificationSvc, logger)
	catalogSvc := services.NewCatalogService(productRepo, orderRepo, userRepo, logger)
	communitySvc := services.NewCommunityService(communityRepo, userRepo, notificationSvc, logger)
	tradeInSvc := services.NewTradeInService(tradeInRepo, gamificationSvc, notificationSvc, nc, logger)
	analyticsSvc := services.NewAnalyticsService(userRepo, productRepo, orderRepo, communityRepo, goalRepo, logger)
	userSvc := services.NewUserService(userRepo, cfg.Auth, logger)

	// Background delivery sweep
	sweeper := scheduler.NewDeliveryScheduler(subscriptionSvc, cache, cfg.Scheduler, logger)
	if err := sweeper.Start(); err != nil {
		logger.WithError(err).Fatal("Failed to start delivery scheduler")
	}

	// Handlers
	authHandler := handlers.NewAuthHandler(userSvc)
	userHandler := handlers.NewUserHandler(userSvc, analyticsSvc)
	productHandler := handlers.NewProductHandler(catalogSvc)
	orderHandler := handlers.NewOrderHandler(orderSvc)
	subscriptionHandler := handlers.NewSubscriptionHandler(subscriptionSvc)
	goalHandler := handlers.NewGoalHandler(goalSvc)
	reviewHandler := handlers.NewReviewHandler(reviewSvc)
	communityHandler := handlers.NewCommunityHandler(communitySvc)
	gamificationHandler := handlers.NewGamificationHandler(gamificationSvc)
	tradeInHandler := handlers.NewTradeInHandler(tradeInSvc)
	notificationHandler := handlers.NewNotificationHandler(notificationSvc)
	adminHandler := handlers.NewAdminHandler(analyticsSvc, sweeper)

	healthChecker := health.NewHealthChecker(db, version)

	router := setupRouter(
		cfg,
		logger,
		healthChecker,
		authHandler,
		userHandler,
		productHandler,
		orderHandler,
		subscriptionHandler,
		goalHandler,
		reviewHandler,
		communityHandler,
		gamificationHandler,
		tradeInHandler,
		notificationHandler,
		adminHandler,
	)

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.WithField("addr", server.Addr).Info("Starting ecolaura-api")
		healthChecker.SetReady(true)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")
	healthChecker.SetReady(false)

	// Stop background jobs first so no sweep is mid-flight during shutdown
	sweeper.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	if cache != nil {
		if err := cache.Close(); err != nil {
			logger.WithError(err).Error("Error closing Redis connection")
		}
	}

	logger.Info("Server exited")
}

func newLogger(cfg config.AppConfig) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	return logger
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

func autoMigrate(db *gorm.DB, logger *logrus.Logger) error {
	logger.Info("Starting database migration...")

	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"").Error; err != nil {
		logger.WithError(err).Warn("Failed to create uuid-ossp extension")
	}

	modelsToMigrate := []interface{}{
		&models.User{},
		&models.Product{},
		&models.ScoreHistory{},
		&models.Order{},
		&models.Review{},
		&models.SubscriptionBox{},
		&models.Subscription{},
		&models.SustainabilityGoal{},
		&models.SustainabilityPost{},
		&models.Comment{},
		&models.TradeIn{},
		&models.Achievement{},
		&models.Notification{},
	}

	for _, model := range modelsToMigrate {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	logger.Info("Database migration completed successfully")
	return nil
}

func setupRouter(
	cfg *config.Config,
	logger *logrus.Logger,
	healthChecker *health.HealthChecker,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	productHandler *handlers.ProductHandler,
	orderHandler *handlers.OrderHandler,
	subscriptionHandler *handlers.SubscriptionHandler,
	goalHandler *handlers.GoalHandler,
	reviewHandler *handlers.ReviewHandler,
	communityHandler *handlers.CommunityHandler,
	gamificationHandler *handlers.GamificationHandler,
	tradeInHandler *handlers.TradeInHandler,
	notificationHandler *handlers.NotificationHandler,
	adminHandler *handlers.AdminHandler,
) *gin.Engine {
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{
		"http://localhost:3000",
		"https://ecolaura.com",
		"https://www.ecolaura.com",
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"}
	corsConfig.AllowCredentials = true

	router.Use(cors.New(corsConfig))
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.StructuredLogger(logger))
	router.Use(health.MetricsMiddleware())

	router.GET("/metrics", health.MetricsHandler())
	router.GET("/health", healthChecker.HealthHandler)
	router.GET("/livez", healthChecker.LivezHandler)
	router.GET("/readyz", healthChecker.ReadyzHandler)

	api := router.Group("/api")

	// Public routes
	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	products := api.Group("/products")
	{
		products.GET("", productHandler.Search)
		products.GET("/trending", productHandler.Trending)
		products.GET("/new", productHandler.NewArrivals)
		products.GET("/:id", productHandler.Get)
		products.GET("/:id/similar", productHandler.Similar)
		products.GET("/:id/history", productHandler.History)
		products.GET("/:id/reviews", reviewHandler.ListByProduct)
	}

	community := api.Group("/community")
	{
		community.GET("/posts", communityHandler.ListPosts)
		community.GET("/posts/:id", communityHandler.GetPost)
	}

	subscriptions := api.Group("/subscriptions")
	{
		subscriptions.GET("/boxes", subscriptionHandler.ListBoxes)
		subscriptions.GET("/boxes/:id", subscriptionHandler.GetBox)
	}

	// Authenticated routes
	authed := api.Group("")
	authed.Use(middleware.Auth(cfg.Auth.JWTSecret, logger))
	{
		authed.GET("/users/me", userHandler.GetProfile)
		authed.PUT("/users/me", userHandler.UpdateProfile)
		authed.GET("/users/me/impact", userHandler.GetImpact)

		authed.GET("/products/recommended", productHandler.Recommended)
		authed.POST("/products/:id/reviews", reviewHandler.Create)
		authed.PUT("/reviews/:id", reviewHandler.Update)
		authed.DELETE("/reviews/:id", reviewHandler.Delete)

		authed.POST("/orders", orderHandler.Create)
		authed.GET("/orders", orderHandler.List)
		authed.GET("/orders/:id", orderHandler.Get)
		authed.POST("/orders/:id/confirm", orderHandler.Confirm)

		authed.POST("/subscriptions", subscriptionHandler.Subscribe)
		authed.GET("/subscriptions", subscriptionHandler.List)
		authed.PUT("/subscriptions/:id/status", subscriptionHandler.UpdateStatus)

		authed.POST("/goals", goalHandler.Create)
		authed.GET("/goals", goalHandler.List)
		authed.PUT("/goals/:id/progress", goalHandler.UpdateProgress)
		authed.DELETE("/goals/:id", goalHandler.Delete)

		authed.POST("/community/posts", communityHandler.CreatePost)
		authed.POST("/community/posts/:id/like", communityHandler.LikePost)
		authed.POST("/community/posts/:id/comments", communityHandler.CreateComment)

		authed.GET("/gamification/stats", gamificationHandler.Stats)
		authed.GET("/gamification/leaderboard", gamificationHandler.Leaderboard)
		authed.GET("/gamification/achievements", gamificationHandler.Achievements)

		authed.POST("/trade-ins", tradeInHandler.Create)
		authed.GET("/trade-ins", tradeInHandler.List)
		authed.GET("/trade-ins/:id", tradeInHandler.Get)

		authed.GET("/notifications", notificationHandler.List)
		authed.PUT("/notifications/:id/read", notificationHandler.MarkRead)
	}

	// Admin routes
	admin := api.Group("/admin")
	admin.Use(middleware.Auth(cfg.Auth.JWTSecret, logger))
	admin.Use(middleware.AdminOnly(logger))
	{
		admin.GET("/dashboard", adminHandler.Dashboard)
		admin.POST("/products", productHandler.Create)
		admin.PUT("/products/:id", productHandler.Update)
		admin.POST("/subscriptions/boxes", subscriptionHandler.CreateBox)
		admin.PUT("/orders/:id/status", orderHandler.UpdateStatus)
		admin.PUT("/trade-ins/:id", tradeInHandler.Decide)
		admin.GET("/delivery-sweep", adminHandler.SweepStatus)
		admin.POST("/delivery-sweep", adminHandler.TriggerSweep)
	}

	return router
}
