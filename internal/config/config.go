package config

import (
	"os"
	"strconv"
)

// Config holds all configuration for the service
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	NATS      NATSConfig
	Auth      AuthConfig
	Stripe    StripeConfig
	FCM       FCMConfig
	Email     EmailConfig
	Scheduler SchedulerConfig
	App       AppConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string
	Port string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// NATSConfig holds NATS configuration
type NATSConfig struct {
	URL string
}

// AuthConfig holds session token configuration
type AuthConfig struct {
	JWTSecret   string
	TokenExpiry int // hours
}

// StripeConfig holds payment processor configuration
type StripeConfig struct {
	SecretKey string
	Currency  string
}

// FCMConfig holds Firebase Cloud Messaging configuration
type FCMConfig struct {
	ProjectID       string
	CredentialsJSON string
}

// EmailConfig holds transactional email configuration
type EmailConfig struct {
	SendGridAPIKey string
	FromEmail      string
	FromName       string
}

// SchedulerConfig holds background job configuration
type SchedulerConfig struct {
	DeliverySweepEnabled  bool
	DeliverySweepSchedule string // 6-field cron expression
}

// AppConfig holds application configuration
type AppConfig struct {
	Environment string
	LogLevel    string
}

// New creates a new Config from environment variables
func New() *Config {
	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnv("PORT", "8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			Name:     getEnv("DB_NAME", "ecolaura"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		NATS: NATSConfig{
			URL: getEnv("NATS_URL", "nats://localhost:4222"),
		},
		Auth: AuthConfig{
			JWTSecret:   getEnv("JWT_SECRET", "dev-secret-change-me"),
			TokenExpiry: getEnvInt("JWT_EXPIRY_HOURS", 72),
		},
		Stripe: StripeConfig{
			SecretKey: getEnv("STRIPE_SECRET_KEY", ""),
			Currency:  getEnv("STRIPE_CURRENCY", "usd"),
		},
		FCM: FCMConfig{
			ProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
			CredentialsJSON: getEnv("FIREBASE_CREDENTIALS_JSON", ""),
		},
		Email: EmailConfig{
			SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),
			FromEmail:      getEnv("EMAIL_FROM", "noreply@ecolaura.com"),
			FromName:       getEnv("EMAIL_FROM_NAME", "Ecolaura"),
		},
		Scheduler: SchedulerConfig{
			DeliverySweepEnabled:  getEnvBool("DELIVERY_SWEEP_ENABLED", true),
			DeliverySweepSchedule: getEnv("DELIVERY_SWEEP_SCHEDULE", "0 0 8 * * *"),
		},
		App: AppConfig{
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
