package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDefaults(t *testing.T) {
	cfg := New()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "ecolaura", cfg.Database.Name)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, 72, cfg.Auth.TokenExpiry)
	assert.Equal(t, "nats://localhost:4222", cfg.NATS.URL)
}

func TestNewFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_NAME", "ecolaura_test")
	t.Setenv("JWT_EXPIRY_HOURS", "24")
	t.Setenv("REDIS_DB", "3")

	cfg := New()

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "ecolaura_test", cfg.Database.Name)
	assert.Equal(t, 24, cfg.Auth.TokenExpiry)
	assert.Equal(t, 3, cfg.Redis.DB)
}

func TestGetEnvIntFallsBackOnGarbage(t *testing.T) {
	t.Setenv("JWT_EXPIRY_HOURS", "not-a-number")

	cfg := New()

	assert.Equal(t, 72, cfg.Auth.TokenExpiry)
}
