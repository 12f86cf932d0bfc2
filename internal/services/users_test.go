package services

import (
	"context"
	"io"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecolaura/ecolaura-api/internal/config"
	"github.com/ecolaura/ecolaura-api/internal/middleware"
	"github.com/ecolaura/ecolaura-api/internal/models"
)

func newTestUserService() *UserService {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewUserService(nil, config.AuthConfig{
		JWTSecret:   "test-secret",
		TokenExpiry: 1,
	}, logger)
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestUserService()
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		userName string
		password string
		field    string
	}{
		{"empty email", "", "Jane Doe", "password123", "email"},
		{"email without at sign", "not-an-email", "Jane Doe", "password123", "email"},
		{"short name", "jane@example.com", "J", "password123", "name"},
		{"short password", "jane@example.com", "Jane Doe", "short", "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.email, tt.userName, tt.password)

			validation, ok := IsValidationError(err)
			require.True(t, ok, "expected a validation error, got %v", err)
			assert.Equal(t, tt.field, validation.Field)
		})
	}
}

func TestIssueTokenRoundTrip(t *testing.T) {
	svc := newTestUserService()
	user := &models.User{
		ID:      uuid.New(),
		Email:   "jane@example.com",
		IsAdmin: true,
	}

	token, err := svc.issueToken(user)
	require.NoError(t, err)

	claims := &middleware.Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	assert.Equal(t, user.ID.String(), claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
	assert.True(t, claims.IsAdmin)
	assert.Equal(t, user.ID.String(), claims.Subject)
	require.NotNil(t, claims.ExpiresAt)
	assert.True(t, claims.ExpiresAt.After(claims.IssuedAt.Time))
}
