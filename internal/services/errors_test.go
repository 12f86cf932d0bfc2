package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorHelpersUnwrapWrappedErrors(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		wrapped := fmt.Errorf("failed to load order: %w", NewNotFoundError("order"))

		notFound, ok := IsNotFoundError(wrapped)
		require.True(t, ok)
		assert.Equal(t, "order", notFound.Resource)
	})

	t.Run("validation", func(t *testing.T) {
		wrapped := fmt.Errorf("create failed: %w", NewValidationError("price", "must be greater than zero"))

		validation, ok := IsValidationError(wrapped)
		require.True(t, ok)
		assert.Equal(t, "price", validation.Field)
	})

	t.Run("conflict", func(t *testing.T) {
		wrapped := fmt.Errorf("register failed: %w", NewConflictError("user", "email already registered"))

		conflict, ok := IsConflictError(wrapped)
		require.True(t, ok)
		assert.Equal(t, "user", conflict.Resource)
	})

	t.Run("unrelated error matches nothing", func(t *testing.T) {
		err := errors.New("boom")

		_, ok := IsNotFoundError(err)
		assert.False(t, ok)
		_, ok = IsValidationError(err)
		assert.False(t, ok)
		_, ok = IsConflictError(err)
		assert.False(t, ok)
	})
}

func TestExternalServiceErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewExternalServiceError("stripe", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "stripe")

	var external *ExternalServiceError
	wrapped := fmt.Errorf("payment setup failed: %w", err)
	require.True(t, errors.As(wrapped, &external))
	assert.Equal(t, "stripe", external.Service)
}
