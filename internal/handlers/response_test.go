package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecolaura/ecolaura-api/internal/services"
)

func TestServiceErrorResponseStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", services.NewNotFoundError("product"), http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("get failed: %w", services.NewNotFoundError("order")), http.StatusNotFound},
		{"validation", services.NewValidationError("price", "must be greater than zero"), http.StatusBadRequest},
		{"conflict", services.NewConflictError("user", "email already registered"), http.StatusConflict},
		{"duplicate confirmation", services.ErrDuplicateConfirmation, http.StatusConflict},
		{"payment failed", services.ErrPaymentFailed, http.StatusBadRequest},
		{"wrapped payment failed", fmt.Errorf("confirm: %w", services.ErrPaymentFailed), http.StatusBadRequest},
		{"invalid frequency", fmt.Errorf("subscribe: %w", services.ErrInvalidFrequency), http.StatusBadRequest},
		{"external service", services.NewExternalServiceError("stripe", errors.New("timeout")), http.StatusBadGateway},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			ServiceErrorResponse(c, tt.err)

			assert.Equal(t, tt.status, w.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, false, body["success"])
			assert.NotEmpty(t, body["message"])
			assert.NotEmpty(t, body["timestamp"])
		})
	}
}

func TestSuccessResponse(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Set("request_id", "req-123")

	SuccessResponse(c, http.StatusOK, "Products retrieved", gin.H{"count": 3})

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "req-123", body["request_id"])
	require.Contains(t, body, "data")
}
