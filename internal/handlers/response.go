package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ecolaura/ecolaura-api/internal/services"
)

// ErrorResponse sends a standardized error response
// Internal errors are logged but not exposed to clients
func ErrorResponse(c *gin.Context, statusCode int, message string, err error) {
	requestID := getRequestID(c)

	if err != nil {
		logrus.WithFields(logrus.Fields{
			"request_id": requestID,
			"status":     statusCode,
		}).WithError(err).Error(message)
	}

	response := gin.H{
		"success":    false,
		"message":    message,
		"request_id": requestID,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	}

	// Only include error details in development mode
	if gin.Mode() == gin.DebugMode && err != nil {
		response["error_details"] = err.Error()
	}

	c.JSON(statusCode, response)
}

// SuccessResponse sends a standardized success response
func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	requestID := getRequestID(c)

	response := gin.H{
		"success":    true,
		"message":    message,
		"request_id": requestID,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	}

	if data != nil {
		response["data"] = data
	}

	c.JSON(statusCode, response)
}

// ServiceErrorResponse maps a service-layer error to the right HTTP status
func ServiceErrorResponse(c *gin.Context, err error) {
	if notFound, ok := services.IsNotFoundError(err); ok {
		ErrorResponse(c, http.StatusNotFound, notFound.Error(), nil)
		return
	}
	if validation, ok := services.IsValidationError(err); ok {
		ErrorResponse(c, http.StatusBadRequest, validation.Error(), nil)
		return
	}
	if conflict, ok := services.IsConflictError(err); ok {
		ErrorResponse(c, http.StatusConflict, conflict.Error(), nil)
		return
	}
	if errors.Is(err, services.ErrDuplicateConfirmation) {
		ErrorResponse(c, http.StatusConflict, "Payment is already being processed", nil)
		return
	}
	if errors.Is(err, services.ErrPaymentFailed) {
		ErrorResponse(c, http.StatusBadRequest, "Payment failed", err)
		return
	}
	if errors.Is(err, services.ErrInvalidFrequency) {
		ErrorResponse(c, http.StatusBadRequest, "Invalid subscription frequency", nil)
		return
	}
	var external *services.ExternalServiceError
	if errors.As(err, &external) {
		ErrorResponse(c, http.StatusBadGateway, "Upstream service unavailable", external)
		return
	}

	ErrorResponse(c, http.StatusInternalServerError, "Internal server error", err)
}

// getRequestID retrieves the request ID set by middleware
func getRequestID(c *gin.Context) string {
	if requestID, exists := c.Get("request_id"); exists {
		return requestID.(string)
	}
	if requestID := c.GetHeader("X-Request-ID"); requestID != "" {
		return requestID
	}
	return time.Now().Format("20060102150405")
}
