package services

import (
	"errors"
	"fmt"
)

// ErrInvalidFrequency is returned when a subscription box carries a delivery
// frequency outside weekly/biweekly/monthly.
var ErrInvalidFrequency = errors.New("invalid subscription frequency")

// ErrPaymentFailed is returned when the payment processor reports a
// non-succeeded intent status. The order is left untouched.
var ErrPaymentFailed = errors.New("payment failed")

// ErrDuplicateConfirmation is returned when an order confirmation is retried
// for a payment intent that has already been processed.
var ErrDuplicateConfirmation = errors.New("payment intent already processed")

// NotFoundError indicates an entity is absent or not owned by the caller.
type NotFoundError struct {
	Resource string `json:"resource"`
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

// NewNotFoundError creates a new not-found error
func NewNotFoundError(resource string) *NotFoundError {
	return &NotFoundError{Resource: resource}
}

// IsNotFoundError checks if an error is a NotFoundError
func IsNotFoundError(err error) (*NotFoundError, bool) {
	var notFoundErr *NotFoundError
	if errors.As(err, &notFoundErr) {
		return notFoundErr, true
	}
	return nil, false
}

// ValidationError represents a validation failure on a request field
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidationError checks if an error is a ValidationError
func IsValidationError(err error) (*ValidationError, bool) {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr, true
	}
	return nil, false
}

// ConflictError represents a resource conflict (e.g., already exists)
type ConflictError struct {
	Resource string `json:"resource"`
	Message  string `json:"message"`
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s conflict: %s", e.Resource, e.Message)
}

// NewConflictError creates a new conflict error
func NewConflictError(resource, message string) *ConflictError {
	return &ConflictError{Resource: resource, Message: message}
}

// IsConflictError checks if an error is a ConflictError
func IsConflictError(err error) (*ConflictError, bool) {
	var conflictErr *ConflictError
	if errors.As(err, &conflictErr) {
		return conflictErr, true
	}
	return nil, false
}

// ExternalServiceError wraps a failure from the payment, push, or email provider
type ExternalServiceError struct {
	Service string `json:"service"`
	Err     error  `json:"-"`
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s request failed: %v", e.Service, e.Err)
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}

// NewExternalServiceError creates a new external service error
func NewExternalServiceError(service string, err error) *ExternalServiceError {
	return &ExternalServiceError{Service: service, Err: err}
}
