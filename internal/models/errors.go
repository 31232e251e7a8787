package models

import (
	"errors"
	"fmt"
)

// ErrValidation is wrapped by every ValidationError so callers can use errors.Is.
var ErrValidation = errors.New("validation failed")

// ValidationError reports malformed caller input. It is never retried and
// never converted into a degraded response.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError builds a ValidationError with a formatted message.
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
