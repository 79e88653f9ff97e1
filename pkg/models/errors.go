package models

import (
	"errors"
	"fmt"
)

// ErrInvalidSpec indicates a value object failed construction-time validation
var ErrInvalidSpec = errors.New("invalid specification")

// ValidationError describes which field of which entity failed validation
type ValidationError struct {
	Entity  string
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s.%s: %s", e.Entity, e.Field, e.Message)
}

// Unwrap lets callers match ErrInvalidSpec with errors.Is
func (e *ValidationError) Unwrap() error {
	return ErrInvalidSpec
}

func newValidationError(entity, field, format string, args ...interface{}) error {
	return &ValidationError{
		Entity:  entity,
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}
