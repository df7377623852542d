package config

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrInvalid  = errors.New("invalid configuration")
	ErrNotFound = errors.New("layer not found in configuration")
)

// ValidationError provides detailed information about validation failures.
// It unwraps to ErrInvalid.
type ValidationError struct {
	Field   string // Dotted path of the offending field (e.g. "layers[1].matmul.forward")
	Value   any    // Offending value
	Details string // Additional details
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("%s: %s = %v: %s", ErrInvalid, e.Field, e.Value, e.Details)
	}
	return fmt.Sprintf("%s: %s: %s", ErrInvalid, e.Field, e.Details)
}

// Unwrap returns ErrInvalid.
func (e *ValidationError) Unwrap() error {
	return ErrInvalid
}

func invalid(field string, value any, details string) error {
	return &ValidationError{Field: field, Value: value, Details: details}
}
