// Package apperrors defines the error kinds the service reports to its callers.
package apperrors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// NotFoundError is returned when a referenced resource does not exist.
type NotFoundError struct {
	Resource string
	Field    string
	Value    interface{}
}

// Error implements the error interface for NotFoundError.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found with %s: '%v'", e.Resource, e.Field, e.Value)
}

// ValidationError carries every field constraint a candidate record violated.
type ValidationError struct {
	Errors map[string]string
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Errors))
	for field := range e.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, e.Errors[field]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewNotFoundError creates a NotFoundError.
func NewNotFoundError(resource, field string, value interface{}) error {
	return &NotFoundError{Resource: resource, Field: field, Value: value}
}

// NewValidationError creates a ValidationError, or returns nil for an empty map.
func NewValidationError(fieldErrors map[string]string) error {
	if len(fieldErrors) == 0 {
		return nil
	}
	return &ValidationError{Errors: fieldErrors}
}

// IsNotFound reports whether err is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// AsValidation unwraps a ValidationError from err.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
