// Package validation provides field-level input validation for API payloads.
//
// Validation failures carry the offending field name so handlers can surface
// them inline to the caller rather than as opaque 400s.
package validation

import (
	"fmt"
	"strings"
)

// Error reports a validation failure on a specific input field.
type Error struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewError creates a validation error for a field
func NewError(field, message string) *Error {
	return &Error{Field: field, Message: message}
}

// RequireNonBlank validates that a value is not empty or whitespace-only
func RequireNonBlank(field, value string) *Error {
	if strings.TrimSpace(value) == "" {
		return NewError(field, "must not be blank")
	}
	return nil
}

// RequireMinLength validates that a value has at least n characters
func RequireMinLength(field, value string, n int) *Error {
	if len(value) < n {
		return NewError(field, fmt.Sprintf("must be at least %d characters", n))
	}
	return nil
}

// RequireMaxLength validates that a value has at most n characters
func RequireMaxLength(field, value string, n int) *Error {
	if len(value) > n {
		return NewError(field, fmt.Sprintf("must be at most %d characters", n))
	}
	return nil
}
