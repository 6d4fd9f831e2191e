package domain

import (
	"fmt"
)

// Common error types
type ErrNotFound struct {
	Entity string
	ID     string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found with ID: %s", e.Entity, e.ID)
}

// ErrMissingBrochureData is returned when a brochure cannot be generated
// because a required record is absent or inconsistent
type ErrMissingBrochureData struct {
	Field  string
	Reason string
}

func (e *ErrMissingBrochureData) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("missing brochure data [%s]: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("missing brochure data [%s]", e.Field)
}

// ErrRenderFailed wraps a rendering backend failure
type ErrRenderFailed struct {
	Backend string
	Err     error
}

func (e *ErrRenderFailed) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("brochure rendering failed [%s]: %v", e.Backend, e.Err)
	}
	return fmt.Sprintf("brochure rendering failed [%s]", e.Backend)
}

func (e *ErrRenderFailed) Unwrap() error {
	return e.Err
}

// ValidationError represents an error that occurs due to invalid input or parameters
type ValidationError struct {
	Message string
}

// Error implements the error interface
func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s", e.Message)
}

// NewValidationError creates a new validation error with the given message
func NewValidationError(message string) error {
	return ValidationError{
		Message: message,
	}
}
