// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")
)

// IsValidationError checks if the error is any kind of domain validation
// error. This includes ErrValidation and all entity-specific validation
// sentinels.
func IsValidationError(err error) bool {
	validationErrs := []error{
		ErrValidation,
		ErrTaskUserIDEmpty,
		ErrTaskTitleEmpty,
		ErrTaskTitleTooLong,
		ErrTaskDescriptionTooLong,
		ErrTaskDueDateInPast,
		ErrTaskPriorityInvalid,
		ErrTaskStatusInvalid,
		ErrTaskCompletedAtMismatch,
		ErrTagNameEmpty,
		ErrTagNameTooLong,
		ErrTagColorInvalid,
		ErrPatternTypeInvalid,
		ErrPatternIntervalInvalid,
		ErrPatternCronMissing,
		ErrPatternCronInvalid,
	}
	for _, target := range validationErrs {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// ValidationError carries the offending field along with the validation
// failure. It wraps ErrValidation so callers can detect the whole class
// with errors.Is.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ValidationError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrValidation
}

// NewValidationError creates a new ValidationError for the given field.
// When err is nil the error unwraps to ErrValidation.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}
