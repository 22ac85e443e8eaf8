package api

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/taskwell/taskwell-api/internal/domain"
	"github.com/taskwell/taskwell-api/internal/platform/dapr"
	"github.com/taskwell/taskwell-api/internal/service"
	"github.com/taskwell/taskwell-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	var validationErrs validator.ValidationErrors
	var sideEffectErr *service.SideEffectError
	var daprErr *dapr.Error

	switch {
	// Sidecar failures after the mutation committed, and direct sidecar
	// failures, are upstream problems.
	case errors.As(err, &sideEffectErr),
		errors.As(err, &daprErr):
		return http.StatusBadGateway

	// Not found errors
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	// Bad request errors
	case domain.IsValidationError(err),
		errors.Is(err, store.ErrInvalidEntity),
		errors.As(err, &validationErrs):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var sideEffectErr *service.SideEffectError
	var daprErr *dapr.Error
	var validationErr *domain.ValidationError
	var fieldErrs validator.ValidationErrors

	switch {
	case errors.As(err, &fieldErrs):
		return sanitizeFieldErrors(fieldErrs)

	case errors.As(err, &sideEffectErr):
		return "Task saved, but downstream notification delivery failed"

	case errors.As(err, &daprErr):
		return "Upstream service unavailable"

	case errors.Is(err, store.ErrTaskNotFound):
		return "Task not found"

	case errors.Is(err, store.ErrTagNotFound):
		return "Tag not found"

	case errors.Is(err, store.ErrRecurringPatternNotFound):
		return "Recurring pattern not found"

	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	case errors.Is(err, store.ErrDuplicate):
		return "Resource already exists"

	case errors.As(err, &validationErr):
		return validationErr.Field + ": " + validationErr.Message

	case errors.Is(err, domain.ErrTaskDueDateInPast):
		return "Due date cannot be in the past"

	case errors.Is(err, domain.ErrTaskTitleEmpty):
		return "Title is required"

	case errors.Is(err, domain.ErrTaskTitleTooLong):
		return "Title exceeds the maximum length"

	case domain.IsValidationError(err):
		return "Invalid task data"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	default:
		return "An unexpected error occurred"
	}
}

// sanitizeFieldErrors reduces validator output to field names and failed
// rules, without echoing submitted values back to the client.
func sanitizeFieldErrors(fieldErrs validator.ValidationErrors) string {
	if len(fieldErrs) == 0 {
		return "Invalid request"
	}
	first := fieldErrs[0]
	switch first.Tag() {
	case "required":
		return "Field '" + first.Field() + "' is required"
	case "max":
		return "Field '" + first.Field() + "' exceeds the maximum length"
	case "oneof":
		return "Field '" + first.Field() + "' has an unsupported value"
	default:
		return "Field '" + first.Field() + "' is invalid"
	}
}
