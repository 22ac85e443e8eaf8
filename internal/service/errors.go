// Package service contains the task lifecycle manager, which orchestrates
// persistence, event publishing, and reminder scheduling for task mutations.
package service

import (
	"fmt"
)

// TaskServiceError wraps task service operation failures with context about
// which operation failed, while preserving the underlying error for
// classification with errors.Is and errors.As.
type TaskServiceError struct {
	// Operation describes the high-level operation that failed
	// (e.g. "create task", "update task").
	Operation string

	// Err is the underlying error that caused the failure.
	Err error
}

// Error implements the error interface.
func (e *TaskServiceError) Error() string {
	return fmt.Sprintf("task service: failed to %s: %v", e.Operation, e.Err)
}

// Unwrap returns the underlying error to support errors.Is and errors.As.
func (e *TaskServiceError) Unwrap() error {
	return e.Err
}

// NewTaskServiceError creates a new TaskServiceError for the given operation.
func NewTaskServiceError(operation string, err error) *TaskServiceError {
	return &TaskServiceError{
		Operation: operation,
		Err:       err,
	}
}

// SideEffectError reports that a task mutation committed successfully but a
// post-commit side effect (event publish or reminder scheduling) failed. The
// stored task state reflects the mutation; only the side effect is missing.
// Callers receive the mutated task alongside this error and must treat the
// two facts independently.
type SideEffectError struct {
	// Operation names the side effect that failed
	// (e.g. "publish created event", "schedule reminder").
	Operation string

	// TaskID identifies the task whose mutation committed.
	TaskID int64

	// Err is the underlying failure from the sidecar gateway.
	Err error
}

// Error implements the error interface.
func (e *SideEffectError) Error() string {
	return fmt.Sprintf("task %d committed but side effect failed: %s: %v", e.TaskID, e.Operation, e.Err)
}

// Unwrap returns the underlying error to support errors.Is and errors.As.
func (e *SideEffectError) Unwrap() error {
	return e.Err
}
