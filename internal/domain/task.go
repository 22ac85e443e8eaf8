package domain

import (
	"errors"
	"time"
	"unicode/utf8"
)

// Task-specific validation errors
var (
	// ErrTaskUserIDEmpty is returned when a task's owner ID is empty.
	ErrTaskUserIDEmpty = errors.New("task user ID cannot be empty")

	// ErrTaskTitleEmpty is returned when a task's title is empty.
	ErrTaskTitleEmpty = errors.New("task title cannot be empty")

	// ErrTaskTitleTooLong is returned when a task's title exceeds 200 characters.
	ErrTaskTitleTooLong = errors.New("task title cannot exceed 200 characters")

	// ErrTaskDescriptionTooLong is returned when a task's description exceeds 2000 characters.
	ErrTaskDescriptionTooLong = errors.New("task description cannot exceed 2000 characters")

	// ErrTaskDueDateInPast is returned when a new task's due date is before the current time.
	ErrTaskDueDateInPast = errors.New("due date cannot be in the past")

	// ErrTaskPriorityInvalid is returned when a task's priority is not a known value.
	ErrTaskPriorityInvalid = errors.New("invalid task priority")

	// ErrTaskStatusInvalid is returned when a task's status is not a known value.
	ErrTaskStatusInvalid = errors.New("invalid task status")

	// ErrTaskCompletedAtMismatch is returned when completed_at and status disagree:
	// completed_at must be set exactly when status is completed.
	ErrTaskCompletedAtMismatch = errors.New("completed_at must be set if and only if status is completed")
)

const (
	maxTitleLength       = 200
	maxDescriptionLength = 2000
)

// Priority represents the urgency level of a task.
type Priority string

// Valid task priorities.
const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// IsValid reports whether the priority is a known value.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// TaskStatus represents where a task is in its lifecycle.
type TaskStatus string

// Valid task statuses.
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// IsValid reports whether the status is a known value.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusCancelled:
		return true
	}
	return false
}

// Task is the core entity of the system. Every task belongs to exactly one
// user; cross-user access is rejected at the service layer, not here.
// The ID is store-assigned and zero until the task is persisted.
type Task struct {
	ID                 int64      `json:"id"`
	UserID             string     `json:"user_id"`
	Title              string     `json:"title"`
	Description        string     `json:"description,omitempty"`
	DueDate            *time.Time `json:"due_date,omitempty"`
	Priority           Priority   `json:"priority"`
	Status             TaskStatus `json:"status"`
	IsRecurring        bool       `json:"is_recurring"`
	RecurringPatternID *int64     `json:"recurring_pattern_id,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`

	// Tags holds the materialized tag set for the task. It is populated by
	// the store on reads and is not part of the tasks row itself.
	Tags []Tag `json:"tags,omitempty"`
}

// NewTask creates a new Task owned by the given user and sets the
// creation/update timestamps. The due date, when present, must not be in
// the past; this rule applies only at creation time, so it lives here
// rather than in Validate.
// Returns an error if validation fails.
func NewTask(
	userID, title, description string,
	dueDate *time.Time,
	priority Priority,
	status TaskStatus,
	isRecurring bool,
	recurringPatternID *int64,
) (*Task, error) {
	now := time.Now().UTC()

	task := &Task{
		UserID:             userID,
		Title:              title,
		Description:        description,
		DueDate:            dueDate,
		Priority:           priority,
		Status:             status,
		IsRecurring:        isRecurring,
		RecurringPatternID: recurringPatternID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if task.Priority == "" {
		task.Priority = PriorityMedium
	}
	if task.Status == "" {
		task.Status = TaskStatusPending
	}
	if task.Status == TaskStatusCompleted {
		task.CompletedAt = &now
	}

	if dueDate != nil && dueDate.Before(now) {
		return nil, ErrTaskDueDateInPast
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.UserID == "" {
		return ErrTaskUserIDEmpty
	}

	if t.Title == "" {
		return ErrTaskTitleEmpty
	}

	if utf8.RuneCountInString(t.Title) > maxTitleLength {
		return ErrTaskTitleTooLong
	}

	if utf8.RuneCountInString(t.Description) > maxDescriptionLength {
		return ErrTaskDescriptionTooLong
	}

	if !t.Priority.IsValid() {
		return ErrTaskPriorityInvalid
	}

	if !t.Status.IsValid() {
		return ErrTaskStatusInvalid
	}

	if (t.Status == TaskStatusCompleted) != (t.CompletedAt != nil) {
		return ErrTaskCompletedAtMismatch
	}

	return nil
}

// Complete marks the task as completed and stamps CompletedAt and
// UpdatedAt. Calling it on an already-completed task re-stamps both
// timestamps but leaves the status unchanged.
func (t *Task) Complete() {
	now := time.Now().UTC()
	t.Status = TaskStatusCompleted
	t.CompletedAt = &now
	t.UpdatedAt = now
}

// TagIDs returns the IDs of the task's materialized tags.
func (t *Task) TagIDs() []int64 {
	ids := make([]int64, 0, len(t.Tags))
	for _, tag := range t.Tags {
		ids = append(ids, tag.ID)
	}
	return ids
}
