package api

import (
	"time"

	"github.com/taskwell/taskwell-api/internal/domain"
)

// CreateTaskRequest represents the payload for creating a task. Priority and
// Status may be omitted; the service applies the defaults (medium, pending).
type CreateTaskRequest struct {
	Title              string     `json:"title"                          validate:"required,max=200"`
	Description        string     `json:"description,omitempty"          validate:"max=2000"`
	DueDate            *time.Time `json:"due_date,omitempty"`
	Priority           string     `json:"priority,omitempty"             validate:"omitempty,oneof=high medium low"`
	Status             string     `json:"status,omitempty"               validate:"omitempty,oneof=pending in_progress completed cancelled"`
	IsRecurring        bool       `json:"is_recurring,omitempty"`
	RecurringPatternID *int64     `json:"recurring_pattern_id,omitempty"`
	TagIDs             []int64    `json:"tag_ids,omitempty"`
}

// UpdateTaskRequest represents a partial task update. Absent fields leave
// the task untouched; tag_ids, when present, replaces the full tag set.
type UpdateTaskRequest struct {
	Title              *string    `json:"title,omitempty"                validate:"omitempty,max=200"`
	Description        *string    `json:"description,omitempty"          validate:"omitempty,max=2000"`
	DueDate            *time.Time `json:"due_date,omitempty"`
	Priority           *string    `json:"priority,omitempty"             validate:"omitempty,oneof=high medium low"`
	Status             *string    `json:"status,omitempty"               validate:"omitempty,oneof=pending in_progress completed cancelled"`
	IsRecurring        *bool      `json:"is_recurring,omitempty"`
	RecurringPatternID *int64     `json:"recurring_pattern_id,omitempty"`
	TagIDs             []int64    `json:"tag_ids,omitempty"`
}

// TagResponse represents a tag in API responses.
type TagResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// TaskResponse represents a task in API responses.
type TaskResponse struct {
	ID                 int64         `json:"id"`
	UserID             string        `json:"user_id"`
	Title              string        `json:"title"`
	Description        string        `json:"description,omitempty"`
	DueDate            *time.Time    `json:"due_date,omitempty"`
	Priority           string        `json:"priority"`
	Status             string        `json:"status"`
	IsRecurring        bool          `json:"is_recurring"`
	RecurringPatternID *int64        `json:"recurring_pattern_id,omitempty"`
	CompletedAt        *time.Time    `json:"completed_at,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
	Tags               []TagResponse `json:"tags"`
}

// TaskListResponse represents one page of a task listing.
type TaskListResponse struct {
	Tasks    []TaskResponse `json:"tasks"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

// NewTaskResponse converts a domain task to its API representation.
func NewTaskResponse(task *domain.Task) TaskResponse {
	tags := make([]TagResponse, 0, len(task.Tags))
	for _, tag := range task.Tags {
		tags = append(tags, TagResponse{ID: tag.ID, Name: tag.Name, Color: tag.Color})
	}

	return TaskResponse{
		ID:                 task.ID,
		UserID:             task.UserID,
		Title:              task.Title,
		Description:        task.Description,
		DueDate:            task.DueDate,
		Priority:           string(task.Priority),
		Status:             string(task.Status),
		IsRecurring:        task.IsRecurring,
		RecurringPatternID: task.RecurringPatternID,
		CompletedAt:        task.CompletedAt,
		CreatedAt:          task.CreatedAt,
		UpdatedAt:          task.UpdatedAt,
		Tags:               tags,
	}
}
