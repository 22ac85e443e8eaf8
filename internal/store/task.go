package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/taskwell/taskwell-api/internal/domain"
)

// SortColumn names a column tasks may be sorted by. Only the listed values
// are accepted; anything else falls back to the default at query-build time.
type SortColumn string

// Valid sort columns for task listings.
const (
	SortByDueDate   SortColumn = "due_date"
	SortByPriority  SortColumn = "priority"
	SortByCreatedAt SortColumn = "created_at"
	SortByTitle     SortColumn = "title"
)

// SortOrder is the direction of a task listing sort.
type SortOrder string

// Valid sort orders.
const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// MaxPageSize caps how many tasks a single listing page may return.
const MaxPageSize = 100

// ListTasksParams carries the filter, sort and pagination settings for a
// task listing. The zero value lists the first page of all of a user's
// tasks sorted by due date ascending.
type ListTasksParams struct {
	// Search is a case-insensitive substring matched against title and
	// description when non-empty.
	Search string

	// Equality filters; nil means "don't filter".
	Priority    *domain.Priority
	Status      *domain.TaskStatus
	IsRecurring *bool

	// Due date range filters; nil means unbounded.
	DueDateFrom *time.Time
	DueDateTo   *time.Time

	SortBy    SortColumn
	SortOrder SortOrder

	// Page is 1-based. PageSize is clamped to MaxPageSize.
	Page     int
	PageSize int
}

// TaskStore defines the interface for task data persistence. All reads and
// writes are scoped by owner: a task belonging to another user behaves
// exactly like a missing task.
type TaskStore interface {
	// Create persists a new task and fills in its store-assigned ID and
	// server-side timestamps. Run it inside a transaction (via WithTx and
	// store.RunInTransaction) whenever tag associations are written in the
	// same operation.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its ID, scoped to the given owner, with
	// its tag set materialized. Returns ErrTaskNotFound when no matching
	// row exists, including when the row exists but belongs to another user.
	GetByID(ctx context.Context, id int64, userID string) (*domain.Task, error)

	// Update persists the task's current field values, scoped by ID and
	// owner. Returns ErrTaskNotFound when no matching row exists.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task, scoped by ID and owner. Associated task_tags
	// rows are removed by the ON DELETE CASCADE constraint on the schema.
	// Returns ErrTaskNotFound when no matching row exists.
	Delete(ctx context.Context, id int64, userID string) error

	// List retrieves one page of the user's tasks. The sequence is finite
	// and non-restartable: no cursor is carried across calls.
	List(ctx context.Context, userID string, params ListTasksParams) ([]*domain.Task, error)

	// ReplaceTags replaces the task's full tag association set with the
	// given tag IDs (delete-all-then-insert). Referencing a missing tag
	// returns ErrTagNotFound. Run inside the same transaction as the task
	// write it accompanies.
	ReplaceTags(ctx context.Context, taskID int64, tagIDs []int64) error

	// GetTags retrieves the tags currently associated with a task.
	GetTags(ctx context.Context, taskID int64) ([]domain.Tag, error)

	// WithTx returns a new TaskStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller,
	// typically through store.RunInTransaction.
	WithTx(tx *sql.Tx) TaskStore
}
