package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/taskwell/taskwell-api/internal/domain"
	"github.com/taskwell/taskwell-api/internal/platform/logger"
	"github.com/taskwell/taskwell-api/internal/store"
)

// PostgresTaskStore implements the store.TaskStore interface using PostgreSQL.
type PostgresTaskStore struct {
	db store.DBTX
}

// NewPostgresTaskStore creates a new PostgresTaskStore.
// It accepts either a database connection or a transaction via store.DBTX.
func NewPostgresTaskStore(db store.DBTX) *PostgresTaskStore {
	return &PostgresTaskStore{
		db: db,
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// WithTx implements store.TaskStore.WithTx
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{db: tx}
}

// Create implements store.TaskStore.Create.
// The ID and both timestamps are assigned by the database and written back
// into the task.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContext(ctx)

	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO tasks (user_id, title, description, due_date, priority, status,
			is_recurring, recurring_pattern_id, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		task.UserID,
		task.Title,
		nullString(task.Description),
		nullTime(task.DueDate),
		task.Priority,
		task.Status,
		task.IsRecurring,
		nullInt64(task.RecurringPatternID),
		nullTime(task.CompletedAt),
	).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)

	if err != nil {
		log.Error("failed to insert task",
			"user_id", task.UserID,
			"error", err)
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: %v", store.ErrRecurringPatternNotFound, err)
		}
		return MapError(err)
	}

	return nil
}

// GetByID implements store.TaskStore.GetByID.
// The owner scope is part of the lookup: a task owned by another user is
// reported as not found.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id int64, userID string) (*domain.Task, error) {
	query := `
		SELECT id, user_id, title, description, due_date, priority, status,
			is_recurring, recurring_pattern_id, created_at, updated_at, completed_at
		FROM tasks
		WHERE id = $1 AND user_id = $2
	`

	task, err := s.scanTask(s.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		return nil, MapError(err)
	}

	tags, err := s.GetTags(ctx, task.ID)
	if err != nil {
		return nil, err
	}
	task.Tags = tags

	return task, nil
}

// Update implements store.TaskStore.Update
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContext(ctx)

	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE tasks
		SET title = $1, description = $2, due_date = $3, priority = $4, status = $5,
			is_recurring = $6, recurring_pattern_id = $7, updated_at = $8, completed_at = $9
		WHERE id = $10 AND user_id = $11
	`

	result, err := s.db.ExecContext(ctx, query,
		task.Title,
		nullString(task.Description),
		nullTime(task.DueDate),
		task.Priority,
		task.Status,
		task.IsRecurring,
		nullInt64(task.RecurringPatternID),
		task.UpdatedAt,
		nullTime(task.CompletedAt),
		task.ID,
		task.UserID,
	)
	if err != nil {
		log.Error("failed to update task",
			"task_id", task.ID,
			"error", err)
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "task"); err != nil {
		return store.ErrTaskNotFound
	}

	return nil
}

// Delete implements store.TaskStore.Delete.
// Associated task_tags rows are removed by ON DELETE CASCADE.
func (s *PostgresTaskStore) Delete(ctx context.Context, id int64, userID string) error {
	log := logger.FromContext(ctx)

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		log.Error("failed to delete task",
			"task_id", id,
			"error", err)
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "task"); err != nil {
		return store.ErrTaskNotFound
	}

	return nil
}

// List implements store.TaskStore.List
func (s *PostgresTaskStore) List(ctx context.Context, userID string, params store.ListTasksParams) ([]*domain.Task, error) {
	log := logger.FromContext(ctx)

	query, args := buildListTasksQuery(userID, params)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list tasks",
			"user_id", userID,
			"error", err)
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var tasks []*domain.Task
	for rows.Next() {
		task, err := s.scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task row: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating task rows: %w", err)
	}

	for _, task := range tasks {
		tags, err := s.GetTags(ctx, task.ID)
		if err != nil {
			return nil, err
		}
		task.Tags = tags
	}

	return tasks, nil
}

// ReplaceTags implements store.TaskStore.ReplaceTags.
// The full association set is replaced: delete all rows for the task, then
// insert one per tag ID.
func (s *PostgresTaskStore) ReplaceTags(ctx context.Context, taskID int64, tagIDs []int64) error {
	log := logger.FromContext(ctx)

	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM task_tags WHERE task_id = $1`, taskID); err != nil {
		log.Error("failed to clear task tags",
			"task_id", taskID,
			"error", err)
		return MapError(err)
	}

	for _, tagID := range tagIDs {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO task_tags (task_id, tag_id) VALUES ($1, $2)`, taskID, tagID)
		if err != nil {
			log.Error("failed to associate tag",
				"task_id", taskID,
				"tag_id", tagID,
				"error", err)
			if IsForeignKeyViolation(err) {
				return fmt.Errorf("%w: tag %d", store.ErrTagNotFound, tagID)
			}
			return MapError(err)
		}
	}

	return nil
}

// GetTags implements store.TaskStore.GetTags
func (s *PostgresTaskStore) GetTags(ctx context.Context, taskID int64) ([]domain.Tag, error) {
	query := `
		SELECT t.id, t.name, t.color, t.created_at, t.updated_at
		FROM tags t
		JOIN task_tags tt ON tt.tag_id = t.id
		WHERE tt.task_id = $1
		ORDER BY t.id
	`

	rows, err := s.db.QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var tags []domain.Tag
	for rows.Next() {
		var tag domain.Tag
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.Color, &tag.CreatedAt, &tag.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tag row: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tag rows: %w", err)
	}

	return tags, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanTask reads one tasks row into a domain.Task, normalizing nullable
// columns into pointers and timestamps into UTC.
func (s *PostgresTaskStore) scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task               domain.Task
		description        sql.NullString
		dueDate            sql.NullTime
		recurringPatternID sql.NullInt64
		completedAt        sql.NullTime
	)

	err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&description,
		&dueDate,
		&task.Priority,
		&task.Status,
		&task.IsRecurring,
		&recurringPatternID,
		&task.CreatedAt,
		&task.UpdatedAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}

	task.Description = description.String
	if dueDate.Valid {
		t := dueDate.Time.UTC()
		task.DueDate = &t
	}
	if recurringPatternID.Valid {
		id := recurringPatternID.Int64
		task.RecurringPatternID = &id
	}
	if completedAt.Valid {
		t := completedAt.Time.UTC()
		task.CompletedAt = &t
	}
	task.CreatedAt = task.CreatedAt.UTC()
	task.UpdatedAt = task.UpdatedAt.UTC()

	return &task, nil
}

// sortColumns whitelists the sortable columns. Anything outside the map
// falls back to due_date so user input can never reach the ORDER BY clause
// directly.
var sortColumns = map[store.SortColumn]string{
	store.SortByDueDate:   "due_date",
	store.SortByPriority:  "priority",
	store.SortByCreatedAt: "created_at",
	store.SortByTitle:     "title",
}

// buildListTasksQuery assembles the SELECT for a task listing: ownership
// filter first, then equality filters, range filters, search, sort and
// pagination. Every user-supplied value is passed as a positional argument.
func buildListTasksQuery(userID string, params store.ListTasksParams) (string, []any) {
	var sb strings.Builder
	sb.WriteString(`SELECT id, user_id, title, description, due_date, priority, status,
		is_recurring, recurring_pattern_id, created_at, updated_at, completed_at
		FROM tasks WHERE user_id = $1`)

	args := []any{userID}

	addCondition := func(clause string, value any) {
		args = append(args, value)
		fmt.Fprintf(&sb, " AND %s $%d", clause, len(args))
	}

	if params.Priority != nil {
		addCondition("priority =", *params.Priority)
	}
	if params.Status != nil {
		addCondition("status =", *params.Status)
	}
	if params.IsRecurring != nil {
		addCondition("is_recurring =", *params.IsRecurring)
	}
	if params.DueDateFrom != nil {
		addCondition("due_date >=", *params.DueDateFrom)
	}
	if params.DueDateTo != nil {
		addCondition("due_date <=", *params.DueDateTo)
	}
	if params.Search != "" {
		args = append(args, "%"+params.Search+"%")
		fmt.Fprintf(&sb, " AND (title ILIKE $%d OR description ILIKE $%d)", len(args), len(args))
	}

	column, ok := sortColumns[params.SortBy]
	if !ok {
		column = "due_date"
	}
	direction := "ASC"
	if params.SortOrder == store.SortDesc {
		direction = "DESC"
	}
	fmt.Fprintf(&sb, " ORDER BY %s %s", column, direction)

	page := params.Page
	if page < 1 {
		page = 1
	}
	pageSize := params.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > store.MaxPageSize {
		pageSize = store.MaxPageSize
	}

	args = append(args, pageSize)
	fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	args = append(args, (page-1)*pageSize)
	fmt.Fprintf(&sb, " OFFSET $%d", len(args))

	return sb.String(), args
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullInt64(i *int64) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *i, Valid: true}
}
