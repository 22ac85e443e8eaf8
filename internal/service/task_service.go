package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/taskwell/taskwell-api/internal/domain"
	"github.com/taskwell/taskwell-api/internal/events"
	"github.com/taskwell/taskwell-api/internal/platform/logger"
	"github.com/taskwell/taskwell-api/internal/reminder"
	"github.com/taskwell/taskwell-api/internal/store"
)

// CreateTaskInput carries the caller-supplied fields for a new task.
// Zero values for Priority and Status select the defaults (medium, pending).
type CreateTaskInput struct {
	Title              string
	Description        string
	DueDate            *time.Time
	Priority           domain.Priority
	Status             domain.TaskStatus
	IsRecurring        bool
	RecurringPatternID *int64
	TagIDs             []int64
}

// UpdateTaskInput carries a partial update. Nil pointer fields leave the
// corresponding task field untouched. A nil TagIDs slice leaves tag
// associations untouched; a non-nil slice (including an empty one) replaces
// them wholesale.
type UpdateTaskInput struct {
	Title              *string
	Description        *string
	DueDate            *time.Time
	Priority           *domain.Priority
	Status             *domain.TaskStatus
	IsRecurring        *bool
	RecurringPatternID *int64
	TagIDs             []int64
}

// TaskService defines the task lifecycle operations. Every mutation persists
// first, then fires side effects (event publish, reminder scheduling) against
// the sidecar gateway. When a side effect fails after the mutation committed,
// the mutated task is returned alongside a *SideEffectError: the stored state
// stands regardless of the error.
type TaskService interface {
	// CreateTask validates and persists a new task owned by userID, publishes
	// a created event, and schedules a reminder when the task has a due date.
	CreateTask(ctx context.Context, userID string, input CreateTaskInput) (*domain.Task, error)

	// GetTask retrieves a task by ID scoped to its owner. Tasks owned by
	// other users are reported as not found.
	GetTask(ctx context.Context, taskID int64, userID string) (*domain.Task, error)

	// ListTasks retrieves the owner's tasks matching the given filter,
	// sort, and pagination parameters.
	ListTasks(ctx context.Context, userID string, params store.ListTasksParams) ([]*domain.Task, error)

	// UpdateTask applies a partial update to an owned task, publishes an
	// updated event, and reschedules the reminder when the task carries a
	// due date.
	UpdateTask(ctx context.Context, taskID int64, userID string, input UpdateTaskInput) (*domain.Task, error)

	// CompleteTask marks an owned task completed and publishes a completed
	// event. Completing an already-completed task refreshes its completion
	// timestamp. Any scheduled reminder is left in place and fires against
	// the completed task.
	CompleteTask(ctx context.Context, taskID int64, userID string) (*domain.Task, error)

	// DeleteTask removes an owned task and publishes a deleted event built
	// from a snapshot captured before deletion.
	DeleteTask(ctx context.Context, taskID int64, userID string) error
}

// taskServiceImpl implements TaskService by coordinating the task store, the
// event publisher, and the reminder scheduler.
type taskServiceImpl struct {
	db           *sql.DB
	taskStore    store.TaskStore
	publisher    events.Publisher
	scheduler    reminder.Scheduler
	reminderLead time.Duration
	logger       *slog.Logger
}

// NewTaskService creates a new TaskService with the given dependencies.
// reminderLead is the interval before a task's due date at which its
// reminder fires.
func NewTaskService(
	db *sql.DB,
	taskStore store.TaskStore,
	publisher events.Publisher,
	scheduler reminder.Scheduler,
	reminderLead time.Duration,
	log *slog.Logger,
) (TaskService, error) {
	if db == nil {
		return nil, domain.NewValidationError("db", "cannot be nil", domain.ErrValidation)
	}
	if taskStore == nil {
		return nil, domain.NewValidationError("taskStore", "cannot be nil", domain.ErrValidation)
	}
	if publisher == nil {
		return nil, domain.NewValidationError("publisher", "cannot be nil", domain.ErrValidation)
	}
	if scheduler == nil {
		return nil, domain.NewValidationError("scheduler", "cannot be nil", domain.ErrValidation)
	}
	if reminderLead < 0 {
		return nil, domain.NewValidationError("reminderLead", "cannot be negative", domain.ErrValidation)
	}
	if log == nil {
		log = slog.Default()
	}

	return &taskServiceImpl{
		db:           db,
		taskStore:    taskStore,
		publisher:    publisher,
		scheduler:    scheduler,
		reminderLead: reminderLead,
		logger:       log.With(slog.String("component", "task_service")),
	}, nil
}

// CreateTask implements TaskService.CreateTask.
func (s *taskServiceImpl) CreateTask(ctx context.Context, userID string, input CreateTaskInput) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := domain.NewTask(
		userID,
		input.Title,
		input.Description,
		input.DueDate,
		input.Priority,
		input.Status,
		input.IsRecurring,
		input.RecurringPatternID,
	)
	if err != nil {
		return nil, NewTaskServiceError("create task", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.taskStore.WithTx(tx)
		if err := txStore.Create(ctx, task); err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}
		if len(input.TagIDs) > 0 {
			if err := txStore.ReplaceTags(ctx, task.ID, input.TagIDs); err != nil {
				return fmt.Errorf("failed to attach tags: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, NewTaskServiceError("create task", err)
	}

	if len(input.TagIDs) > 0 {
		tags, err := s.taskStore.GetTags(ctx, task.ID)
		if err != nil {
			return nil, NewTaskServiceError("create task", err)
		}
		task.Tags = tags
	}

	log.Info("task created",
		slog.Int64("task_id", task.ID),
		slog.String("user_id", task.UserID))

	if err := s.publisher.PublishTaskEvent(ctx, events.EventCreated, task); err != nil {
		log.Error("task created but event publish failed",
			slog.Int64("task_id", task.ID),
			slog.String("error", err.Error()))
		return task, &SideEffectError{Operation: "publish created event", TaskID: task.ID, Err: err}
	}

	if task.DueDate != nil {
		remindAt := task.DueDate.Add(-s.reminderLead)
		if err := s.scheduler.ScheduleReminder(ctx, task.ID, remindAt, task.UserID, task.Title); err != nil {
			log.Error("task created but reminder scheduling failed",
				slog.Int64("task_id", task.ID),
				slog.String("error", err.Error()))
			return task, &SideEffectError{Operation: "schedule reminder", TaskID: task.ID, Err: err}
		}
	}

	return task, nil
}

// GetTask implements TaskService.GetTask.
func (s *taskServiceImpl) GetTask(ctx context.Context, taskID int64, userID string) (*domain.Task, error) {
	task, err := s.taskStore.GetByID(ctx, taskID, userID)
	if err != nil {
		return nil, NewTaskServiceError("get task", err)
	}
	return task, nil
}

// ListTasks implements TaskService.ListTasks.
func (s *taskServiceImpl) ListTasks(ctx context.Context, userID string, params store.ListTasksParams) ([]*domain.Task, error) {
	tasks, err := s.taskStore.List(ctx, userID, params)
	if err != nil {
		return nil, NewTaskServiceError("list tasks", err)
	}
	return tasks, nil
}

// UpdateTask implements TaskService.UpdateTask.
func (s *taskServiceImpl) UpdateTask(ctx context.Context, taskID int64, userID string, input UpdateTaskInput) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.taskStore.GetByID(ctx, taskID, userID)
	if err != nil {
		return nil, NewTaskServiceError("update task", err)
	}

	applyTaskUpdate(task, input)

	if err := task.Validate(); err != nil {
		return nil, NewTaskServiceError("update task", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.taskStore.WithTx(tx)
		if err := txStore.Update(ctx, task); err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}
		if input.TagIDs != nil {
			if err := txStore.ReplaceTags(ctx, task.ID, input.TagIDs); err != nil {
				return fmt.Errorf("failed to replace tags: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, NewTaskServiceError("update task", err)
	}

	if input.TagIDs != nil {
		tags, err := s.taskStore.GetTags(ctx, task.ID)
		if err != nil {
			return nil, NewTaskServiceError("update task", err)
		}
		task.Tags = tags
	}

	log.Info("task updated",
		slog.Int64("task_id", task.ID),
		slog.String("user_id", task.UserID))

	if err := s.publisher.PublishTaskEvent(ctx, events.EventUpdated, task); err != nil {
		log.Error("task updated but event publish failed",
			slog.Int64("task_id", task.ID),
			slog.String("error", err.Error()))
		return task, &SideEffectError{Operation: "publish updated event", TaskID: task.ID, Err: err}
	}

	if task.DueDate != nil {
		remindAt := task.DueDate.Add(-s.reminderLead)
		if err := s.scheduler.RescheduleReminder(ctx, task.ID, remindAt, task.UserID, task.Title); err != nil {
			log.Error("task updated but reminder rescheduling failed",
				slog.Int64("task_id", task.ID),
				slog.String("error", err.Error()))
			return task, &SideEffectError{Operation: "reschedule reminder", TaskID: task.ID, Err: err}
		}
	}

	return task, nil
}

// CompleteTask implements TaskService.CompleteTask.
func (s *taskServiceImpl) CompleteTask(ctx context.Context, taskID int64, userID string) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.taskStore.GetByID(ctx, taskID, userID)
	if err != nil {
		return nil, NewTaskServiceError("complete task", err)
	}

	task.Complete()

	if err := s.taskStore.Update(ctx, task); err != nil {
		return nil, NewTaskServiceError("complete task", err)
	}

	log.Info("task completed",
		slog.Int64("task_id", task.ID),
		slog.String("user_id", task.UserID))

	// The reminder job, if any, is intentionally left scheduled. It fires
	// against the completed task and consumers decide how to present that.
	if err := s.publisher.PublishTaskEvent(ctx, events.EventCompleted, task); err != nil {
		log.Error("task completed but event publish failed",
			slog.Int64("task_id", task.ID),
			slog.String("error", err.Error()))
		return task, &SideEffectError{Operation: "publish completed event", TaskID: task.ID, Err: err}
	}

	return task, nil
}

// DeleteTask implements TaskService.DeleteTask.
func (s *taskServiceImpl) DeleteTask(ctx context.Context, taskID int64, userID string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	// Snapshot before deletion so the deleted event carries the final state.
	task, err := s.taskStore.GetByID(ctx, taskID, userID)
	if err != nil {
		return NewTaskServiceError("delete task", err)
	}

	if err := s.taskStore.Delete(ctx, taskID, userID); err != nil {
		return NewTaskServiceError("delete task", err)
	}

	log.Info("task deleted",
		slog.Int64("task_id", task.ID),
		slog.String("user_id", task.UserID))

	if err := s.publisher.PublishTaskEvent(ctx, events.EventDeleted, task); err != nil {
		log.Error("task deleted but event publish failed",
			slog.Int64("task_id", task.ID),
			slog.String("error", err.Error()))
		return &SideEffectError{Operation: "publish deleted event", TaskID: task.ID, Err: err}
	}

	return nil
}

// applyTaskUpdate copies the populated fields of input onto task and stamps
// UpdatedAt. Status changes keep the completion timestamp consistent: moving
// into completed stamps CompletedAt, moving out of it clears the stamp.
func applyTaskUpdate(task *domain.Task, input UpdateTaskInput) {
	if input.Title != nil {
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.DueDate != nil {
		due := input.DueDate.UTC()
		task.DueDate = &due
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	if input.Status != nil && *input.Status != task.Status {
		task.Status = *input.Status
		if task.Status == domain.TaskStatusCompleted {
			now := time.Now().UTC()
			task.CompletedAt = &now
		} else {
			task.CompletedAt = nil
		}
	}
	if input.IsRecurring != nil {
		task.IsRecurring = *input.IsRecurring
	}
	if input.RecurringPatternID != nil {
		task.RecurringPatternID = input.RecurringPatternID
	}
	task.UpdatedAt = time.Now().UTC()
}
