// Package reminder schedules and cancels task reminder jobs through the
// sidecar gateway. Job identity is derived purely from the task ID, which is
// the idempotency mechanism: rescheduling is cancel-then-schedule against
// the same identity, never a second concurrent job.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/taskwell/taskwell-api/internal/domain"
	"github.com/taskwell/taskwell-api/internal/platform/logger"
)

// jobIDPrefix is the naming scheme for reminder jobs: "reminder-task-<id>".
const jobIDPrefix = "reminder-task-"

// Gateway is the slice of the sidecar capability the scheduler needs.
// The Dapr client satisfies it.
type Gateway interface {
	ScheduleJob(ctx context.Context, jobID, dueTime string, data any, period, ttl string) error
	CancelJob(ctx context.Context, jobID string) error
}

// Scheduler is the reminder-scheduling capability the lifecycle service
// depends on.
type Scheduler interface {
	// ScheduleReminder schedules a reminder job for the task, firing at
	// remindAt.
	ScheduleReminder(ctx context.Context, taskID int64, remindAt time.Time, userID, title string) error

	// CancelReminder cancels the task's reminder job. Cancelling a reminder
	// that was never scheduled (or already fired) is success.
	CancelReminder(ctx context.Context, taskID int64) error

	// RescheduleReminder cancels the task's existing reminder job and
	// schedules a new one. The two steps are not atomic: a crash between
	// them leaves no reminder.
	RescheduleReminder(ctx context.Context, taskID int64, remindAt time.Time, userID, title string) error
}

// JobID returns the deterministic job identity for a task's reminder.
func JobID(taskID int64) string {
	return fmt.Sprintf("%s%d", jobIDPrefix, taskID)
}

// JobScheduler implements Scheduler on top of the sidecar gateway's jobs API.
type JobScheduler struct {
	gateway Gateway
	logger  *slog.Logger
}

// Ensure JobScheduler implements the Scheduler interface
var _ Scheduler = (*JobScheduler)(nil)

// NewJobScheduler creates a JobScheduler.
// It returns an error if the gateway dependency is nil.
func NewJobScheduler(gateway Gateway, log *slog.Logger) (*JobScheduler, error) {
	if gateway == nil {
		return nil, domain.NewValidationError("gateway", "cannot be nil", domain.ErrValidation)
	}
	if log == nil {
		log = slog.Default()
	}

	return &JobScheduler{
		gateway: gateway,
		logger:  log.With(slog.String("component", "reminder_scheduler")),
	}, nil
}

// ScheduleReminder implements Scheduler.ScheduleReminder
func (s *JobScheduler) ScheduleReminder(
	ctx context.Context,
	taskID int64,
	remindAt time.Time,
	userID, title string,
) error {
	jobID := JobID(taskID)
	dueTime := remindAt.UTC().Format(time.RFC3339)

	data := map[string]any{
		"task_id": taskID,
		"user_id": userID,
		"title":   title,
		"type":    "reminder",
	}

	if err := s.gateway.ScheduleJob(ctx, jobID, dueTime, data, "", ""); err != nil {
		return fmt.Errorf("failed to schedule reminder for task %d: %w", taskID, err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("scheduled reminder",
		slog.String("job_id", jobID),
		slog.String("due_time", dueTime))
	return nil
}

// CancelReminder implements Scheduler.CancelReminder
func (s *JobScheduler) CancelReminder(ctx context.Context, taskID int64) error {
	jobID := JobID(taskID)

	if err := s.gateway.CancelJob(ctx, jobID); err != nil {
		return fmt.Errorf("failed to cancel reminder for task %d: %w", taskID, err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("cancelled reminder",
		slog.String("job_id", jobID))
	return nil
}

// RescheduleReminder implements Scheduler.RescheduleReminder
func (s *JobScheduler) RescheduleReminder(
	ctx context.Context,
	taskID int64,
	remindAt time.Time,
	userID, title string,
) error {
	if err := s.CancelReminder(ctx, taskID); err != nil {
		return err
	}
	return s.ScheduleReminder(ctx, taskID, remindAt, userID, title)
}
