package events

import (
	"context"
	"time"

	"github.com/taskwell/taskwell-api/internal/domain"
)

// Event types attached to published envelopes.
const (
	// EventCreated is published after a task row is committed.
	EventCreated = "created"

	// EventUpdated is published after a task update is committed.
	EventUpdated = "updated"

	// EventCompleted is published after a task is marked completed.
	EventCompleted = "completed"

	// EventDeleted is published after a task row is removed; the envelope
	// carries the pre-deletion snapshot.
	EventDeleted = "deleted"

	// EventReminderDue is published on the reminders topic when a
	// scheduled reminder fires.
	EventReminderDue = "reminder.due"
)

// Publisher is the event-publishing capability the lifecycle service
// depends on. Implementations forward to the sidecar gateway; failures
// surface to the caller but never undo the state mutation that preceded
// them.
type Publisher interface {
	// PublishTaskEvent publishes a task lifecycle event, fanning it out to
	// the lifecycle audit topic and the live-sync topic.
	PublishTaskEvent(ctx context.Context, eventType string, task *domain.Task) error

	// PublishReminderEvent publishes a reminder.due notification for a task
	// on the reminders topic.
	PublishReminderEvent(ctx context.Context, taskID int64, title string, dueAt, remindAt time.Time, userID string) error
}
