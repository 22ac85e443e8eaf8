package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/taskwell/taskwell-api/internal/config"
	"github.com/taskwell/taskwell-api/internal/domain"
	"github.com/taskwell/taskwell-api/internal/platform/logger"
)

// Gateway is the slice of the sidecar capability the publisher needs.
// The Dapr client satisfies it.
type Gateway interface {
	Publish(ctx context.Context, pubsubName, topic string, data any, metadata map[string]string) error
}

// EventPublisher enriches task events into envelopes and routes them to the
// configured logical topics through the sidecar gateway.
type EventPublisher struct {
	gateway    Gateway
	pubsubName string
	topics     config.TopicsConfig
	logger     *slog.Logger
}

// Ensure EventPublisher implements the Publisher interface
var _ Publisher = (*EventPublisher)(nil)

// NewEventPublisher creates an EventPublisher.
// It returns an error if the gateway dependency is nil.
func NewEventPublisher(
	gateway Gateway,
	pubsubName string,
	topics config.TopicsConfig,
	log *slog.Logger,
) (*EventPublisher, error) {
	if gateway == nil {
		return nil, domain.NewValidationError("gateway", "cannot be nil", domain.ErrValidation)
	}
	if log == nil {
		log = slog.Default()
	}

	return &EventPublisher{
		gateway:    gateway,
		pubsubName: pubsubName,
		topics:     topics,
		logger:     log.With(slog.String("component", "event_publisher")),
	}, nil
}

// publish builds the envelope and forwards it to one topic. The envelope is
// the payload enriched with an event ID, the event type and a UTC timestamp.
func (p *EventPublisher) publish(ctx context.Context, topic, eventType string, payload map[string]any) error {
	envelope := map[string]any{
		"event_id":   uuid.NewString(),
		"event_type": eventType,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range payload {
		envelope[k] = v
	}

	if err := p.gateway.Publish(ctx, p.pubsubName, topic, envelope, nil); err != nil {
		return fmt.Errorf("failed to publish %s event to %s: %w", eventType, topic, err)
	}

	logger.FromContextOrDefault(ctx, p.logger).Debug("published event",
		slog.String("topic", topic),
		slog.String("event_type", eventType))
	return nil
}

// PublishTaskEvent implements Publisher.PublishTaskEvent.
// Every task event is duplicated: once on the lifecycle audit topic and once
// on the live-sync topic for realtime consumers. The first failure stops the
// fan-out and is returned.
func (p *EventPublisher) PublishTaskEvent(ctx context.Context, eventType string, task *domain.Task) error {
	payload := map[string]any{
		"task_id":   task.ID,
		"task_data": task,
		"user_id":   task.UserID,
	}

	if err := p.publish(ctx, p.topics.TaskEvents, eventType, payload); err != nil {
		return err
	}
	return p.publish(ctx, p.topics.TaskUpdates, eventType, payload)
}

// PublishReminderEvent implements Publisher.PublishReminderEvent
func (p *EventPublisher) PublishReminderEvent(
	ctx context.Context,
	taskID int64,
	title string,
	dueAt, remindAt time.Time,
	userID string,
) error {
	payload := map[string]any{
		"task_id":   taskID,
		"title":     title,
		"due_at":    dueAt.UTC().Format(time.RFC3339),
		"remind_at": remindAt.UTC().Format(time.RFC3339),
		"user_id":   userID,
	}

	return p.publish(ctx, p.topics.Reminders, EventReminderDue, payload)
}
