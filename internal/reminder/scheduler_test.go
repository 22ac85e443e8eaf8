package reminder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskwell/taskwell-api/internal/domain"
)

type gatewayCall struct {
	op      string // "schedule" or "cancel"
	jobID   string
	dueTime string
	data    map[string]any
}

// fakeGateway records job calls and tracks which job IDs are live, so tests
// can assert the one-active-job invariant.
type fakeGateway struct {
	calls       []gatewayCall
	active      map[string]bool
	scheduleErr error
	cancelErr   error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{active: make(map[string]bool)}
}

func (g *fakeGateway) ScheduleJob(ctx context.Context, jobID, dueTime string, data any, period, ttl string) error {
	if g.scheduleErr != nil {
		return g.scheduleErr
	}
	g.calls = append(g.calls, gatewayCall{op: "schedule", jobID: jobID, dueTime: dueTime, data: data.(map[string]any)})
	g.active[jobID] = true
	return nil
}

func (g *fakeGateway) CancelJob(ctx context.Context, jobID string) error {
	if g.cancelErr != nil {
		return g.cancelErr
	}
	g.calls = append(g.calls, gatewayCall{op: "cancel", jobID: jobID})
	delete(g.active, jobID)
	return nil
}

func newTestScheduler(t *testing.T, gateway Gateway) *JobScheduler {
	t.Helper()
	scheduler, err := NewJobScheduler(gateway, nil)
	require.NoError(t, err)
	return scheduler
}

func TestJobIDIsDeterministic(t *testing.T) {
	assert.Equal(t, "reminder-task-42", JobID(42))
	assert.Equal(t, JobID(42), JobID(42))
}

func TestNewJobSchedulerRequiresGateway(t *testing.T) {
	_, err := NewJobScheduler(nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestScheduleReminder(t *testing.T) {
	gateway := newFakeGateway()
	scheduler := newTestScheduler(t, gateway)

	remindAt := time.Date(2026, 9, 2, 16, 30, 0, 0, time.UTC)
	err := scheduler.ScheduleReminder(context.Background(), 42, remindAt, "user-1", "Submit report")
	require.NoError(t, err)

	require.Len(t, gateway.calls, 1)
	call := gateway.calls[0]
	assert.Equal(t, "schedule", call.op)
	assert.Equal(t, "reminder-task-42", call.jobID)
	assert.Equal(t, "2026-09-02T16:30:00Z", call.dueTime)
	assert.Equal(t, int64(42), call.data["task_id"])
	assert.Equal(t, "user-1", call.data["user_id"])
	assert.Equal(t, "Submit report", call.data["title"])
	assert.Equal(t, "reminder", call.data["type"])
}

func TestRescheduleReminderCancelsThenSchedules(t *testing.T) {
	gateway := newFakeGateway()
	scheduler := newTestScheduler(t, gateway)

	remindAt := time.Now().UTC().Add(time.Hour)
	require.NoError(t, scheduler.ScheduleReminder(context.Background(), 42, remindAt, "user-1", "t"))
	require.NoError(t, scheduler.RescheduleReminder(context.Background(), 42, remindAt.Add(time.Hour), "user-1", "t"))

	// schedule, cancel, schedule, with exactly one job left active.
	require.Len(t, gateway.calls, 3)
	assert.Equal(t, "schedule", gateway.calls[0].op)
	assert.Equal(t, "cancel", gateway.calls[1].op)
	assert.Equal(t, "schedule", gateway.calls[2].op)

	assert.Len(t, gateway.active, 1, "never two concurrent jobs for one task")
	assert.True(t, gateway.active["reminder-task-42"])
}

func TestRescheduleReminderStopsWhenCancelFails(t *testing.T) {
	gateway := newFakeGateway()
	gateway.cancelErr = errors.New("sidecar unavailable")
	scheduler := newTestScheduler(t, gateway)

	err := scheduler.RescheduleReminder(context.Background(), 42, time.Now().Add(time.Hour), "user-1", "t")
	require.Error(t, err)
	assert.Empty(t, gateway.calls, "no schedule may happen after a failed cancel")
}

func TestScheduleReminderWrapsGatewayError(t *testing.T) {
	gateway := newFakeGateway()
	gatewayErr := errors.New("sidecar unavailable")
	gateway.scheduleErr = gatewayErr
	scheduler := newTestScheduler(t, gateway)

	err := scheduler.ScheduleReminder(context.Background(), 7, time.Now().Add(time.Hour), "user-1", "t")
	require.Error(t, err)
	assert.ErrorIs(t, err, gatewayErr)
	assert.Contains(t, err.Error(), "task 7")
}

func TestCancelReminder(t *testing.T) {
	gateway := newFakeGateway()
	scheduler := newTestScheduler(t, gateway)

	// Cancelling a reminder that was never scheduled is success.
	require.NoError(t, scheduler.CancelReminder(context.Background(), 99))
	require.Len(t, gateway.calls, 1)
	assert.Equal(t, "cancel", gateway.calls[0].op)
	assert.Equal(t, "reminder-task-99", gateway.calls[0].jobID)
}
