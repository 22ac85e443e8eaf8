package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/taskwell/taskwell-api/internal/domain"
	"github.com/taskwell/taskwell-api/internal/store"
)

// MockTaskStore is a testify mock of store.TaskStore. WithTx returns the
// mock itself so transactional code paths exercise the same expectations.
type MockTaskStore struct {
	mock.Mock
}

var _ store.TaskStore = (*MockTaskStore)(nil)

func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskStore) GetByID(ctx context.Context, id int64, userID string) (*domain.Task, error) {
	args := m.Called(ctx, id, userID)
	if task, ok := args.Get(0).(*domain.Task); ok {
		return task, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTaskStore) Update(ctx context.Context, task *domain.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskStore) Delete(ctx context.Context, id int64, userID string) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *MockTaskStore) List(ctx context.Context, userID string, params store.ListTasksParams) ([]*domain.Task, error) {
	args := m.Called(ctx, userID, params)
	if tasks, ok := args.Get(0).([]*domain.Task); ok {
		return tasks, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTaskStore) ReplaceTags(ctx context.Context, taskID int64, tagIDs []int64) error {
	args := m.Called(ctx, taskID, tagIDs)
	return args.Error(0)
}

func (m *MockTaskStore) GetTags(ctx context.Context, taskID int64) ([]domain.Tag, error) {
	args := m.Called(ctx, taskID)
	if tags, ok := args.Get(0).([]domain.Tag); ok {
		return tags, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	m.Called(tx)
	return m
}

// MockPublisher is a testify mock of events.Publisher.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishTaskEvent(ctx context.Context, eventType string, task *domain.Task) error {
	args := m.Called(ctx, eventType, task)
	return args.Error(0)
}

func (m *MockPublisher) PublishReminderEvent(ctx context.Context, taskID int64, title string, dueAt, remindAt time.Time, userID string) error {
	args := m.Called(ctx, taskID, title, dueAt, remindAt, userID)
	return args.Error(0)
}

// MockScheduler is a testify mock of reminder.Scheduler.
type MockScheduler struct {
	mock.Mock
}

func (m *MockScheduler) ScheduleReminder(ctx context.Context, taskID int64, remindAt time.Time, userID, title string) error {
	args := m.Called(ctx, taskID, remindAt, userID, title)
	return args.Error(0)
}

func (m *MockScheduler) CancelReminder(ctx context.Context, taskID int64) error {
	args := m.Called(ctx, taskID)
	return args.Error(0)
}

func (m *MockScheduler) RescheduleReminder(ctx context.Context, taskID int64, remindAt time.Time, userID, title string) error {
	args := m.Called(ctx, taskID, remindAt, userID, title)
	return args.Error(0)
}
