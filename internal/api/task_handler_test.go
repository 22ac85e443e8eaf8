package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/taskwell/taskwell-api/internal/api"
	"github.com/taskwell/taskwell-api/internal/api/middleware"
	"github.com/taskwell/taskwell-api/internal/domain"
	"github.com/taskwell/taskwell-api/internal/service"
	"github.com/taskwell/taskwell-api/internal/store"
)

const devUserID = "dev-user-123"

// MockTaskService is a testify mock of service.TaskService.
type MockTaskService struct {
	mock.Mock
}

func (m *MockTaskService) CreateTask(ctx context.Context, userID string, input service.CreateTaskInput) (*domain.Task, error) {
	args := m.Called(ctx, userID, input)
	task, _ := args.Get(0).(*domain.Task)
	return task, args.Error(1)
}

func (m *MockTaskService) GetTask(ctx context.Context, taskID int64, userID string) (*domain.Task, error) {
	args := m.Called(ctx, taskID, userID)
	task, _ := args.Get(0).(*domain.Task)
	return task, args.Error(1)
}

func (m *MockTaskService) ListTasks(ctx context.Context, userID string, params store.ListTasksParams) ([]*domain.Task, error) {
	args := m.Called(ctx, userID, params)
	tasks, _ := args.Get(0).([]*domain.Task)
	return tasks, args.Error(1)
}

func (m *MockTaskService) UpdateTask(ctx context.Context, taskID int64, userID string, input service.UpdateTaskInput) (*domain.Task, error) {
	args := m.Called(ctx, taskID, userID, input)
	task, _ := args.Get(0).(*domain.Task)
	return task, args.Error(1)
}

func (m *MockTaskService) CompleteTask(ctx context.Context, taskID int64, userID string) (*domain.Task, error) {
	args := m.Called(ctx, taskID, userID)
	task, _ := args.Get(0).(*domain.Task)
	return task, args.Error(1)
}

func (m *MockTaskService) DeleteTask(ctx context.Context, taskID int64, userID string) error {
	args := m.Called(ctx, taskID, userID)
	return args.Error(0)
}

// newTestRouter builds a router matching the production layout: trace and
// identity middleware in front of the task routes.
func newTestRouter(svc service.TaskService, devFallback string) http.Handler {
	handler := api.NewTaskHandler(svc, slog.Default())
	identity := middleware.NewIdentityMiddleware(devFallback)

	r := chi.NewRouter()
	r.Use(middleware.TraceMiddleware)
	r.Use(identity.Resolve)
	r.Route("/api/v1/tasks", func(r chi.Router) {
		r.Post("/", handler.Create)
		r.Get("/", handler.List)
		r.Get("/{id}", handler.Get)
		r.Put("/{id}", handler.Update)
		r.Post("/{id}/complete", handler.Complete)
		r.Delete("/{id}", handler.Delete)
	})
	return r
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func sampleTask(id int64) *domain.Task {
	now := time.Now().UTC().Truncate(time.Second)
	return &domain.Task{
		ID:        id,
		UserID:    devUserID,
		Title:     "Buy groceries",
		Priority:  domain.PriorityMedium,
		Status:    domain.TaskStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestCreateTask_Success(t *testing.T) {
	svc := new(MockTaskService)
	router := newTestRouter(svc, devUserID)

	svc.On("CreateTask", mock.Anything, devUserID, mock.MatchedBy(func(input service.CreateTaskInput) bool {
		return input.Title == "Buy groceries" && input.Priority == domain.PriorityHigh
	})).Return(sampleTask(42), nil)

	req := jsonRequest(t, http.MethodPost, "/api/v1/tasks", map[string]any{
		"title":    "Buy groceries",
		"priority": "high",
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp api.TaskResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, int64(42), resp.ID)
	assert.Equal(t, "Buy groceries", resp.Title)
	assert.Equal(t, "pending", resp.Status)
	assert.NotNil(t, resp.Tags)

	svc.AssertExpectations(t)
}

func TestCreateTask_HeaderIdentityOverridesFallback(t *testing.T) {
	svc := new(MockTaskService)
	router := newTestRouter(svc, devUserID)

	svc.On("CreateTask", mock.Anything, "alice", mock.Anything).Return(sampleTask(1), nil)

	req := jsonRequest(t, http.MethodPost, "/api/v1/tasks", map[string]any{"title": "Mine"})
	req.Header.Set("X-User-ID", "alice")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	svc.AssertExpectations(t)
}

func TestCreateTask_NoIdentityRejectedWithoutFallback(t *testing.T) {
	svc := new(MockTaskService)
	router := newTestRouter(svc, "")

	req := jsonRequest(t, http.MethodPost, "/api/v1/tasks", map[string]any{"title": "Nobody's"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	svc.AssertNotCalled(t, "CreateTask")
}

func TestCreateTask_InvalidJSON(t *testing.T) {
	svc := new(MockTaskService)
	router := newTestRouter(svc, devUserID)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tasks", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "CreateTask")
}

func TestCreateTask_MissingTitle(t *testing.T) {
	svc := new(MockTaskService)
	router := newTestRouter(svc, devUserID)

	req := jsonRequest(t, http.MethodPost, "/api/v1/tasks", map[string]any{"description": "no title"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Title")
	svc.AssertNotCalled(t, "CreateTask")
}

func TestCreateTask_PastDueDate(t *testing.T) {
	svc := new(MockTaskService)
	router := newTestRouter(svc, devUserID)

	svc.On("CreateTask", mock.Anything, devUserID, mock.Anything).
		Return(nil, service.NewTaskServiceError("create task", domain.ErrTaskDueDateInPast))

	req := jsonRequest(t, http.MethodPost, "/api/v1/tasks", map[string]any{
		"title":    "Too late",
		"due_date": time.Now().UTC().Add(-time.Hour).Format(time.RFC3339),
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Due date cannot be in the past")
}

func TestCreateTask_SideEffectFailureReturns502(t *testing.T) {
	svc := new(MockTaskService)
	router := newTestRouter(svc, devUserID)

	task := sampleTask(13)
	svc.On("CreateTask", mock.Anything, devUserID, mock.Anything).
		Return(task, &service.SideEffectError{
			Operation: "publish created event",
			TaskID:    13,
			Err:       errors.New("sidecar unreachable"),
		})

	req := jsonRequest(t, http.MethodPost, "/api/v1/tasks", map[string]any{"title": "Committed"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "notification delivery failed")
	// The raw sidecar error never reaches the client.
	assert.NotContains(t, rec.Body.String(), "sidecar unreachable")
}

func TestGetTask_Success(t *testing.T) {
	svc := new(MockTaskService)
	router := newTestRouter(svc, devUserID)

	svc.On("GetTask", mock.Anything, int64(42), devUserID).Return(sampleTask(42), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks/42", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.TaskResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, int64(42), resp.ID)
}

func TestGetTask_NotFound(t *testing.T) {
	svc := new(MockTaskService)
	router := newTestRouter(svc, devUserID)

	svc.On("GetTask", mock.Anything, int64(404), devUserID).
		Return(nil, service.NewTaskServiceError("get task", store.ErrTaskNotFound))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks/404", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Task not found")
}

func TestGetTask_InvalidID(t *testing.T) {
	svc := new(MockTaskService)
	router := newTestRouter(svc, devUserID)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks/not-a-number", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "GetTask")
}

func TestListTasks_ParsesQueryParameters(t *testing.T) {
	svc := new(MockTaskService)
	router := newTestRouter(svc, devUserID)

	var captured store.ListTasksParams
	svc.On("ListTasks", mock.Anything, devUserID, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(2).(store.ListTasksParams)
		}).
		Return([]*domain.Task{sampleTask(1), sampleTask(2)}, nil)

	target := "/api/v1/tasks?q=grocer&priority=high&status=pending&is_recurring=false" +
		"&sort_by=priority&sort_order=desc&page=2&page_size=10"
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "grocer", captured.Search)
	require.NotNil(t, captured.Priority)
	assert.Equal(t, domain.PriorityHigh, *captured.Priority)
	require.NotNil(t, captured.Status)
	assert.Equal(t, domain.TaskStatusPending, *captured.Status)
	require.NotNil(t, captured.IsRecurring)
	assert.False(t, *captured.IsRecurring)
	assert.Equal(t, store.SortByPriority, captured.SortBy)
	assert.Equal(t, store.SortDesc, captured.SortOrder)
	assert.Equal(t, 2, captured.Page)
	assert.Equal(t, 10, captured.PageSize)

	var resp api.TaskListResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp.Tasks, 2)
	assert.Equal(t, 2, resp.Page)
	assert.Equal(t, 10, resp.PageSize)
}

func TestListTasks_RejectsBadFilters(t *testing.T) {
	svc := new(MockTaskService)
	router := newTestRouter(svc, devUserID)

	for _, target := range []string{
		"/api/v1/tasks?priority=urgent",
		"/api/v1/tasks?status=done",
		"/api/v1/tasks?is_recurring=maybe",
		"/api/v1/tasks?due_from=yesterday",
		"/api/v1/tasks?page=one",
	} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "target %s", target)
	}
	svc.AssertNotCalled(t, "ListTasks")
}

func TestUpdateTask_PartialBody(t *testing.T) {
	svc := new(MockTaskService)
	router := newTestRouter(svc, devUserID)

	updated := sampleTask(9)
	updated.Title = "New title"

	svc.On("UpdateTask", mock.Anything, int64(9), devUserID, mock.MatchedBy(func(input service.UpdateTaskInput) bool {
		return input.Title != nil && *input.Title == "New title" &&
			input.Description == nil && input.Status == nil && input.TagIDs == nil
	})).Return(updated, nil)

	req := jsonRequest(t, http.MethodPut, "/api/v1/tasks/9", map[string]any{"title": "New title"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestUpdateTask_TagReplacement(t *testing.T) {
	svc := new(MockTaskService)
	router := newTestRouter(svc, devUserID)

	svc.On("UpdateTask", mock.Anything, int64(9), devUserID, mock.MatchedBy(func(input service.UpdateTaskInput) bool {
		return fmt.Sprint(input.TagIDs) == fmt.Sprint([]int64{2, 3})
	})).Return(sampleTask(9), nil)

	req := jsonRequest(t, http.MethodPut, "/api/v1/tasks/9", map[string]any{"tag_ids": []int64{2, 3}})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestCompleteTask_Success(t *testing.T) {
	svc := new(MockTaskService)
	router := newTestRouter(svc, devUserID)

	completed := sampleTask(20)
	completed.Status = domain.TaskStatusCompleted
	now := time.Now().UTC()
	completed.CompletedAt = &now

	svc.On("CompleteTask", mock.Anything, int64(20), devUserID).Return(completed, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tasks/20/complete", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.TaskResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "completed", resp.Status)
	assert.NotNil(t, resp.CompletedAt)
}

func TestDeleteTask_Success(t *testing.T) {
	svc := new(MockTaskService)
	router := newTestRouter(svc, devUserID)

	svc.On("DeleteTask", mock.Anything, int64(30), devUserID).Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/tasks/30", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestDeleteTask_NotFound(t *testing.T) {
	svc := new(MockTaskService)
	router := newTestRouter(svc, devUserID)

	svc.On("DeleteTask", mock.Anything, int64(404), devUserID).
		Return(service.NewTaskServiceError("delete task", store.ErrTaskNotFound))

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/tasks/404", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
