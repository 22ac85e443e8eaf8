// Package api provides HTTP handlers for the API.
package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taskwell/taskwell-api/internal/api/shared"
	"github.com/taskwell/taskwell-api/internal/domain"
	"github.com/taskwell/taskwell-api/internal/platform/logger"
	"github.com/taskwell/taskwell-api/internal/service"
	"github.com/taskwell/taskwell-api/internal/store"
)

// TaskHandler handles task-related HTTP requests
type TaskHandler struct {
	taskService service.TaskService
	logger      *slog.Logger
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(taskService service.TaskService, log *slog.Logger) *TaskHandler {
	if log == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for TaskHandler")
	}

	return &TaskHandler{
		taskService: taskService,
		logger:      log.With(slog.String("component", "task_handler")),
	}
}

// Create handles POST /tasks requests.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := shared.GetUserID(r.Context())
	if !ok {
		log.Warn("user ID not found in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User identity required")
		return
	}

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, GetSafeErrorMessage(err))
		return
	}

	task, err := h.taskService.CreateTask(r.Context(), userID, service.CreateTaskInput{
		Title:              req.Title,
		Description:        req.Description,
		DueDate:            req.DueDate,
		Priority:           domain.Priority(req.Priority),
		Status:             domain.TaskStatus(req.Status),
		IsRecurring:        req.IsRecurring,
		RecurringPatternID: req.RecurringPatternID,
		TagIDs:             req.TagIDs,
	})
	if err != nil {
		// A side-effect failure still carries the created task; report the
		// failure but do not pretend the task does not exist.
		var sideEffectErr *service.SideEffectError
		if errors.As(err, &sideEffectErr) && task != nil {
			shared.RespondWithErrorAndLog(w, r, http.StatusBadGateway, GetSafeErrorMessage(err), err)
			return
		}
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, NewTaskResponse(task))
}

// List handles GET /tasks requests.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := shared.GetUserID(r.Context())
	if !ok {
		log.Warn("user ID not found in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User identity required")
		return
	}

	params, err := parseListParams(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	tasks, err := h.taskService.ListTasks(r.Context(), userID, params)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	responses := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		responses = append(responses, NewTaskResponse(task))
	}

	page := params.Page
	if page < 1 {
		page = 1
	}
	pageSize := params.PageSize
	if pageSize < 1 {
		pageSize = 20
	} else if pageSize > store.MaxPageSize {
		pageSize = store.MaxPageSize
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TaskListResponse{
		Tasks:    responses,
		Page:     page,
		PageSize: pageSize,
	})
}

// Get handles GET /tasks/{id} requests.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.withTask(w, r, func(userID string, taskID int64) (*domain.Task, error) {
		return h.taskService.GetTask(r.Context(), taskID, userID)
	}, http.StatusOK)
}

// Update handles PUT /tasks/{id} requests.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := shared.GetUserID(r.Context())
	if !ok {
		log.Warn("user ID not found in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User identity required")
		return
	}

	taskID, err := taskIDFromURL(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID")
		return
	}

	var req UpdateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, GetSafeErrorMessage(err))
		return
	}

	input := service.UpdateTaskInput{
		Title:              req.Title,
		Description:        req.Description,
		DueDate:            req.DueDate,
		IsRecurring:        req.IsRecurring,
		RecurringPatternID: req.RecurringPatternID,
		TagIDs:             req.TagIDs,
	}
	if req.Priority != nil {
		priority := domain.Priority(*req.Priority)
		input.Priority = &priority
	}
	if req.Status != nil {
		status := domain.TaskStatus(*req.Status)
		input.Status = &status
	}

	task, err := h.taskService.UpdateTask(r.Context(), taskID, userID, input)
	if err != nil {
		var sideEffectErr *service.SideEffectError
		if errors.As(err, &sideEffectErr) && task != nil {
			shared.RespondWithErrorAndLog(w, r, http.StatusBadGateway, GetSafeErrorMessage(err), err)
			return
		}
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTaskResponse(task))
}

// Complete handles POST /tasks/{id}/complete requests.
func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.withTask(w, r, func(userID string, taskID int64) (*domain.Task, error) {
		return h.taskService.CompleteTask(r.Context(), taskID, userID)
	}, http.StatusOK)
}

// Delete handles DELETE /tasks/{id} requests.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := shared.GetUserID(r.Context())
	if !ok {
		log.Warn("user ID not found in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User identity required")
		return
	}

	taskID, err := taskIDFromURL(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID")
		return
	}

	if err := h.taskService.DeleteTask(r.Context(), taskID, userID); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// withTask factors the common shape of single-task operations: identity,
// ID parsing, service call, response.
func (h *TaskHandler) withTask(
	w http.ResponseWriter,
	r *http.Request,
	op func(userID string, taskID int64) (*domain.Task, error),
	successStatus int,
) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := shared.GetUserID(r.Context())
	if !ok {
		log.Warn("user ID not found in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User identity required")
		return
	}

	taskID, err := taskIDFromURL(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID")
		return
	}

	task, err := op(userID, taskID)
	if err != nil {
		var sideEffectErr *service.SideEffectError
		if errors.As(err, &sideEffectErr) && task != nil {
			shared.RespondWithErrorAndLog(w, r, http.StatusBadGateway, GetSafeErrorMessage(err), err)
			return
		}
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, successStatus, NewTaskResponse(task))
}

// taskIDFromURL parses the {id} route parameter.
func taskIDFromURL(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// parseListParams reads the listing filter, sort and pagination settings
// from the query string.
func parseListParams(r *http.Request) (store.ListTasksParams, error) {
	q := r.URL.Query()
	params := store.ListTasksParams{
		Search:    q.Get("q"),
		SortBy:    store.SortColumn(q.Get("sort_by")),
		SortOrder: store.SortOrder(q.Get("sort_order")),
	}

	if raw := q.Get("priority"); raw != "" {
		priority := domain.Priority(raw)
		if !priority.IsValid() {
			return params, errors.New("invalid priority filter")
		}
		params.Priority = &priority
	}
	if raw := q.Get("status"); raw != "" {
		status := domain.TaskStatus(raw)
		if !status.IsValid() {
			return params, errors.New("invalid status filter")
		}
		params.Status = &status
	}
	if raw := q.Get("is_recurring"); raw != "" {
		isRecurring, err := strconv.ParseBool(raw)
		if err != nil {
			return params, errors.New("invalid is_recurring filter")
		}
		params.IsRecurring = &isRecurring
	}
	if raw := q.Get("due_from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return params, errors.New("invalid due_from timestamp")
		}
		params.DueDateFrom = &from
	}
	if raw := q.Get("due_to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return params, errors.New("invalid due_to timestamp")
		}
		params.DueDateTo = &to
	}
	if raw := q.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return params, errors.New("invalid page number")
		}
		params.Page = page
	}
	if raw := q.Get("page_size"); raw != "" {
		pageSize, err := strconv.Atoi(raw)
		if err != nil {
			return params, errors.New("invalid page size")
		}
		params.PageSize = pageSize
	}

	return params, nil
}
