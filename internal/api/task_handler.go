package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/jdalton/taskwell-api/internal/api/shared"
	"github.com/jdalton/taskwell-api/internal/domain"
	"github.com/jdalton/taskwell-api/internal/service"
	"github.com/jdalton/taskwell-api/internal/store"
)

// TaskHandler handles task CRUD, listing, completion toggling, and the
// recurrence history endpoint.
type TaskHandler struct {
	tasks    service.TaskService
	timeFunc func() time.Time
}

// NewTaskHandler creates a TaskHandler backed by the given service.
func NewTaskHandler(tasks service.TaskService) *TaskHandler {
	return &TaskHandler{
		tasks:    tasks,
		timeFunc: func() time.Time { return time.Now().UTC() },
	}
}

// Create handles POST /tasks.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(w, r)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	view, err := h.tasks.Create(r.Context(), userID, service.CreateTaskParams{
		Title:               req.Title,
		Description:         req.Description,
		Priority:            domain.Priority(req.Priority),
		DueDate:             req.DueDate,
		RecurrencePattern:   domain.RecurrencePattern(req.RecurrencePattern),
		ReminderLeadMinutes: req.ReminderLeadMinutes,
		Tags:                req.Tags,
	})
	if err != nil {
		h.respondTaskError(w, r, err, "Failed to create task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, newTaskResponse(view, h.timeFunc()))
}

// Get handles GET /tasks/{id}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(w, r)
	if !ok {
		return
	}
	taskID, ok := getPathUUID(w, r, "id")
	if !ok {
		return
	}

	view, err := h.tasks.Get(r.Context(), userID, taskID)
	if err != nil {
		h.respondTaskError(w, r, err, "Failed to get task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, newTaskResponse(view, h.timeFunc()))
}

// List handles GET /tasks with optional filter and sort query
// parameters.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(w, r)
	if !ok {
		return
	}

	filter, err := parseTaskFilter(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	views, err := h.tasks.List(r.Context(), userID, filter)
	if err != nil {
		h.respondTaskError(w, r, err, "Failed to list tasks")
		return
	}

	now := h.timeFunc()
	responses := make([]TaskResponse, 0, len(views))
	for _, view := range views {
		responses = append(responses, newTaskResponse(view, now))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// Update handles PATCH /tasks/{id}.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(w, r)
	if !ok {
		return
	}
	taskID, ok := getPathUUID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	params := service.UpdateTaskParams{
		Title:               req.Title,
		Description:         req.Description,
		DueDate:             req.DueDate,
		ClearDueDate:        req.ClearDueDate,
		ReminderLeadMinutes: req.ReminderLeadMinutes,
		ClearReminderLead:   req.ClearReminderLead,
		Completed:           req.Completed,
		Tags:                req.Tags,
	}
	if req.Priority != nil {
		priority := domain.Priority(*req.Priority)
		params.Priority = &priority
	}
	if req.RecurrencePattern != nil {
		pattern := domain.RecurrencePattern(*req.RecurrencePattern)
		params.RecurrencePattern = &pattern
	}

	view, err := h.tasks.Update(r.Context(), userID, taskID, params)
	if err != nil {
		h.respondTaskError(w, r, err, "Failed to update task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, newTaskResponse(view, h.timeFunc()))
}

// Delete handles DELETE /tasks/{id}.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(w, r)
	if !ok {
		return
	}
	taskID, ok := getPathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.tasks.Delete(r.Context(), userID, taskID); err != nil {
		h.respondTaskError(w, r, err, "Failed to delete task")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ToggleComplete handles POST /tasks/{id}/toggle-complete.
func (h *TaskHandler) ToggleComplete(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(w, r)
	if !ok {
		return
	}
	taskID, ok := getPathUUID(w, r, "id")
	if !ok {
		return
	}

	view, err := h.tasks.ToggleCompletion(r.Context(), userID, taskID)
	if err != nil {
		h.respondTaskError(w, r, err, "Failed to toggle task completion")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, newTaskResponse(view, h.timeFunc()))
}

// History handles GET /tasks/{id}/history.
func (h *TaskHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(w, r)
	if !ok {
		return
	}
	taskID, ok := getPathUUID(w, r, "id")
	if !ok {
		return
	}

	records, err := h.tasks.History(r.Context(), userID, taskID)
	if err != nil {
		h.respondTaskError(w, r, err, "Failed to get task history")
		return
	}

	responses := make([]HistoryResponse, 0, len(records))
	for _, rec := range records {
		responses = append(responses, newHistoryResponse(rec))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

func (h *TaskHandler) respondTaskError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrTaskNotFound):
		shared.RespondWithError(w, r, http.StatusNotFound, "Task not found")
	case errors.Is(err, domain.ErrValidation), errors.Is(err, store.ErrInvalidEntity):
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task data: "+err.Error())
	default:
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, fallback, err)
	}
}

// parseTaskFilter builds a store.TaskFilter from query parameters.
func parseTaskFilter(r *http.Request) (store.TaskFilter, error) {
	q := r.URL.Query()
	filter := store.TaskFilter{
		Search: q.Get("search"),
		Tag:    q.Get("tag"),
	}

	if raw := q.Get("priority"); raw != "" {
		switch domain.Priority(raw) {
		case domain.PriorityLow, domain.PriorityMedium, domain.PriorityHigh:
			filter.Priority = domain.Priority(raw)
		default:
			return filter, errors.New("invalid priority filter")
		}
	}

	if raw := q.Get("completed"); raw != "" {
		switch raw {
		case "true":
			completed := true
			filter.Completed = &completed
		case "false":
			completed := false
			filter.Completed = &completed
		default:
			return filter, errors.New("invalid completed filter")
		}
	}

	if raw := q.Get("due_status"); raw != "" {
		switch domain.DueStatus(raw) {
		case domain.DueStatusOverdue, domain.DueStatusDueToday, domain.DueStatusUpcoming:
			filter.DueStatus = domain.DueStatus(raw)
		default:
			return filter, errors.New("invalid due_status filter")
		}
	}

	if raw := q.Get("sort"); raw != "" {
		switch store.TaskSort(raw) {
		case store.TaskSortCreatedAt, store.TaskSortDueDate, store.TaskSortPriority:
			filter.Sort = store.TaskSort(raw)
		default:
			return filter, errors.New("invalid sort key")
		}
	}
	filter.Descending = q.Get("order") == "desc"

	return filter, nil
}
