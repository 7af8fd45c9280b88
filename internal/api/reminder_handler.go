package api

import (
	"errors"
	"net/http"

	"github.com/jdalton/taskwell-api/internal/api/shared"
	"github.com/jdalton/taskwell-api/internal/store"
)

// ReminderHandler exposes a user's scheduled reminders. Reminders are
// created by the scheduler as a side effect of task writes; the API
// only lists, inspects, and cancels them.
type ReminderHandler struct {
	reminders store.ReminderStore
	tasks     store.TaskStore
}

// NewReminderHandler creates a ReminderHandler backed by the given
// stores.
func NewReminderHandler(reminders store.ReminderStore, tasks store.TaskStore) *ReminderHandler {
	return &ReminderHandler{reminders: reminders, tasks: tasks}
}

// List handles GET /reminders.
func (h *ReminderHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(w, r)
	if !ok {
		return
	}

	reminders, err := h.reminders.ListByOwner(r.Context(), userID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to list reminders", err)
		return
	}

	responses := make([]ReminderResponse, 0, len(reminders))
	for _, reminder := range reminders {
		responses = append(responses, newReminderResponse(reminder))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// Get handles GET /reminders/{id}.
func (h *ReminderHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(w, r)
	if !ok {
		return
	}
	reminderID, ok := getPathUUID(w, r, "id")
	if !ok {
		return
	}

	reminder, err := h.reminders.GetByID(r.Context(), reminderID)
	if err != nil {
		if errors.Is(err, store.ErrReminderNotFound) {
			shared.RespondWithError(w, r, http.StatusNotFound, "Reminder not found")
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to get reminder", err)
		return
	}

	// The reminder itself carries no owner; check through its task.
	if _, err := h.tasks.GetByID(r.Context(), userID, reminder.TaskID); err != nil {
		shared.RespondWithError(w, r, http.StatusNotFound, "Reminder not found")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, newReminderResponse(reminder))
}

// Delete handles DELETE /reminders/{id}, cancelling a reminder before
// it fires.
func (h *ReminderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(w, r)
	if !ok {
		return
	}
	reminderID, ok := getPathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.reminders.Delete(r.Context(), userID, reminderID); err != nil {
		if errors.Is(err, store.ErrReminderNotFound) {
			shared.RespondWithError(w, r, http.StatusNotFound, "Reminder not found")
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to delete reminder", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
