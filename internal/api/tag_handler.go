package api

import (
	"errors"
	"net/http"

	"github.com/jdalton/taskwell-api/internal/api/shared"
	"github.com/jdalton/taskwell-api/internal/domain"
	"github.com/jdalton/taskwell-api/internal/store"
)

// TagHandler handles tag CRUD. Tags are shared labels;
// ownership applies to the task-tag association, not the tag itself.
type TagHandler struct {
	tags store.TagStore
}

// NewTagHandler creates a TagHandler backed by the given store.
func NewTagHandler(tags store.TagStore) *TagHandler {
	return &TagHandler{tags: tags}
}

// Create handles POST /tags.
func (h *TagHandler) Create(w http.ResponseWriter, r *http.Request) {
	if _, ok := getUserID(w, r); !ok {
		return
	}

	var req CreateTagRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	tag, err := domain.NewTag(req.Name)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid tag data: "+err.Error())
		return
	}

	if err := h.tags.Create(r.Context(), tag); err != nil {
		if errors.Is(err, store.ErrTagNameExists) {
			shared.RespondWithError(w, r, http.StatusConflict, "Tag name already exists")
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to create tag", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, newTagResponse(tag))
}

// List handles GET /tags.
func (h *TagHandler) List(w http.ResponseWriter, r *http.Request) {
	if _, ok := getUserID(w, r); !ok {
		return
	}

	tags, err := h.tags.List(r.Context())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to list tags", err)
		return
	}

	responses := make([]TagResponse, 0, len(tags))
	for _, tag := range tags {
		responses = append(responses, newTagResponse(tag))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// Get handles GET /tags/{id}.
func (h *TagHandler) Get(w http.ResponseWriter, r *http.Request) {
	if _, ok := getUserID(w, r); !ok {
		return
	}
	tagID, ok := getPathUUID(w, r, "id")
	if !ok {
		return
	}

	tag, err := h.tags.GetByID(r.Context(), tagID)
	if err != nil {
		if errors.Is(err, store.ErrTagNotFound) {
			shared.RespondWithError(w, r, http.StatusNotFound, "Tag not found")
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to get tag", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, newTagResponse(tag))
}

// Delete handles DELETE /tags/{id}.
func (h *TagHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if _, ok := getUserID(w, r); !ok {
		return
	}
	tagID, ok := getPathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.tags.Delete(r.Context(), tagID); err != nil {
		if errors.Is(err, store.ErrTagNotFound) {
			shared.RespondWithError(w, r, http.StatusNotFound, "Tag not found")
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to delete tag", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
