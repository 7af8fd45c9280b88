package api

import (
	"context"
	"database/sql"
	"net/http"
	"sort"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdalton/taskwell-api/internal/domain"
	"github.com/jdalton/taskwell-api/internal/store"
)

// stubTagStore is an in-memory TagStore for handler tests.
type stubTagStore struct {
	tags map[uuid.UUID]*domain.Tag
}

func newStubTagStore() *stubTagStore {
	return &stubTagStore{tags: make(map[uuid.UUID]*domain.Tag)}
}

func (s *stubTagStore) Create(_ context.Context, tag *domain.Tag) error {
	for _, existing := range s.tags {
		if existing.Name == tag.Name {
			return store.ErrTagNameExists
		}
	}
	copied := *tag
	s.tags[tag.ID] = &copied
	return nil
}

func (s *stubTagStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Tag, error) {
	tag, ok := s.tags[id]
	if !ok {
		return nil, store.ErrTagNotFound
	}
	copied := *tag
	return &copied, nil
}

func (s *stubTagStore) List(_ context.Context) ([]*domain.Tag, error) {
	var out []*domain.Tag
	for _, tag := range s.tags {
		copied := *tag
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *stubTagStore) ReplaceTaskTags(context.Context, uuid.UUID, []string) error { return nil }

func (s *stubTagStore) ListByTask(context.Context, uuid.UUID) ([]*domain.Tag, error) {
	return nil, nil
}

func (s *stubTagStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := s.tags[id]; !ok {
		return store.ErrTagNotFound
	}
	delete(s.tags, id)
	return nil
}

func (s *stubTagStore) WithTx(*sql.Tx) store.TagStore { return s }

func seedTag(t *testing.T, tags *stubTagStore, name string) *domain.Tag {
	t.Helper()
	tag, err := domain.NewTag(name)
	require.NoError(t, err)
	require.NoError(t, tags.Create(context.Background(), tag))
	return tag
}

func TestTagHandlerDelete(t *testing.T) {
	tags := newStubTagStore()
	handler := NewTagHandler(tags)
	tag := seedTag(t, tags, "garden")

	recorder := routedRequest(t, http.MethodDelete, "/tags/"+tag.ID.String(), nil, uuid.New(), func(r chi.Router) {
		r.Delete("/tags/{id}", handler.Delete)
	})

	assert.Equal(t, http.StatusNoContent, recorder.Code)

	_, err := tags.GetByID(context.Background(), tag.ID)
	assert.ErrorIs(t, err, store.ErrTagNotFound)
}

func TestTagHandlerDeleteMissingTag(t *testing.T) {
	tags := newStubTagStore()
	handler := NewTagHandler(tags)

	recorder := routedRequest(t, http.MethodDelete, "/tags/"+uuid.NewString(), nil, uuid.New(), func(r chi.Router) {
		r.Delete("/tags/{id}", handler.Delete)
	})

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestTagHandlerDeleteRequiresAuth(t *testing.T) {
	tags := newStubTagStore()
	handler := NewTagHandler(tags)
	tag := seedTag(t, tags, "garden")

	recorder := routedRequest(t, http.MethodDelete, "/tags/"+tag.ID.String(), nil, uuid.Nil, func(r chi.Router) {
		r.Delete("/tags/{id}", handler.Delete)
	})

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	_, err := tags.GetByID(context.Background(), tag.ID)
	assert.NoError(t, err, "tag must survive an unauthenticated delete")
}

func TestTagHandlerCreateDuplicateName(t *testing.T) {
	tags := newStubTagStore()
	handler := NewTagHandler(tags)
	seedTag(t, tags, "garden")

	recorder := routedRequest(t, http.MethodPost, "/tags", CreateTagRequest{Name: "garden"}, uuid.New(), func(r chi.Router) {
		r.Post("/tags", handler.Create)
	})

	assert.Equal(t, http.StatusConflict, recorder.Code)
}
