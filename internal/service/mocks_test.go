package service

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jdalton/taskwell-api/internal/domain"
	"github.com/jdalton/taskwell-api/internal/events"
	"github.com/jdalton/taskwell-api/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// passthroughTx runs the transaction body directly; the mocks ignore
// the tx handle.
func passthroughTx(ctx context.Context, fn store.TxFn) error {
	return fn(ctx, nil)
}

// mockTaskStore is an in-memory TaskStore.
type mockTaskStore struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]*domain.Task
}

func newMockTaskStore() *mockTaskStore {
	return &mockTaskStore{tasks: make(map[uuid.UUID]*domain.Task)}
}

func (m *mockTaskStore) Create(_ context.Context, task *domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *task
	m.tasks[task.ID] = &copied
	return nil
}

func (m *mockTaskStore) GetByID(_ context.Context, userID, id uuid.UUID) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	task, ok := m.tasks[id]
	if !ok || task.UserID != userID {
		return nil, store.ErrTaskNotFound
	}
	copied := *task
	return &copied, nil
}

func (m *mockTaskStore) Get(_ context.Context, id uuid.UUID) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	task, ok := m.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	copied := *task
	return &copied, nil
}

func (m *mockTaskStore) List(_ context.Context, userID uuid.UUID, filter store.TaskFilter) ([]*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Task
	for _, task := range m.tasks {
		if task.UserID != userID {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(task.Title), strings.ToLower(filter.Search)) {
			continue
		}
		if filter.Priority != "" && task.Priority != filter.Priority {
			continue
		}
		if filter.Completed != nil && task.Completed != *filter.Completed {
			continue
		}
		copied := *task
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *mockTaskStore) Update(_ context.Context, task *domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.tasks[task.ID]
	if !ok || existing.UserID != task.UserID {
		return store.ErrTaskNotFound
	}
	copied := *task
	m.tasks[task.ID] = &copied
	return nil
}

func (m *mockTaskStore) Delete(_ context.Context, userID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	task, ok := m.tasks[id]
	if !ok || task.UserID != userID {
		return store.ErrTaskNotFound
	}
	delete(m.tasks, id)
	return nil
}

func (m *mockTaskStore) WithTx(*sql.Tx) store.TaskStore { return m }

// mockTagStore is an in-memory TagStore.
type mockTagStore struct {
	mu       sync.Mutex
	tags     map[string]*domain.Tag
	taskTags map[uuid.UUID][]string
}

func newMockTagStore() *mockTagStore {
	return &mockTagStore{
		tags:     make(map[string]*domain.Tag),
		taskTags: make(map[uuid.UUID][]string),
	}
}

func (m *mockTagStore) Create(_ context.Context, tag *domain.Tag) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.tags[tag.Name]; exists {
		return store.ErrTagNameExists
	}
	copied := *tag
	m.tags[tag.Name] = &copied
	return nil
}

func (m *mockTagStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, tag := range m.tags {
		if tag.ID == id {
			copied := *tag
			return &copied, nil
		}
	}
	return nil, store.ErrTagNotFound
}

func (m *mockTagStore) List(_ context.Context) ([]*domain.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Tag
	for _, tag := range m.tags {
		copied := *tag
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *mockTagStore) ReplaceTaskTags(_ context.Context, taskID uuid.UUID, names []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, name := range names {
		if _, exists := m.tags[name]; !exists {
			tag, err := domain.NewTag(name)
			if err != nil {
				return err
			}
			m.tags[name] = tag
		}
	}
	m.taskTags[taskID] = append([]string(nil), names...)
	return nil
}

func (m *mockTagStore) ListByTask(_ context.Context, taskID uuid.UUID) ([]*domain.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := append([]string(nil), m.taskTags[taskID]...)
	sort.Strings(names)
	var out []*domain.Tag
	for _, name := range names {
		if tag, ok := m.tags[name]; ok {
			copied := *tag
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *mockTagStore) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for name, tag := range m.tags {
		if tag.ID == id {
			delete(m.tags, name)
			for taskID, names := range m.taskTags {
				kept := names[:0]
				for _, n := range names {
					if n != name {
						kept = append(kept, n)
					}
				}
				m.taskTags[taskID] = kept
			}
			return nil
		}
	}
	return store.ErrTagNotFound
}

func (m *mockTagStore) WithTx(*sql.Tx) store.TagStore { return m }

// mockHistoryStore is an in-memory RecurrenceHistoryStore enforcing the
// unique (parent, occurrence number) constraint.
type mockHistoryStore struct {
	mu      sync.Mutex
	records []*domain.RecurringTaskHistory
}

func newMockHistoryStore() *mockHistoryStore {
	return &mockHistoryStore{}
}

func (m *mockHistoryStore) NextOccurrenceNumber(_ context.Context, parentTaskID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	max := 0
	for _, rec := range m.records {
		if rec.ParentTaskID == parentTaskID && rec.OccurrenceNumber > max {
			max = rec.OccurrenceNumber
		}
	}
	return max + 1, nil
}

func (m *mockHistoryStore) Create(_ context.Context, record *domain.RecurringTaskHistory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range m.records {
		if rec.ParentTaskID == record.ParentTaskID && rec.OccurrenceNumber == record.OccurrenceNumber {
			return store.ErrDuplicateOccurrence
		}
	}
	copied := *record
	m.records = append(m.records, &copied)
	return nil
}

func (m *mockHistoryStore) ListByParent(_ context.Context, parentTaskID uuid.UUID) ([]*domain.RecurringTaskHistory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.RecurringTaskHistory
	for _, rec := range m.records {
		if rec.ParentTaskID == parentTaskID {
			copied := *rec
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OccurrenceNumber < out[j].OccurrenceNumber })
	return out, nil
}

func (m *mockHistoryStore) WithTx(*sql.Tx) store.RecurrenceHistoryStore { return m }

// fakeScheduler records reminder scheduling calls.
type fakeScheduler struct {
	mu        sync.Mutex
	taskIDs   []uuid.UUID
	times     []time.Time
	returnErr error
}

func (f *fakeScheduler) Schedule(_ context.Context, taskID uuid.UUID, at time.Time) (*domain.ScheduledReminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.returnErr != nil {
		return nil, f.returnErr
	}
	f.taskIDs = append(f.taskIDs, taskID)
	f.times = append(f.times, at)
	return domain.NewScheduledReminder(taskID, at)
}

// capturingEmitter records emitted events.
type capturingEmitter struct {
	mu        sync.Mutex
	events    []*events.JobRequestEvent
	returnErr error
}

func (c *capturingEmitter) EmitEvent(_ context.Context, event *events.JobRequestEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.returnErr != nil {
		return c.returnErr
	}
	c.events = append(c.events, event)
	return nil
}
