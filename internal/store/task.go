package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/jdalton/taskwell-api/internal/domain"
)

// TaskSort names a sortable column for task listings.
type TaskSort string

// Supported sort keys
const (
	TaskSortCreatedAt TaskSort = "created_at"
	TaskSortDueDate   TaskSort = "due_date"
	TaskSortPriority  TaskSort = "priority"
)

// TaskFilter narrows a task listing. Zero values mean "no constraint".
type TaskFilter struct {
	// Search matches title or description, case-insensitively.
	Search string
	// Priority restricts to a single priority when non-empty.
	Priority domain.Priority
	// Completed filters on the completion flag when non-nil.
	Completed *bool
	// Tag restricts to tasks carrying the named tag when non-empty.
	Tag string
	// DueStatus restricts to overdue, due-today, or upcoming incomplete
	// tasks when non-empty.
	DueStatus domain.DueStatus
	// Sort selects the ordering column; defaults to created_at.
	Sort TaskSort
	// Descending reverses the sort order.
	Descending bool
}

// TaskStore defines the persistence operations for tasks. All read and
// write operations that take a userID are scoped to that owner; a task
// belonging to a different user behaves as if it does not exist.
type TaskStore interface {
	// Create saves a new task. Returns ErrInvalidEntity if the owner
	// does not exist.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by ID for the given owner. Returns
	// ErrTaskNotFound if no such task exists.
	GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Task, error)

	// Get retrieves a task by ID regardless of owner. Used by background
	// jobs, which act on behalf of the system rather than a request.
	Get(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// List returns the owner's tasks matching the filter.
	List(ctx context.Context, userID uuid.UUID, filter TaskFilter) ([]*domain.Task, error)

	// Update saves changes to an existing task. Returns ErrTaskNotFound
	// if no such task exists for the owner.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task for the given owner. Returns ErrTaskNotFound
	// if no such task exists.
	Delete(ctx context.Context, userID, id uuid.UUID) error

	// WithTx returns a TaskStore bound to the provided transaction.
	WithTx(tx *sql.Tx) TaskStore
}
