package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/jdalton/taskwell-api/internal/domain"
)

// TagStore defines the persistence operations for tags and their
// association with tasks.
type TagStore interface {
	// Create saves a new tag. Returns ErrTagNameExists if the name is
	// already taken.
	Create(ctx context.Context, tag *domain.Tag) error

	// GetByID retrieves a tag by ID. Returns ErrTagNotFound if it does
	// not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Tag, error)

	// List returns all tags ordered by name.
	List(ctx context.Context) ([]*domain.Tag, error)

	// ReplaceTaskTags associates the task with exactly the named tags,
	// creating tags that do not exist yet and dropping stale
	// associations.
	ReplaceTaskTags(ctx context.Context, taskID uuid.UUID, names []string) error

	// ListByTask returns the task's tags ordered by name.
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.Tag, error)

	// Delete removes a tag and its task associations. Returns
	// ErrTagNotFound if the tag does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a TagStore bound to the provided transaction.
	WithTx(tx *sql.Tx) TagStore
}
