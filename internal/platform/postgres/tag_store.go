package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/jdalton/taskwell-api/internal/domain"
	"github.com/jdalton/taskwell-api/internal/platform/logger"
	"github.com/jdalton/taskwell-api/internal/store"
)

// TagStore implements store.TagStore using PostgreSQL.
type TagStore struct {
	db store.DBTX
}

// Ensure TagStore implements store.TagStore
var _ store.TagStore = (*TagStore)(nil)

// NewTagStore creates a PostgreSQL tag store.
func NewTagStore(db store.DBTX) *TagStore {
	return &TagStore{db: db}
}

// WithTx returns a TagStore bound to the provided transaction.
func (s *TagStore) WithTx(tx *sql.Tx) store.TagStore {
	return &TagStore{db: tx}
}

// Create saves a new tag.
func (s *TagStore) Create(ctx context.Context, tag *domain.Tag) error {
	if err := tag.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO tags (id, name, created_at)
		VALUES ($1, $2, $3)
	`
	_, err := s.db.ExecContext(ctx, query, tag.ID, tag.Name, tag.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "") {
			return store.ErrTagNameExists
		}
		return fmt.Errorf("failed to create tag: %w", mapError(err))
	}
	return nil
}

// GetByID retrieves a tag by ID.
func (s *TagStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tag, error) {
	query := `SELECT id, name, created_at FROM tags WHERE id = $1`

	var tag domain.Tag
	err := s.db.QueryRowContext(ctx, query, id).Scan(&tag.ID, &tag.Name, &tag.CreatedAt)
	if err != nil {
		if store.IsNotFoundError(mapError(err)) {
			return nil, store.ErrTagNotFound
		}
		return nil, fmt.Errorf("failed to get tag: %w", mapError(err))
	}
	return &tag, nil
}

// List returns all tags ordered by name.
func (s *TagStore) List(ctx context.Context) ([]*domain.Tag, error) {
	query := `SELECT id, name, created_at FROM tags ORDER BY name ASC`
	return s.queryTags(ctx, query)
}

// ReplaceTaskTags associates the task with exactly the named tags,
// creating missing tags on the fly and dropping stale associations.
// Meant to run inside the caller's transaction so a failed replace
// leaves the previous associations intact.
func (s *TagStore) ReplaceTaskTags(ctx context.Context, taskID uuid.UUID, names []string) error {
	log := logger.FromContext(ctx)

	if _, err := s.db.ExecContext(ctx, `DELETE FROM task_tags WHERE task_id = $1`, taskID); err != nil {
		return fmt.Errorf("failed to clear task tags: %w", mapError(err))
	}

	for _, name := range names {
		tag, err := domain.NewTag(name)
		if err != nil {
			return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
		}

		// Upsert by name, keeping the existing row's ID when present.
		var tagID uuid.UUID
		err = s.db.QueryRowContext(ctx, `
			INSERT INTO tags (id, name, created_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			RETURNING id
		`, tag.ID, tag.Name, tag.CreatedAt).Scan(&tagID)
		if err != nil {
			return fmt.Errorf("failed to upsert tag %q: %w", name, mapError(err))
		}

		_, err = s.db.ExecContext(ctx, `
			INSERT INTO task_tags (task_id, tag_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, taskID, tagID)
		if err != nil {
			return fmt.Errorf("failed to associate tag %q: %w", name, mapError(err))
		}
	}

	log.Debug("replaced task tags", "task_id", taskID, "tag_count", len(names))
	return nil
}

// ListByTask returns the task's tags ordered by name.
func (s *TagStore) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.Tag, error) {
	query := `
		SELECT t.id, t.name, t.created_at
		FROM tags t
		JOIN task_tags tt ON tt.tag_id = t.id
		WHERE tt.task_id = $1
		ORDER BY t.name ASC
	`
	return s.queryTags(ctx, query, taskID)
}

// Delete removes a tag. The task_tags foreign key cascades, so the
// tag's associations go with it.
func (s *TagStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContext(ctx)

	result, err := s.db.ExecContext(ctx, `DELETE FROM tags WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete tag: %w", mapError(err))
	}
	if err := checkRowsAffected(result, store.ErrTagNotFound); err != nil {
		return err
	}

	log.Debug("deleted tag", "tag_id", id)
	return nil
}

func (s *TagStore) queryTags(ctx context.Context, query string, args ...interface{}) ([]*domain.Tag, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", mapError(err))
	}
	defer func() { _ = rows.Close() }()

	var tags []*domain.Tag
	for rows.Next() {
		var tag domain.Tag
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, &tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tags: %w", err)
	}
	return tags, nil
}
