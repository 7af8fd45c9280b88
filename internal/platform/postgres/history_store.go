package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/jdalton/taskwell-api/internal/domain"
	"github.com/jdalton/taskwell-api/internal/store"
)

// HistoryStore implements store.RecurrenceHistoryStore using
// PostgreSQL. The unique (parent_task_id, occurrence_number) index
// backs the ledger's no-duplicate guarantee.
type HistoryStore struct {
	db store.DBTX
}

// Ensure HistoryStore implements store.RecurrenceHistoryStore
var _ store.RecurrenceHistoryStore = (*HistoryStore)(nil)

// NewHistoryStore creates a PostgreSQL recurrence history store.
func NewHistoryStore(db store.DBTX) *HistoryStore {
	return &HistoryStore{db: db}
}

// WithTx returns a HistoryStore bound to the provided transaction.
func (s *HistoryStore) WithTx(tx *sql.Tx) store.RecurrenceHistoryStore {
	return &HistoryStore{db: tx}
}

// NextOccurrenceNumber returns max(occurrence_number)+1 for the parent,
// or 1 when no history exists yet.
func (s *HistoryStore) NextOccurrenceNumber(ctx context.Context, parentTaskID uuid.UUID) (int, error) {
	query := `
		SELECT COALESCE(MAX(occurrence_number), 0) + 1
		FROM recurring_task_history
		WHERE parent_task_id = $1
	`
	var next int
	if err := s.db.QueryRowContext(ctx, query, parentTaskID).Scan(&next); err != nil {
		return 0, fmt.Errorf("failed to compute next occurrence number: %w", mapError(err))
	}
	return next, nil
}

// Create inserts a history record.
func (s *HistoryStore) Create(ctx context.Context, record *domain.RecurringTaskHistory) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO recurring_task_history
			(id, parent_task_id, instance_task_id, occurrence_number, scheduled_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query,
		record.ID,
		record.ParentTaskID,
		record.InstanceTaskID,
		record.OccurrenceNumber,
		record.ScheduledDate,
		record.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "") {
			return store.ErrDuplicateOccurrence
		}
		return fmt.Errorf("failed to create history record: %w", mapError(err))
	}
	return nil
}

// ListByParent returns the parent's history records ordered by
// occurrence number.
func (s *HistoryStore) ListByParent(ctx context.Context, parentTaskID uuid.UUID) ([]*domain.RecurringTaskHistory, error) {
	query := `
		SELECT id, parent_task_id, instance_task_id, occurrence_number, scheduled_date, created_at
		FROM recurring_task_history
		WHERE parent_task_id = $1
		ORDER BY occurrence_number ASC
	`
	rows, err := s.db.QueryContext(ctx, query, parentTaskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", mapError(err))
	}
	defer func() { _ = rows.Close() }()

	var records []*domain.RecurringTaskHistory
	for rows.Next() {
		var rec domain.RecurringTaskHistory
		err := rows.Scan(
			&rec.ID,
			&rec.ParentTaskID,
			&rec.InstanceTaskID,
			&rec.OccurrenceNumber,
			&rec.ScheduledDate,
			&rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history record: %w", err)
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history: %w", err)
	}
	return records, nil
}
