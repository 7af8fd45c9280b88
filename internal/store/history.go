package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/jdalton/taskwell-api/internal/domain"
)

// RecurrenceHistoryStore is the occurrence history ledger: it records one
// row per spawned instance of a recurring task and hands out occurrence
// numbers.
//
// NextOccurrenceNumber and Create must run inside a single transaction
// (via WithTx) when assigning a number to a new record; two concurrent
// completions of the same parent would otherwise both read the same
// maximum. The unique (parent_task_id, occurrence_number) constraint is
// the backstop for callers that get this wrong.
type RecurrenceHistoryStore interface {
	// NextOccurrenceNumber returns max(occurrence_number)+1 across the
	// parent's history records, or 1 when none exist. The read does not
	// mutate anything; repeated calls without an intervening Create
	// return the same value.
	NextOccurrenceNumber(ctx context.Context, parentTaskID uuid.UUID) (int, error)

	// Create inserts a history record. Returns ErrDuplicateOccurrence if
	// the (parent, occurrence number) pair already exists.
	Create(ctx context.Context, record *domain.RecurringTaskHistory) error

	// ListByParent returns the parent's history records ordered by
	// occurrence number.
	ListByParent(ctx context.Context, parentTaskID uuid.UUID) ([]*domain.RecurringTaskHistory, error)

	// WithTx returns a RecurrenceHistoryStore bound to the provided
	// transaction.
	WithTx(tx *sql.Tx) RecurrenceHistoryStore
}
