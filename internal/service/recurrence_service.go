package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jdalton/taskwell-api/internal/domain"
	"github.com/jdalton/taskwell-api/internal/domain/recurrence"
	"github.com/jdalton/taskwell-api/internal/store"
)

// RecurrenceService spawns successor tasks for completed recurring
// tasks and maintains the occurrence history ledger.
type RecurrenceService struct {
	tasks    store.TaskStore
	history  store.RecurrenceHistoryStore
	logger   *slog.Logger
	timeFunc func() time.Time
	runTx    func(ctx context.Context, fn store.TxFn) error
}

// NewRecurrenceService creates the recurrence service.
func NewRecurrenceService(
	db *sql.DB,
	tasks store.TaskStore,
	history store.RecurrenceHistoryStore,
	logger *slog.Logger,
) *RecurrenceService {
	return &RecurrenceService{
		tasks:    tasks,
		history:  history,
		logger:   logger.With("component", "recurrence_service"),
		timeFunc: func() time.Time { return time.Now().UTC() },
		runTx: func(ctx context.Context, fn store.TxFn) error {
			return store.RunInTransaction(ctx, db, fn)
		},
	}
}

// WithTimeFunc overrides the clock, for tests.
func (s *RecurrenceService) WithTimeFunc(timeFunc func() time.Time) *RecurrenceService {
	s.timeFunc = timeFunc
	return s
}

// CreateNextOccurrence spawns the successor of the given recurring
// task. The successor insert, the occurrence number assignment, and the
// history record happen in one transaction, so concurrent completions
// of the same parent cannot both claim a number; the unique constraint
// on (parent, occurrence number) rejects the loser, which simply
// retries against the advanced maximum.
//
// The next due date is computed from the parent's stored due date, even
// when the task was completed late. A nil result with a nil error means
// the task stopped being recurring and there was nothing to spawn.
func (s *RecurrenceService) CreateNextOccurrence(ctx context.Context, parentTaskID uuid.UUID) (*domain.Task, error) {
	parent, err := s.tasks.Get(ctx, parentTaskID)
	if err != nil {
		return nil, fmt.Errorf("failed to load parent task: %w", err)
	}

	if !parent.IsRecurring() {
		s.logger.Info("task is no longer recurring, skipping spawn",
			"task_id", parentTaskID)
		return nil, nil
	}

	now := s.timeFunc()
	nextDue := recurrence.NextDue(parent.DueDate, parent.RecurrencePattern, now)
	successor := parent.NextOccurrence(nextDue)

	err = s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.tasks.WithTx(tx)
		txHistory := s.history.WithTx(tx)

		if err := txTasks.Create(ctx, successor); err != nil {
			return fmt.Errorf("failed to create successor task: %w", err)
		}

		number, err := txHistory.NextOccurrenceNumber(ctx, parent.ID)
		if err != nil {
			return fmt.Errorf("failed to compute occurrence number: %w", err)
		}

		record, err := domain.NewRecurringTaskHistory(parent.ID, successor.ID, number, nextDue)
		if err != nil {
			return fmt.Errorf("invalid history record: %w", err)
		}

		if err := txHistory.Create(ctx, record); err != nil {
			return fmt.Errorf("failed to record occurrence: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("created next occurrence",
		"parent_task_id", parent.ID,
		"successor_task_id", successor.ID,
		"due_date", nextDue)
	return successor, nil
}
