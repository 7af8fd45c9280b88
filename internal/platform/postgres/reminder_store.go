package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jdalton/taskwell-api/internal/domain"
	"github.com/jdalton/taskwell-api/internal/platform/logger"
	"github.com/jdalton/taskwell-api/internal/store"
)

const reminderColumns = `id, task_id, scheduled_time, triggered, triggered_at, created_at`

// ReminderStore implements store.ReminderStore using PostgreSQL.
type ReminderStore struct {
	db store.DBTX
}

// Ensure ReminderStore implements store.ReminderStore
var _ store.ReminderStore = (*ReminderStore)(nil)

// NewReminderStore creates a PostgreSQL reminder store.
func NewReminderStore(db store.DBTX) *ReminderStore {
	return &ReminderStore{db: db}
}

// WithTx returns a ReminderStore bound to the provided transaction.
func (s *ReminderStore) WithTx(tx *sql.Tx) store.ReminderStore {
	return &ReminderStore{db: tx}
}

// Create saves a new scheduled reminder.
func (s *ReminderStore) Create(ctx context.Context, reminder *domain.ScheduledReminder) error {
	if err := reminder.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO scheduled_reminders (` + reminderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query,
		reminder.ID,
		reminder.TaskID,
		reminder.ScheduledTime,
		reminder.Triggered,
		reminder.TriggeredAt,
		reminder.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create reminder: %w", mapError(err))
	}
	return nil
}

// GetByID retrieves a reminder by ID.
func (s *ReminderStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.ScheduledReminder, error) {
	query := `
		SELECT ` + reminderColumns + `
		FROM scheduled_reminders
		WHERE id = $1
	`
	return s.scanReminder(s.db.QueryRowContext(ctx, query, id))
}

// ListByOwner returns all reminders for the user's tasks, most recently
// scheduled first.
func (s *ReminderStore) ListByOwner(ctx context.Context, userID uuid.UUID) ([]*domain.ScheduledReminder, error) {
	query := `
		SELECT r.id, r.task_id, r.scheduled_time, r.triggered, r.triggered_at, r.created_at
		FROM scheduled_reminders r
		JOIN tasks t ON t.id = r.task_id
		WHERE t.user_id = $1
		ORDER BY r.scheduled_time DESC
	`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", mapError(err))
	}
	defer func() { _ = rows.Close() }()

	var reminders []*domain.ScheduledReminder
	for rows.Next() {
		reminder, err := s.scanReminder(rows)
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, reminder)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reminders: %w", err)
	}
	return reminders, nil
}

// Delete cancels a reminder owned by the given user.
func (s *ReminderStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	query := `
		DELETE FROM scheduled_reminders r
		USING tasks t
		WHERE r.id = $1 AND r.task_id = t.id AND t.user_id = $2
	`
	result, err := s.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete reminder: %w", mapError(err))
	}
	return checkRowsAffected(result, store.ErrReminderNotFound)
}

// MarkTriggered atomically claims a pending reminder. The WHERE clause
// only matches untriggered rows, so of any number of concurrent
// callers exactly one sees true.
func (s *ReminderStore) MarkTriggered(ctx context.Context, id uuid.UUID, triggeredAt time.Time) (bool, error) {
	query := `
		UPDATE scheduled_reminders
		SET triggered = TRUE, triggered_at = $1
		WHERE id = $2 AND triggered = FALSE
	`
	result, err := s.db.ExecContext(ctx, query, triggeredAt, id)
	if err != nil {
		return false, fmt.Errorf("failed to mark reminder triggered: %w", mapError(err))
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

// LatestPendingForTask returns the most recently created pending
// reminder for the task. Creation order decides which schedule wins
// when a task's reminder has been rescheduled.
func (s *ReminderStore) LatestPendingForTask(ctx context.Context, taskID uuid.UUID) (*domain.ScheduledReminder, error) {
	query := `
		SELECT ` + reminderColumns + `
		FROM scheduled_reminders
		WHERE task_id = $1 AND triggered = FALSE
		ORDER BY created_at DESC
		LIMIT 1
	`
	return s.scanReminder(s.db.QueryRowContext(ctx, query, taskID))
}

// ExpirePending resolves overdue pending reminders in bulk, leaving
// triggered_at NULL to record that no notification was sent.
func (s *ReminderStore) ExpirePending(ctx context.Context, now time.Time) (int64, error) {
	log := logger.FromContext(ctx)

	query := `
		UPDATE scheduled_reminders
		SET triggered = TRUE
		WHERE triggered = FALSE AND scheduled_time < $1
	`
	result, err := s.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("failed to expire reminders: %w", mapError(err))
	}
	expired, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if expired > 0 {
		log.Debug("expired pending reminders", "count", expired)
	}
	return expired, nil
}

func (s *ReminderStore) scanReminder(row scanner) (*domain.ScheduledReminder, error) {
	var reminder domain.ScheduledReminder
	err := row.Scan(
		&reminder.ID,
		&reminder.TaskID,
		&reminder.ScheduledTime,
		&reminder.Triggered,
		&reminder.TriggeredAt,
		&reminder.CreatedAt,
	)
	if err != nil {
		if store.IsNotFoundError(mapError(err)) {
			return nil, store.ErrReminderNotFound
		}
		return nil, fmt.Errorf("failed to scan reminder: %w", mapError(err))
	}
	return &reminder, nil
}
