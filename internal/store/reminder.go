package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/jdalton/taskwell-api/internal/domain"
)

// ReminderStore defines the persistence operations for scheduled
// reminders.
type ReminderStore interface {
	// Create saves a new scheduled reminder. Returns ErrInvalidEntity if
	// the task does not exist.
	Create(ctx context.Context, reminder *domain.ScheduledReminder) error

	// GetByID retrieves a reminder by ID. Returns ErrReminderNotFound if
	// it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ScheduledReminder, error)

	// ListByOwner returns all reminders belonging to the user's tasks,
	// most recently scheduled first.
	ListByOwner(ctx context.Context, userID uuid.UUID) ([]*domain.ScheduledReminder, error)

	// Delete cancels a reminder owned by the given user. Returns
	// ErrReminderNotFound if no such reminder exists.
	Delete(ctx context.Context, userID, id uuid.UUID) error

	// MarkTriggered atomically flips the reminder's triggered flag and
	// records triggeredAt. The update only applies while the reminder is
	// still pending; it returns false when the reminder was already
	// triggered (or does not exist), so a reminder can never fire twice.
	MarkTriggered(ctx context.Context, id uuid.UUID, triggeredAt time.Time) (bool, error)

	// LatestPendingForTask returns the most recently created pending
	// reminder for the task. Returns ErrReminderNotFound when the task
	// has no pending reminder.
	LatestPendingForTask(ctx context.Context, taskID uuid.UUID) (*domain.ScheduledReminder, error)

	// ExpirePending marks every reminder whose scheduled time is before
	// now and which has not been triggered as triggered, leaving
	// triggered_at unset (a swept reminder was resolved, not sent).
	// Returns the number of reminders expired.
	ExpirePending(ctx context.Context, now time.Time) (int64, error)

	// WithTx returns a ReminderStore bound to the provided transaction.
	WithTx(tx *sql.Tx) ReminderStore
}
