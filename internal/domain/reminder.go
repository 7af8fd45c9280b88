package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for ScheduledReminder
var (
	ErrEmptyReminderID     = errors.New("reminder ID cannot be empty")
	ErrEmptyReminderTaskID = errors.New("reminder task ID cannot be empty")
	ErrZeroScheduledTime   = errors.New("reminder scheduled time cannot be zero")
)

// ScheduledReminder records a planned notification for a task. A reminder
// transitions from pending to triggered exactly once, either when the
// dispatcher fires it at its scheduled time or when the expiry sweep
// resolves it after the time has passed. There is no way back to pending.
type ScheduledReminder struct {
	ID            uuid.UUID `json:"id"`
	TaskID        uuid.UUID `json:"task_id"`
	ScheduledTime time.Time `json:"scheduled_time"`
	Triggered     bool      `json:"triggered"`
	// TriggeredAt is set when the dispatcher actually fires the reminder.
	// Reminders resolved by the expiry sweep stay NULL here: they were
	// marked done without a notification being sent.
	TriggeredAt *time.Time `json:"triggered_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// NewScheduledReminder creates a pending reminder for the given task.
func NewScheduledReminder(taskID uuid.UUID, scheduledTime time.Time) (*ScheduledReminder, error) {
	reminder := &ScheduledReminder{
		ID:            uuid.New(),
		TaskID:        taskID,
		ScheduledTime: scheduledTime.UTC(),
		Triggered:     false,
		CreatedAt:     time.Now().UTC(),
	}

	if err := reminder.Validate(); err != nil {
		return nil, err
	}

	return reminder, nil
}

// Validate checks if the ScheduledReminder has valid data.
func (r *ScheduledReminder) Validate() error {
	if r.ID == uuid.Nil {
		return ErrEmptyReminderID
	}

	if r.TaskID == uuid.Nil {
		return ErrEmptyReminderTaskID
	}

	if r.ScheduledTime.IsZero() {
		return ErrZeroScheduledTime
	}

	return nil
}

// Pending reports whether the reminder is still waiting to fire.
func (r *ScheduledReminder) Pending() bool {
	return !r.Triggered
}
