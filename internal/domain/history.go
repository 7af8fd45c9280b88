package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for RecurringTaskHistory
var (
	ErrEmptyHistoryID         = errors.New("history ID cannot be empty")
	ErrEmptyParentTaskID      = errors.New("history parent task ID cannot be empty")
	ErrEmptyInstanceTaskID    = errors.New("history instance task ID cannot be empty")
	ErrInvalidOccurrenceNum   = errors.New("occurrence number must be at least 1")
	ErrZeroScheduledDate      = errors.New("history scheduled date cannot be zero")
	ErrSelfReferencingHistory = errors.New("history parent and instance cannot be the same task")
)

// RecurringTaskHistory links one spawned occurrence of a recurring task to
// its parent. For a fixed parent, occurrence numbers are unique, 1-based,
// and increase by exactly one per spawned instance.
type RecurringTaskHistory struct {
	ID               uuid.UUID `json:"id"`
	ParentTaskID     uuid.UUID `json:"parent_task_id"`
	InstanceTaskID   uuid.UUID `json:"instance_task_id"`
	OccurrenceNumber int       `json:"occurrence_number"`
	ScheduledDate    time.Time `json:"scheduled_date"`
	CreatedAt        time.Time `json:"created_at"`
}

// NewRecurringTaskHistory creates a history record linking a parent task
// to a freshly spawned instance.
func NewRecurringTaskHistory(
	parentTaskID, instanceTaskID uuid.UUID,
	occurrenceNumber int,
	scheduledDate time.Time,
) (*RecurringTaskHistory, error) {
	record := &RecurringTaskHistory{
		ID:               uuid.New(),
		ParentTaskID:     parentTaskID,
		InstanceTaskID:   instanceTaskID,
		OccurrenceNumber: occurrenceNumber,
		ScheduledDate:    scheduledDate.UTC(),
		CreatedAt:        time.Now().UTC(),
	}

	if err := record.Validate(); err != nil {
		return nil, err
	}

	return record, nil
}

// Validate checks if the RecurringTaskHistory has valid data.
func (h *RecurringTaskHistory) Validate() error {
	if h.ID == uuid.Nil {
		return ErrEmptyHistoryID
	}

	if h.ParentTaskID == uuid.Nil {
		return ErrEmptyParentTaskID
	}

	if h.InstanceTaskID == uuid.Nil {
		return ErrEmptyInstanceTaskID
	}

	if h.ParentTaskID == h.InstanceTaskID {
		return ErrSelfReferencingHistory
	}

	if h.OccurrenceNumber < 1 {
		return ErrInvalidOccurrenceNum
	}

	if h.ScheduledDate.IsZero() {
		return ErrZeroScheduledDate
	}

	return nil
}
