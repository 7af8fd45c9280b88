package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Priority represents the importance level of a task.
type Priority string

// Possible task priorities
const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// RecurrencePattern describes how a task repeats after completion.
type RecurrencePattern string

// Possible recurrence patterns. A task with RecurrenceNone never spawns
// successor tasks.
const (
	RecurrenceNone    RecurrencePattern = "none"
	RecurrenceDaily   RecurrencePattern = "daily"
	RecurrenceWeekly  RecurrencePattern = "weekly"
	RecurrenceMonthly RecurrencePattern = "monthly"
)

// DueStatus is a derived, read-only view of a task's due state.
type DueStatus string

// Possible due status values
const (
	DueStatusCompleted DueStatus = "completed"
	DueStatusNoDueDate DueStatus = "no-due-date"
	DueStatusOverdue   DueStatus = "overdue"
	DueStatusDueToday  DueStatus = "due-today"
	DueStatusUpcoming  DueStatus = "upcoming"
)

// Common validation errors for Task
var (
	ErrEmptyTaskID         = errors.New("task ID cannot be empty")
	ErrEmptyTaskUserID     = errors.New("task user ID cannot be empty")
	ErrEmptyTaskTitle      = errors.New("task title cannot be empty")
	ErrTaskTitleTooLong    = errors.New("task title cannot exceed 255 characters")
	ErrInvalidPriority     = errors.New("invalid task priority")
	ErrInvalidRecurrence   = errors.New("invalid recurrence pattern")
	ErrInvalidReminderLead = errors.New("reminder lead time must be at least 1 minute")
)

// Task represents a single unit of work owned by a user. Recurring tasks
// spawn successor tasks on completion; LastOccurrenceID links a spawned
// instance back to the task that produced it.
type Task struct {
	ID                uuid.UUID         `json:"id"`
	UserID            uuid.UUID         `json:"user_id"`
	Title             string            `json:"title"`
	Description       string            `json:"description,omitempty"`
	Completed         bool              `json:"completed"`
	Priority          Priority          `json:"priority"`
	DueDate           *time.Time        `json:"due_date,omitempty"`
	RecurrencePattern RecurrencePattern `json:"recurrence_pattern"`
	// ReminderLeadMinutes is how many minutes before the due date the
	// reminder should fire. Nil means no reminder.
	ReminderLeadMinutes *int       `json:"reminder_lead_minutes,omitempty"`
	LastOccurrenceID    *uuid.UUID `json:"last_occurrence_id,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// NewTask creates a new Task owned by the given user. It generates a new
// UUID, defaults the priority to medium and the recurrence pattern to none
// when unset, and stamps the creation/update times.
// Returns an error if validation fails.
func NewTask(userID uuid.UUID, title string) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		ID:                uuid.New(),
		UserID:            userID,
		Title:             title,
		Priority:          PriorityMedium,
		RecurrencePattern: RecurrenceNone,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}

	if t.UserID == uuid.Nil {
		return ErrEmptyTaskUserID
	}

	if t.Title == "" {
		return ErrEmptyTaskTitle
	}

	if len(t.Title) > 255 {
		return ErrTaskTitleTooLong
	}

	if !isValidPriority(t.Priority) {
		return ErrInvalidPriority
	}

	if !isValidRecurrencePattern(t.RecurrencePattern) {
		return ErrInvalidRecurrence
	}

	if t.ReminderLeadMinutes != nil && *t.ReminderLeadMinutes < 1 {
		return ErrInvalidReminderLead
	}

	return nil
}

// IsRecurring reports whether completing this task should spawn a
// successor.
func (t *Task) IsRecurring() bool {
	return t.RecurrencePattern != RecurrenceNone && t.RecurrencePattern != ""
}

// ReminderTime returns the instant at which a reminder for this task
// should fire, or false when the task carries no due date or no reminder
// lead time.
func (t *Task) ReminderTime() (time.Time, bool) {
	if t.DueDate == nil || t.ReminderLeadMinutes == nil {
		return time.Time{}, false
	}
	return t.DueDate.Add(-time.Duration(*t.ReminderLeadMinutes) * time.Minute), true
}

// DueStatusAt derives the task's due status relative to the given instant.
func (t *Task) DueStatusAt(now time.Time) DueStatus {
	if t.Completed {
		return DueStatusCompleted
	}

	if t.DueDate == nil {
		return DueStatusNoDueDate
	}

	dueY, dueM, dueD := t.DueDate.UTC().Date()
	nowY, nowM, nowD := now.UTC().Date()

	switch {
	case dueY == nowY && dueM == nowM && dueD == nowD:
		return DueStatusDueToday
	case t.DueDate.Before(now):
		return DueStatusOverdue
	default:
		return DueStatusUpcoming
	}
}

// NextOccurrence builds the successor task spawned when a recurring task
// is completed. The successor copies the descriptive fields and ownership,
// starts incomplete, carries the computed next due date, and records the
// parent as its last occurrence.
func (t *Task) NextOccurrence(nextDue time.Time) *Task {
	now := time.Now().UTC()
	parentID := t.ID
	due := nextDue

	return &Task{
		ID:                  uuid.New(),
		UserID:              t.UserID,
		Title:               t.Title,
		Description:         t.Description,
		Completed:           false,
		Priority:            t.Priority,
		DueDate:             &due,
		RecurrencePattern:   t.RecurrencePattern,
		ReminderLeadMinutes: t.ReminderLeadMinutes,
		LastOccurrenceID:    &parentID,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

// isValidPriority checks if the given priority is a valid Priority.
func isValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// isValidRecurrencePattern checks if the given pattern is a valid
// RecurrencePattern.
func isValidRecurrencePattern(p RecurrencePattern) bool {
	switch p {
	case RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly:
		return true
	default:
		return false
	}
}
