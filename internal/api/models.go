package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/jdalton/taskwell-api/internal/domain"
	"github.com/jdalton/taskwell-api/internal/service"
)

// RegisterRequest is the payload for user registration.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=12,max=72"`
}

// LoginRequest is the payload for user login.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshTokenRequest is the payload for refreshing an access token.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// AuthResponse carries the issued tokens.
type AuthResponse struct {
	UserID       uuid.UUID `json:"user_id"`
	Token        string    `json:"token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
}

// CreateTaskRequest is the payload for creating a task.
type CreateTaskRequest struct {
	Title               string     `json:"title"                 validate:"required,max=255"`
	Description         string     `json:"description,omitempty"`
	Priority            string     `json:"priority,omitempty"              validate:"omitempty,oneof=low medium high"`
	DueDate             *time.Time `json:"due_date,omitempty"`
	RecurrencePattern   string     `json:"recurrence_pattern,omitempty"    validate:"omitempty,oneof=none daily weekly monthly"`
	ReminderLeadMinutes *int       `json:"reminder_lead_minutes,omitempty" validate:"omitempty,min=1"`
	Tags                []string   `json:"tags,omitempty"`
}

// UpdateTaskRequest is the payload for a partial task update. Omitted
// fields stay unchanged; the clear flags unset optional fields.
type UpdateTaskRequest struct {
	Title               *string    `json:"title,omitempty"                 validate:"omitempty,max=255"`
	Description         *string    `json:"description,omitempty"`
	Priority            *string    `json:"priority,omitempty"              validate:"omitempty,oneof=low medium high"`
	DueDate             *time.Time `json:"due_date,omitempty"`
	ClearDueDate        bool       `json:"clear_due_date,omitempty"`
	RecurrencePattern   *string    `json:"recurrence_pattern,omitempty"    validate:"omitempty,oneof=none daily weekly monthly"`
	ReminderLeadMinutes *int       `json:"reminder_lead_minutes,omitempty" validate:"omitempty,min=1"`
	ClearReminderLead   bool       `json:"clear_reminder_lead,omitempty"`
	Completed           *bool      `json:"completed,omitempty"`
	Tags                *[]string  `json:"tags,omitempty"`
}

// TaskResponse is the API representation of a task.
type TaskResponse struct {
	ID                  uuid.UUID  `json:"id"`
	Title               string     `json:"title"`
	Description         string     `json:"description,omitempty"`
	Completed           bool       `json:"completed"`
	Priority            string     `json:"priority"`
	DueDate             *time.Time `json:"due_date,omitempty"`
	DueStatus           string     `json:"due_status"`
	RecurrencePattern   string     `json:"recurrence_pattern"`
	ReminderLeadMinutes *int       `json:"reminder_lead_minutes,omitempty"`
	LastOccurrenceID    *uuid.UUID `json:"last_occurrence_id,omitempty"`
	Tags                []string   `json:"tags"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// newTaskResponse builds the API view of a task, deriving the due
// status from the current time.
func newTaskResponse(view *service.TaskView, now time.Time) TaskResponse {
	task := view.Task
	tagNames := make([]string, 0, len(view.Tags))
	for _, tag := range view.Tags {
		tagNames = append(tagNames, tag.Name)
	}

	return TaskResponse{
		ID:                  task.ID,
		Title:               task.Title,
		Description:         task.Description,
		Completed:           task.Completed,
		Priority:            string(task.Priority),
		DueDate:             task.DueDate,
		DueStatus:           string(task.DueStatusAt(now)),
		RecurrencePattern:   string(task.RecurrencePattern),
		ReminderLeadMinutes: task.ReminderLeadMinutes,
		LastOccurrenceID:    task.LastOccurrenceID,
		Tags:                tagNames,
		CreatedAt:           task.CreatedAt,
		UpdatedAt:           task.UpdatedAt,
	}
}

// CreateTagRequest is the payload for creating a tag.
type CreateTagRequest struct {
	Name string `json:"name" validate:"required,max=50"`
}

// TagResponse is the API representation of a tag.
type TagResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func newTagResponse(tag *domain.Tag) TagResponse {
	return TagResponse{
		ID:        tag.ID,
		Name:      tag.Name,
		CreatedAt: tag.CreatedAt,
	}
}

// ReminderResponse is the API representation of a scheduled reminder.
type ReminderResponse struct {
	ID            uuid.UUID  `json:"id"`
	TaskID        uuid.UUID  `json:"task_id"`
	ScheduledTime time.Time  `json:"scheduled_time"`
	Triggered     bool       `json:"triggered"`
	TriggeredAt   *time.Time `json:"triggered_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func newReminderResponse(reminder *domain.ScheduledReminder) ReminderResponse {
	return ReminderResponse{
		ID:            reminder.ID,
		TaskID:        reminder.TaskID,
		ScheduledTime: reminder.ScheduledTime,
		Triggered:     reminder.Triggered,
		TriggeredAt:   reminder.TriggeredAt,
		CreatedAt:     reminder.CreatedAt,
	}
}

// HistoryResponse is the API representation of an occurrence ledger
// record.
type HistoryResponse struct {
	ID               uuid.UUID `json:"id"`
	ParentTaskID     uuid.UUID `json:"parent_task_id"`
	InstanceTaskID   uuid.UUID `json:"instance_task_id"`
	OccurrenceNumber int       `json:"occurrence_number"`
	ScheduledDate    time.Time `json:"scheduled_date"`
	CreatedAt        time.Time `json:"created_at"`
}

func newHistoryResponse(rec *domain.RecurringTaskHistory) HistoryResponse {
	return HistoryResponse{
		ID:               rec.ID,
		ParentTaskID:     rec.ParentTaskID,
		InstanceTaskID:   rec.InstanceTaskID,
		OccurrenceNumber: rec.OccurrenceNumber,
		ScheduledDate:    rec.ScheduledDate,
		CreatedAt:        rec.CreatedAt,
	}
}
