package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jdalton/taskwell-api/internal/domain"
	"github.com/jdalton/taskwell-api/internal/events"
	"github.com/jdalton/taskwell-api/internal/job"
	"github.com/jdalton/taskwell-api/internal/store"
)

// ReminderScheduler creates a reminder and queues its fire job.
// Implemented by the job package's scheduler.
type ReminderScheduler interface {
	Schedule(ctx context.Context, taskID uuid.UUID, at time.Time) (*domain.ScheduledReminder, error)
}

// TaskView bundles a task with its tags for presentation.
type TaskView struct {
	Task *domain.Task
	Tags []*domain.Tag
}

// CreateTaskParams carries the fields for creating a task.
type CreateTaskParams struct {
	Title               string
	Description         string
	Priority            domain.Priority
	DueDate             *time.Time
	RecurrencePattern   domain.RecurrencePattern
	ReminderLeadMinutes *int
	Tags                []string
}

// UpdateTaskParams carries a partial task update. Nil pointer fields
// leave the current value unchanged; the Clear flags unset optional
// fields.
type UpdateTaskParams struct {
	Title               *string
	Description         *string
	Priority            *domain.Priority
	DueDate             *time.Time
	ClearDueDate        bool
	RecurrencePattern   *domain.RecurrencePattern
	ReminderLeadMinutes *int
	ClearReminderLead   bool
	Completed           *bool
	Tags                *[]string
}

// TaskService exposes the task operations the API builds on.
type TaskService interface {
	Create(ctx context.Context, userID uuid.UUID, params CreateTaskParams) (*TaskView, error)
	Get(ctx context.Context, userID, taskID uuid.UUID) (*TaskView, error)
	List(ctx context.Context, userID uuid.UUID, filter store.TaskFilter) ([]*TaskView, error)
	Update(ctx context.Context, userID, taskID uuid.UUID, params UpdateTaskParams) (*TaskView, error)
	Delete(ctx context.Context, userID, taskID uuid.UUID) error

	// ToggleCompletion flips the task's completed flag. Completing a
	// recurring task additionally requests the spawn of its next
	// occurrence; a failure there never affects the toggle itself.
	ToggleCompletion(ctx context.Context, userID, taskID uuid.UUID) (*TaskView, error)

	// History returns the task's recurrence ledger ordered by occurrence
	// number.
	History(ctx context.Context, userID, taskID uuid.UUID) ([]*domain.RecurringTaskHistory, error)
}

type taskService struct {
	tasks     store.TaskStore
	tags      store.TagStore
	history   store.RecurrenceHistoryStore
	scheduler ReminderScheduler
	emitter   events.EventEmitter
	logger    *slog.Logger
	runTx     func(ctx context.Context, fn store.TxFn) error
}

// NewTaskService creates the task service.
func NewTaskService(
	db *sql.DB,
	tasks store.TaskStore,
	tags store.TagStore,
	history store.RecurrenceHistoryStore,
	scheduler ReminderScheduler,
	emitter events.EventEmitter,
	logger *slog.Logger,
) TaskService {
	return &taskService{
		tasks:     tasks,
		tags:      tags,
		history:   history,
		scheduler: scheduler,
		emitter:   emitter,
		logger:    logger.With("component", "task_service"),
		runTx: func(ctx context.Context, fn store.TxFn) error {
			return store.RunInTransaction(ctx, db, fn)
		},
	}
}

func (s *taskService) Create(ctx context.Context, userID uuid.UUID, params CreateTaskParams) (*TaskView, error) {
	task, err := domain.NewTask(userID, params.Title)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}
	task.Description = params.Description
	if params.Priority != "" {
		task.Priority = params.Priority
	}
	if params.DueDate != nil {
		due := params.DueDate.UTC()
		task.DueDate = &due
	}
	if params.RecurrencePattern != "" {
		task.RecurrencePattern = params.RecurrencePattern
	}
	task.ReminderLeadMinutes = params.ReminderLeadMinutes
	if err := task.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	err = s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.tasks.WithTx(tx).Create(ctx, task); err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}
		if len(params.Tags) > 0 {
			if err := s.tags.WithTx(tx).ReplaceTaskTags(ctx, task.ID, params.Tags); err != nil {
				return fmt.Errorf("failed to set task tags: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.scheduleReminder(ctx, task)
	return s.view(ctx, task)
}

func (s *taskService) Get(ctx context.Context, userID, taskID uuid.UUID) (*TaskView, error) {
	task, err := s.tasks.GetByID(ctx, userID, taskID)
	if err != nil {
		return nil, mapTaskErr(err)
	}
	return s.view(ctx, task)
}

func (s *taskService) List(ctx context.Context, userID uuid.UUID, filter store.TaskFilter) ([]*TaskView, error) {
	tasks, err := s.tasks.List(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	views := make([]*TaskView, 0, len(tasks))
	for _, task := range tasks {
		view, err := s.view(ctx, task)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *taskService) Update(ctx context.Context, userID, taskID uuid.UUID, params UpdateTaskParams) (*TaskView, error) {
	task, err := s.tasks.GetByID(ctx, userID, taskID)
	if err != nil {
		return nil, mapTaskErr(err)
	}

	scheduleChanged := applyUpdate(task, params)
	task.UpdatedAt = time.Now().UTC()
	if err := task.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	err = s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.tasks.WithTx(tx).Update(ctx, task); err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}
		if params.Tags != nil {
			if err := s.tags.WithTx(tx).ReplaceTaskTags(ctx, task.ID, *params.Tags); err != nil {
				return fmt.Errorf("failed to set task tags: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, mapTaskErr(err)
	}

	if scheduleChanged {
		s.scheduleReminder(ctx, task)
	}
	return s.view(ctx, task)
}

func (s *taskService) Delete(ctx context.Context, userID, taskID uuid.UUID) error {
	if err := s.tasks.Delete(ctx, userID, taskID); err != nil {
		return mapTaskErr(err)
	}
	return nil
}

func (s *taskService) ToggleCompletion(ctx context.Context, userID, taskID uuid.UUID) (*TaskView, error) {
	task, err := s.tasks.GetByID(ctx, userID, taskID)
	if err != nil {
		return nil, mapTaskErr(err)
	}

	task.Completed = !task.Completed
	task.UpdatedAt = time.Now().UTC()
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, mapTaskErr(err)
	}

	if task.Completed && task.IsRecurring() {
		s.requestNextOccurrence(ctx, task)
	}
	return s.view(ctx, task)
}

func (s *taskService) History(ctx context.Context, userID, taskID uuid.UUID) ([]*domain.RecurringTaskHistory, error) {
	// Ownership check before exposing the ledger.
	if _, err := s.tasks.GetByID(ctx, userID, taskID); err != nil {
		return nil, mapTaskErr(err)
	}

	records, err := s.history.ListByParent(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list recurrence history: %w", err)
	}
	return records, nil
}

// requestNextOccurrence emits the event that queues the recurrence job.
// The toggle has already committed; a failure here is logged and the
// next completion of the spawned chain retries naturally.
func (s *taskService) requestNextOccurrence(ctx context.Context, task *domain.Task) {
	event, err := events.NewJobRequestEvent(job.TypeRecurrenceSpawn, job.RecurrenceSpawnPayload{
		ParentTaskID: task.ID,
	})
	if err != nil {
		s.logger.Error("failed to build recurrence event",
			"task_id", task.ID, "error", err)
		return
	}
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		s.logger.Error("failed to emit recurrence event",
			"task_id", task.ID, "error", err)
		return
	}
	s.logger.Debug("requested next occurrence", "task_id", task.ID)
}

// scheduleReminder creates a reminder for the task when it carries both
// a due date and a lead time. The task write has already committed, so
// scheduling problems are logged, not surfaced.
func (s *taskService) scheduleReminder(ctx context.Context, task *domain.Task) {
	at, ok := task.ReminderTime()
	if !ok {
		return
	}
	if _, err := s.scheduler.Schedule(ctx, task.ID, at); err != nil {
		s.logger.Error("failed to schedule reminder",
			"task_id", task.ID,
			"scheduled_time", at,
			"error", err)
	}
}

func (s *taskService) view(ctx context.Context, task *domain.Task) (*TaskView, error) {
	tags, err := s.tags.ListByTask(ctx, task.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load task tags: %w", err)
	}
	return &TaskView{Task: task, Tags: tags}, nil
}

// applyUpdate copies the provided fields onto the task and reports
// whether the reminder schedule inputs changed.
func applyUpdate(task *domain.Task, params UpdateTaskParams) bool {
	scheduleChanged := false

	if params.Title != nil {
		task.Title = *params.Title
	}
	if params.Description != nil {
		task.Description = *params.Description
	}
	if params.Priority != nil {
		task.Priority = *params.Priority
	}
	if params.ClearDueDate {
		task.DueDate = nil
		scheduleChanged = true
	} else if params.DueDate != nil {
		due := params.DueDate.UTC()
		task.DueDate = &due
		scheduleChanged = true
	}
	if params.RecurrencePattern != nil {
		task.RecurrencePattern = *params.RecurrencePattern
	}
	if params.ClearReminderLead {
		task.ReminderLeadMinutes = nil
		scheduleChanged = true
	} else if params.ReminderLeadMinutes != nil {
		task.ReminderLeadMinutes = params.ReminderLeadMinutes
		scheduleChanged = true
	}
	if params.Completed != nil {
		task.Completed = *params.Completed
	}

	return scheduleChanged
}

func mapTaskErr(err error) error {
	if errors.Is(err, store.ErrTaskNotFound) || errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrTaskNotFound, err)
	}
	return err
}
