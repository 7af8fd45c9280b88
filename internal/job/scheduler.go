package job

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jdalton/taskwell-api/internal/domain"
)

// ReminderCreator covers the reminder store operation the scheduler
// needs.
type ReminderCreator interface {
	Create(ctx context.Context, reminder *domain.ScheduledReminder) error
}

// Submitter covers the runner operation the scheduler needs.
type Submitter interface {
	SubmitAt(ctx context.Context, job Job, runAt time.Time) error
}

// ReminderScheduler creates scheduled reminders and queues the jobs
// that will fire them. A scheduled time already in the past is not an
// error; the fire job simply runs immediately.
type ReminderScheduler struct {
	reminders ReminderCreator
	runner    Submitter
	factory   *ReminderFireJobFactory
	logger    *slog.Logger
}

// NewReminderScheduler creates a reminder scheduler.
func NewReminderScheduler(reminders ReminderCreator, runner Submitter, factory *ReminderFireJobFactory, logger *slog.Logger) *ReminderScheduler {
	return &ReminderScheduler{
		reminders: reminders,
		runner:    runner,
		factory:   factory,
		logger:    logger.With("component", "reminder_scheduler"),
	}
}

// Schedule creates a pending reminder for the task and queues its fire
// job to run at the scheduled time.
func (s *ReminderScheduler) Schedule(ctx context.Context, taskID uuid.UUID, at time.Time) (*domain.ScheduledReminder, error) {
	reminder, err := domain.NewScheduledReminder(taskID, at)
	if err != nil {
		return nil, fmt.Errorf("invalid reminder: %w", err)
	}

	if err := s.reminders.Create(ctx, reminder); err != nil {
		return nil, fmt.Errorf("failed to save reminder: %w", err)
	}

	fireJob, err := s.factory.NewJob(reminder.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to build fire job: %w", err)
	}

	if err := s.runner.SubmitAt(ctx, fireJob, reminder.ScheduledTime); err != nil {
		return nil, fmt.Errorf("failed to queue fire job: %w", err)
	}

	s.logger.Info("reminder scheduled",
		"reminder_id", reminder.ID,
		"task_id", taskID,
		"scheduled_time", reminder.ScheduledTime)
	return reminder, nil
}
