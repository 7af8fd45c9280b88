package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jdalton/taskwell-api/internal/domain"
	"github.com/jdalton/taskwell-api/internal/store"
)

// TaskGetter loads a task by ID regardless of owner. Implemented by the
// task store; jobs run outside any user's request context.
type TaskGetter interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.Task, error)
}

// ReminderMarker covers the reminder store operations the fire job
// needs.
type ReminderMarker interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ScheduledReminder, error)
	LatestPendingForTask(ctx context.Context, taskID uuid.UUID) (*domain.ScheduledReminder, error)
	MarkTriggered(ctx context.Context, id uuid.UUID, triggeredAt time.Time) (bool, error)
}

// ReminderFirePayload is the persisted payload for reminder fire jobs.
type ReminderFirePayload struct {
	ReminderID uuid.UUID `json:"reminder_id"`
}

// ReminderFireJob fires a scheduled reminder: it claims the reminder by
// marking it triggered and hands the notification to the notifier. The
// claim is an atomic pending-only update, so no reminder fires twice no
// matter how many times the job runs.
type ReminderFireJob struct {
	id        uuid.UUID
	payload   ReminderFirePayload
	reminders ReminderMarker
	tasks     TaskGetter
	notifier  Notifier
	logger    *slog.Logger
	timeFunc  func() time.Time
	rawBytes  []byte
}

// ReminderFireJobFactory builds ReminderFireJobs.
type ReminderFireJobFactory struct {
	reminders ReminderMarker
	tasks     TaskGetter
	notifier  Notifier
	logger    *slog.Logger
	timeFunc  func() time.Time
}

// NewReminderFireJobFactory creates a factory for reminder fire jobs.
func NewReminderFireJobFactory(reminders ReminderMarker, tasks TaskGetter, notifier Notifier, logger *slog.Logger) *ReminderFireJobFactory {
	return &ReminderFireJobFactory{
		reminders: reminders,
		tasks:     tasks,
		notifier:  notifier,
		logger:    logger.With("component", "reminder_fire_job"),
		timeFunc:  func() time.Time { return time.Now().UTC() },
	}
}

// WithTimeFunc overrides the clock, for tests.
func (f *ReminderFireJobFactory) WithTimeFunc(timeFunc func() time.Time) *ReminderFireJobFactory {
	f.timeFunc = timeFunc
	return f
}

// NewJob creates a fire job for the given reminder.
func (f *ReminderFireJobFactory) NewJob(reminderID uuid.UUID) (*ReminderFireJob, error) {
	if reminderID == uuid.Nil {
		return nil, errors.New("reminder ID cannot be nil")
	}
	payload := ReminderFirePayload{ReminderID: reminderID}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return f.build(payload, raw), nil
}

// FromPayload rebuilds a fire job from its persisted payload. It
// satisfies the runner's Factory signature.
func (f *ReminderFireJobFactory) FromPayload(raw []byte) (Job, error) {
	var payload ReminderFirePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal reminder payload: %w", err)
	}
	if payload.ReminderID == uuid.Nil {
		return nil, errors.New("reminder payload has nil reminder ID")
	}
	return f.build(payload, raw), nil
}

func (f *ReminderFireJobFactory) build(payload ReminderFirePayload, raw []byte) *ReminderFireJob {
	return &ReminderFireJob{
		id:        uuid.New(),
		payload:   payload,
		reminders: f.reminders,
		tasks:     f.tasks,
		notifier:  f.notifier,
		logger:    f.logger,
		timeFunc:  f.timeFunc,
		rawBytes:  raw,
	}
}

// ID returns the job's unique identifier.
func (j *ReminderFireJob) ID() uuid.UUID { return j.id }

// Type returns the job type identifier.
func (j *ReminderFireJob) Type() string { return TypeReminderFire }

// Payload returns the serialized job payload.
func (j *ReminderFireJob) Payload() []byte { return j.rawBytes }

// Execute fires the reminder. A reminder that was deleted, already
// triggered, swept by the expiry pass, or superseded by a newer
// schedule for the same task is simply skipped.
func (j *ReminderFireJob) Execute(ctx context.Context) error {
	logger := j.logger.With("reminder_id", j.payload.ReminderID)

	reminder, err := j.reminders.GetByID(ctx, j.payload.ReminderID)
	if err != nil {
		if store.IsNotFoundError(err) {
			logger.Info("reminder no longer exists, skipping")
			return nil
		}
		return fmt.Errorf("failed to load reminder: %w", err)
	}

	task, err := j.tasks.Get(ctx, reminder.TaskID)
	if err != nil {
		if store.IsNotFoundError(err) {
			logger.Warn("task for reminder no longer exists, skipping",
				"task_id", reminder.TaskID)
			return nil
		}
		return fmt.Errorf("failed to load task for reminder: %w", err)
	}

	latest, err := j.reminders.LatestPendingForTask(ctx, reminder.TaskID)
	if err != nil {
		if store.IsNotFoundError(err) {
			logger.Info("reminder already resolved, skipping")
			return nil
		}
		return fmt.Errorf("failed to check pending reminders: %w", err)
	}
	if latest.ID != reminder.ID {
		// A newer reminder replaced this one, usually because the task's
		// due date or lead time changed. The expiry sweep resolves the
		// stale row.
		logger.Info("reminder superseded by a newer schedule, skipping",
			"latest_reminder_id", latest.ID)
		return nil
	}

	fired, err := j.reminders.MarkTriggered(ctx, reminder.ID, j.timeFunc())
	if err != nil {
		return fmt.Errorf("failed to mark reminder triggered: %w", err)
	}
	if !fired {
		logger.Info("reminder already triggered, skipping")
		return nil
	}

	if err := j.notifier.Notify(ctx, task, reminder); err != nil {
		// The reminder is already consumed, so a delivery failure is
		// logged rather than retried.
		logger.Error("failed to deliver reminder notification", "error", err)
	}
	return nil
}
