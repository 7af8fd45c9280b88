package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jdalton/taskwell-api/internal/domain"
	"github.com/jdalton/taskwell-api/internal/store"
)

// OccurrenceCreator creates the next occurrence of a recurring task.
// Implemented by the recurrence service.
type OccurrenceCreator interface {
	CreateNextOccurrence(ctx context.Context, parentTaskID uuid.UUID) (*domain.Task, error)
}

// RecurrenceSpawnPayload is the persisted payload for recurrence jobs.
type RecurrenceSpawnPayload struct {
	ParentTaskID uuid.UUID `json:"parent_task_id"`
}

// RecurrenceJob spawns the next occurrence of a recurring task after
// its current instance was completed.
type RecurrenceJob struct {
	id       uuid.UUID
	payload  RecurrenceSpawnPayload
	creator  OccurrenceCreator
	logger   *slog.Logger
	rawBytes []byte
}

// RecurrenceJobFactory builds RecurrenceJobs, both fresh ones from
// completion events and rebuilt ones from persisted payloads.
type RecurrenceJobFactory struct {
	creator OccurrenceCreator
	logger  *slog.Logger
}

// NewRecurrenceJobFactory creates a factory for recurrence jobs.
func NewRecurrenceJobFactory(creator OccurrenceCreator, logger *slog.Logger) *RecurrenceJobFactory {
	return &RecurrenceJobFactory{
		creator: creator,
		logger:  logger.With("component", "recurrence_job"),
	}
}

// NewJob creates a recurrence job for the given parent task.
func (f *RecurrenceJobFactory) NewJob(parentTaskID uuid.UUID) (*RecurrenceJob, error) {
	if parentTaskID == uuid.Nil {
		return nil, errors.New("parent task ID cannot be nil")
	}
	payload := RecurrenceSpawnPayload{ParentTaskID: parentTaskID}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return &RecurrenceJob{
		id:       uuid.New(),
		payload:  payload,
		creator:  f.creator,
		logger:   f.logger,
		rawBytes: raw,
	}, nil
}

// FromPayload rebuilds a recurrence job from its persisted payload.
// It satisfies the runner's Factory signature.
func (f *RecurrenceJobFactory) FromPayload(raw []byte) (Job, error) {
	var payload RecurrenceSpawnPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recurrence payload: %w", err)
	}
	if payload.ParentTaskID == uuid.Nil {
		return nil, errors.New("recurrence payload has nil parent task ID")
	}
	return &RecurrenceJob{
		id:       uuid.New(),
		payload:  payload,
		creator:  f.creator,
		logger:   f.logger,
		rawBytes: raw,
	}, nil
}

// ID returns the job's unique identifier.
func (j *RecurrenceJob) ID() uuid.UUID { return j.id }

// Type returns the job type identifier.
func (j *RecurrenceJob) Type() string { return TypeRecurrenceSpawn }

// Payload returns the serialized job payload.
func (j *RecurrenceJob) Payload() []byte { return j.rawBytes }

// Execute creates the next occurrence of the parent task. A parent that
// no longer exists is a terminal failure; deleting a task legitimately
// cancels its recurrence.
func (j *RecurrenceJob) Execute(ctx context.Context) error {
	logger := j.logger.With("parent_task_id", j.payload.ParentTaskID)

	successor, err := j.creator.CreateNextOccurrence(ctx, j.payload.ParentTaskID)
	if err != nil {
		if store.IsNotFoundError(err) {
			logger.Warn("parent task no longer exists, skipping occurrence")
			return fmt.Errorf("%w: parent task %s not found", ErrTerminal, j.payload.ParentTaskID)
		}
		return fmt.Errorf("failed to create next occurrence: %w", err)
	}
	if successor == nil {
		logger.Info("parent task is no longer recurring, nothing to spawn")
		return nil
	}

	logger.Info("spawned next occurrence",
		"successor_task_id", successor.ID,
		"due_date", successor.DueDate)
	return nil
}
