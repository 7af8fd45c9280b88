// Package job implements the background job machinery: a persisted,
// in-process job runner with a worker pool, deferred execution, bounded
// retry, and startup recovery, plus the concrete jobs for recurring-task
// spawning and reminder dispatch.
package job

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Status represents the current state of a job.
type Status string

// Possible job status values
const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Job type constants
const (
	// TypeRecurrenceSpawn creates the next occurrence of a recurring
	// task after a completion.
	TypeRecurrenceSpawn = "recurrence_spawn"

	// TypeReminderFire fires a scheduled reminder at its trigger time.
	TypeReminderFire = "reminder_fire"
)

// ErrTerminal marks a job failure that retrying cannot fix (for example
// a task that no longer exists). The runner fails such jobs immediately
// instead of consuming retry attempts.
var ErrTerminal = errors.New("terminal job failure")

// Job represents a unit of background work to be processed.
type Job interface {
	// ID returns the job's unique identifier.
	ID() uuid.UUID

	// Type returns the job type identifier.
	Type() string

	// Payload returns the job data as a byte slice.
	Payload() []byte

	// Execute runs the job logic. Wrapping the returned error in
	// ErrTerminal suppresses retries.
	Execute(ctx context.Context) error
}

// Record is the persisted form of a job, used for recovery and operator
// visibility. A job whose retries exhausted stays in the store with
// status failed and its last error message; it is never silently
// dropped.
type Record struct {
	ID           uuid.UUID
	Type         string
	Payload      []byte
	Status       Status
	Attempts     int
	RunAt        time.Time
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Store defines the persistence interface for jobs.
type Store interface {
	// SaveJob persists a new pending job with its earliest run time.
	SaveJob(ctx context.Context, job Job, runAt time.Time) error

	// UpdateJobStatus updates a job's status, attempt count, and error
	// message.
	UpdateJobStatus(ctx context.Context, jobID uuid.UUID, status Status, attempts int, errorMsg string) error

	// GetPendingJobs retrieves all jobs with pending status, including
	// those whose run time is still in the future.
	GetPendingJobs(ctx context.Context) ([]*Record, error)

	// GetProcessingJobs retrieves jobs stuck in processing state. If
	// olderThan is non-zero, only jobs that have been processing longer
	// than that are returned.
	GetProcessingJobs(ctx context.Context, olderThan time.Duration) ([]*Record, error)
}

// Factory reconstructs an executable job from its persisted payload.
// Each job type registers one with the runner so recovery can requeue
// jobs that survived a restart.
type Factory func(payload []byte) (Job, error)

// recoveredJob wraps a factory-built job so it keeps the identity of the
// persisted record it was rebuilt from.
type recoveredJob struct {
	record *Record
	inner  Job
}

func (j *recoveredJob) ID() uuid.UUID   { return j.record.ID }
func (j *recoveredJob) Type() string    { return j.record.Type }
func (j *recoveredJob) Payload() []byte { return j.record.Payload }

func (j *recoveredJob) Execute(ctx context.Context) error {
	return j.inner.Execute(ctx)
}
