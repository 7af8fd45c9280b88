package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jdalton/taskwell-api/internal/job"
	"github.com/jdalton/taskwell-api/internal/platform/logger"
	"github.com/jdalton/taskwell-api/internal/store"
)

// JobStore implements job.Store using PostgreSQL. Persisted job rows
// double as an audit trail: completed and failed jobs stay queryable
// with their attempt counts and last error message.
type JobStore struct {
	db store.DBTX
}

// Ensure JobStore implements job.Store
var _ job.Store = (*JobStore)(nil)

// NewJobStore creates a PostgreSQL job store.
func NewJobStore(db store.DBTX) *JobStore {
	return &JobStore{db: db}
}

// SaveJob persists a new pending job.
func (s *JobStore) SaveJob(ctx context.Context, j job.Job, runAt time.Time) error {
	log := logger.FromContext(ctx)

	query := `
		INSERT INTO jobs (id, type, payload, status, attempts, run_at, error_message, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 0, $5, '', $6, $6)
	`
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, query,
		j.ID(),
		j.Type(),
		j.Payload(),
		job.StatusPending,
		runAt.UTC(),
		now,
	)
	if err != nil {
		log.Error("failed to save job",
			"job_id", j.ID(),
			"job_type", j.Type(),
			"error", err)
		return fmt.Errorf("failed to save job: %w", mapError(err))
	}
	return nil
}

// UpdateJobStatus updates a job's status, attempt count, and error
// message. A missing job is a no-op; the row may have been pruned.
func (s *JobStore) UpdateJobStatus(ctx context.Context, jobID uuid.UUID, status job.Status, attempts int, errorMsg string) error {
	log := logger.FromContext(ctx)

	query := `
		UPDATE jobs
		SET status = $1, attempts = $2, error_message = $3, updated_at = $4
		WHERE id = $5
	`
	result, err := s.db.ExecContext(ctx, query,
		status,
		attempts,
		errorMsg,
		time.Now().UTC(),
		jobID,
	)
	if err != nil {
		log.Error("failed to update job status",
			"job_id", jobID,
			"status", status,
			"error", err)
		return fmt.Errorf("failed to update job status: %w", mapError(err))
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		log.Warn("no job found to update", "job_id", jobID)
	}
	return nil
}

// GetPendingJobs retrieves all pending jobs, oldest first.
func (s *JobStore) GetPendingJobs(ctx context.Context) ([]*job.Record, error) {
	return s.getJobsByStatus(ctx, job.StatusPending, 0)
}

// GetProcessingJobs retrieves jobs in processing state, optionally only
// those untouched for longer than olderThan.
func (s *JobStore) GetProcessingJobs(ctx context.Context, olderThan time.Duration) ([]*job.Record, error) {
	return s.getJobsByStatus(ctx, job.StatusProcessing, olderThan)
}

func (s *JobStore) getJobsByStatus(ctx context.Context, status job.Status, olderThan time.Duration) ([]*job.Record, error) {
	query := `
		SELECT id, type, payload, status, attempts, run_at, error_message, created_at, updated_at
		FROM jobs
		WHERE status = $1
	`
	args := []interface{}{status}
	if olderThan > 0 {
		query += ` AND updated_at < $2`
		args = append(args, time.Now().UTC().Add(-olderThan))
	}
	query += ` ORDER BY created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query jobs: %w", mapError(err))
	}
	defer func() { _ = rows.Close() }()

	var records []*job.Record
	for rows.Next() {
		var rec job.Record
		err := rows.Scan(
			&rec.ID,
			&rec.Type,
			&rec.Payload,
			&rec.Status,
			&rec.Attempts,
			&rec.RunAt,
			&rec.ErrorMessage,
			&rec.CreatedAt,
			&rec.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate jobs: %w", err)
	}
	return records, nil
}
