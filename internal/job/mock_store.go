package job

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockStore is an in-memory Store implementation for tests.
type MockStore struct {
	mu      sync.Mutex
	records map[uuid.UUID]*Record

	// Error hooks let tests force failures.
	SaveErr   error
	UpdateErr error
	ListErr   error
}

// NewMockStore creates an empty in-memory job store.
func NewMockStore() *MockStore {
	return &MockStore{records: make(map[uuid.UUID]*Record)}
}

// SaveJob stores the job as a pending record.
func (s *MockStore) SaveJob(_ context.Context, job Job, runAt time.Time) error {
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	s.records[job.ID()] = &Record{
		ID:        job.ID(),
		Type:      job.Type(),
		Payload:   job.Payload(),
		Status:    StatusPending,
		RunAt:     runAt,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return nil
}

// UpdateJobStatus updates the stored record in place.
func (s *MockStore) UpdateJobStatus(_ context.Context, jobID uuid.UUID, status Status, attempts int, errorMsg string) error {
	if s.UpdateErr != nil {
		return s.UpdateErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[jobID]
	if !ok {
		return nil
	}
	rec.Status = status
	rec.Attempts = attempts
	rec.ErrorMessage = errorMsg
	rec.UpdatedAt = time.Now().UTC()
	return nil
}

// GetPendingJobs returns all records with pending status.
func (s *MockStore) GetPendingJobs(_ context.Context) ([]*Record, error) {
	return s.byStatus(StatusPending, 0)
}

// GetProcessingJobs returns records stuck in processing state.
func (s *MockStore) GetProcessingJobs(_ context.Context, olderThan time.Duration) ([]*Record, error) {
	return s.byStatus(StatusProcessing, olderThan)
}

func (s *MockStore) byStatus(status Status, olderThan time.Duration) ([]*Record, error) {
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := time.Now().UTC().Add(-olderThan)
	var out []*Record
	for _, rec := range s.records {
		if rec.Status != status {
			continue
		}
		if olderThan > 0 && rec.UpdatedAt.After(cutoff) {
			continue
		}
		copied := *rec
		out = append(out, &copied)
	}
	return out, nil
}

// Record returns a copy of the stored record for the given job, if any.
func (s *MockStore) Record(jobID uuid.UUID) (*Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[jobID]
	if !ok {
		return nil, false
	}
	copied := *rec
	return &copied, true
}
