package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Default runner settings
const (
	DefaultWorkerCount   = 2
	DefaultQueueSize     = 100
	DefaultMaxRetries    = 3
	DefaultRetryDelay    = 60 * time.Second
	DefaultStuckJobAge   = 30 * time.Minute
	DefaultStuckJobCheck = 5 * time.Minute
)

// RunnerConfig holds configuration for the job runner.
type RunnerConfig struct {
	// WorkerCount is the number of concurrent workers processing jobs.
	WorkerCount int

	// QueueSize is the buffer size of the job queue.
	QueueSize int

	// MaxRetries is how many times a failed job is retried before it is
	// marked failed permanently. Terminal errors are never retried.
	MaxRetries int

	// RetryDelay is the fixed delay between retry attempts.
	RetryDelay time.Duration

	// StuckJobAge is how long a job may sit in processing state before
	// the monitor flags it.
	StuckJobAge time.Duration

	// StuckJobCheckInterval is how often the monitor scans for stuck
	// jobs. Zero disables the monitor.
	StuckJobCheckInterval time.Duration
}

// execution is a queued unit of work with its retry bookkeeping.
type execution struct {
	job     Job
	attempt int
}

// Runner manages job submission and execution. Jobs are persisted
// before they are queued, so a crash between submission and execution
// loses nothing: Recover requeues them on the next startup.
type Runner struct {
	store     Store
	config    RunnerConfig
	logger    *slog.Logger
	queue     chan execution
	factories map[string]Factory
	wg        sync.WaitGroup
	timerWG   sync.WaitGroup
	// queueMu serializes sends on queue against its close in Stop, so a
	// Submit racing a shutdown cannot send on a closed channel.
	queueMu sync.RWMutex
	ctx       context.Context
	cancelFn  context.CancelFunc
	startOnce sync.Once
	stopOnce  sync.Once
}

// NewRunner creates a job runner with the given store and config.
// Zero-valued config fields fall back to defaults.
func NewRunner(store Store, config RunnerConfig, logger *slog.Logger) *Runner {
	if config.WorkerCount <= 0 {
		config.WorkerCount = DefaultWorkerCount
	}
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultQueueSize
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = DefaultMaxRetries
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = DefaultRetryDelay
	}
	if config.StuckJobAge <= 0 {
		config.StuckJobAge = DefaultStuckJobAge
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		store:     store,
		config:    config,
		logger:    logger.With("component", "job_runner"),
		queue:     make(chan execution, config.QueueSize),
		factories: make(map[string]Factory),
		ctx:       ctx,
		cancelFn:  cancel,
	}
}

// RegisterFactory registers the factory used to rebuild jobs of the
// given type during startup recovery.
func (r *Runner) RegisterFactory(jobType string, factory Factory) {
	r.factories[jobType] = factory
}

// Start launches the worker pool and, if configured, the stuck-job
// monitor. It is safe to call once; subsequent calls are no-ops.
func (r *Runner) Start() {
	r.startOnce.Do(func() {
		r.logger.Info("starting job runner",
			"worker_count", r.config.WorkerCount,
			"queue_size", r.config.QueueSize,
			"max_retries", r.config.MaxRetries)

		for i := 0; i < r.config.WorkerCount; i++ {
			r.wg.Add(1)
			go r.worker(i)
		}

		if r.config.StuckJobCheckInterval > 0 {
			r.wg.Add(1)
			go r.monitorStuckJobs()
		}
	})
}

// Stop gracefully shuts down the runner, waiting for in-flight jobs to
// finish. Jobs parked on timers are abandoned; they remain pending in
// the store and are requeued by Recover on the next startup.
func (r *Runner) Stop() {
	r.stopOnce.Do(func() {
		r.logger.Info("stopping job runner")
		r.cancelFn()
		r.timerWG.Wait()
		r.queueMu.Lock()
		close(r.queue)
		r.queueMu.Unlock()
		r.wg.Wait()
		r.logger.Info("job runner stopped")
	})
}

// Submit persists a job and queues it for immediate execution.
func (r *Runner) Submit(ctx context.Context, job Job) error {
	return r.SubmitAt(ctx, job, time.Now().UTC())
}

// SubmitAt persists a job and schedules it to run no earlier than
// runAt. A runAt in the past queues the job immediately.
func (r *Runner) SubmitAt(ctx context.Context, job Job, runAt time.Time) error {
	if err := r.store.SaveJob(ctx, job, runAt); err != nil {
		return fmt.Errorf("failed to save job: %w", err)
	}

	r.logger.Debug("job saved",
		"job_id", job.ID(),
		"job_type", job.Type(),
		"run_at", runAt)

	r.dispatch(job, runAt, 0)
	return nil
}

// dispatch queues a job now or parks it on a timer until runAt.
func (r *Runner) dispatch(job Job, runAt time.Time, attempt int) {
	delay := time.Until(runAt)
	if delay <= 0 {
		r.enqueue(execution{job: job, attempt: attempt})
		return
	}

	r.timerWG.Add(1)
	go func() {
		defer r.timerWG.Done()
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-timer.C:
			r.enqueue(execution{job: job, attempt: attempt})
		case <-r.ctx.Done():
			r.logger.Debug("abandoning deferred job on shutdown",
				"job_id", job.ID(),
				"job_type", job.Type())
		}
	}()
}

// enqueue adds an execution to the queue, marking the job failed if the
// queue is full rather than blocking the caller.
func (r *Runner) enqueue(exec execution) {
	r.queueMu.RLock()
	defer r.queueMu.RUnlock()
	if r.ctx.Err() != nil {
		r.logger.Debug("runner stopped, leaving job pending in store",
			"job_id", exec.job.ID())
		return
	}
	select {
	case r.queue <- exec:
	default:
		r.logger.Error("job queue is full, dropping job",
			"job_id", exec.job.ID(),
			"job_type", exec.job.Type())
		r.updateStatus(exec.job.ID(), StatusFailed, exec.attempt, "job queue full")
	}
}

// Recover requeues jobs that did not finish before the last shutdown.
// Pending jobs are rebuilt through their registered factories and
// dispatched honoring their original run time. Jobs stuck in processing
// state are reset to pending and requeued as well.
func (r *Runner) Recover(ctx context.Context) error {
	pending, err := r.store.GetPendingJobs(ctx)
	if err != nil {
		return fmt.Errorf("failed to load pending jobs: %w", err)
	}

	stuck, err := r.store.GetProcessingJobs(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to load processing jobs: %w", err)
	}
	for _, rec := range stuck {
		r.updateStatus(rec.ID, StatusPending, rec.Attempts, "")
	}

	records := append(pending, stuck...)
	recovered := 0
	for _, rec := range records {
		factory, ok := r.factories[rec.Type]
		if !ok {
			r.logger.Warn("no factory registered for job type, leaving job in store",
				"job_id", rec.ID,
				"job_type", rec.Type)
			continue
		}

		inner, err := factory(rec.Payload)
		if err != nil {
			r.logger.Error("failed to rebuild job from payload",
				"job_id", rec.ID,
				"job_type", rec.Type,
				"error", err)
			r.updateStatus(rec.ID, StatusFailed, rec.Attempts, fmt.Sprintf("recovery failed: %v", err))
			continue
		}

		r.dispatch(&recoveredJob{record: rec, inner: inner}, rec.RunAt, 0)
		recovered++
	}

	r.logger.Info("job recovery complete",
		"pending", len(pending),
		"stuck", len(stuck),
		"recovered", recovered)
	return nil
}

// worker processes jobs from the queue until it is closed.
func (r *Runner) worker(id int) {
	defer r.wg.Done()
	logger := r.logger.With("worker_id", id)
	logger.Debug("worker started")

	for exec := range r.queue {
		r.process(logger, exec)
	}

	logger.Debug("worker stopped")
}

// process executes a single job, applying the retry policy on failure.
func (r *Runner) process(logger *slog.Logger, exec execution) {
	jobID := exec.job.ID()
	logger = logger.With("job_id", jobID, "job_type", exec.job.Type(), "attempt", exec.attempt+1)

	r.updateStatus(jobID, StatusProcessing, exec.attempt, "")
	logger.Info("processing job")

	err := exec.job.Execute(r.ctx)
	if err == nil {
		r.updateStatus(jobID, StatusCompleted, exec.attempt, "")
		logger.Info("job completed")
		return
	}

	if errors.Is(err, ErrTerminal) {
		r.updateStatus(jobID, StatusFailed, exec.attempt, err.Error())
		logger.Warn("job failed terminally, not retrying", "error", err)
		return
	}

	nextAttempt := exec.attempt + 1
	if nextAttempt > r.config.MaxRetries {
		r.updateStatus(jobID, StatusFailed, exec.attempt, err.Error())
		logger.Error("job failed permanently, retries exhausted", "error", err)
		return
	}

	r.updateStatus(jobID, StatusPending, nextAttempt, err.Error())
	logger.Warn("job failed, scheduling retry",
		"error", err,
		"retry_delay", r.config.RetryDelay)
	r.dispatch(exec.job, time.Now().Add(r.config.RetryDelay), nextAttempt)
}

// monitorStuckJobs periodically logs jobs sitting in processing state
// longer than the configured age.
func (r *Runner) monitorStuckJobs() {
	defer r.wg.Done()
	ticker := time.NewTicker(r.config.StuckJobCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			stuck, err := r.store.GetProcessingJobs(r.ctx, r.config.StuckJobAge)
			if err != nil {
				r.logger.Error("failed to check for stuck jobs", "error", err)
				continue
			}
			for _, rec := range stuck {
				r.logger.Warn("job appears stuck in processing state",
					"job_id", rec.ID,
					"job_type", rec.Type,
					"updated_at", rec.UpdatedAt)
			}
		}
	}
}

// updateStatus persists a status change, logging failures rather than
// propagating them so status bookkeeping never interrupts execution.
func (r *Runner) updateStatus(jobID uuid.UUID, status Status, attempts int, errorMsg string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.store.UpdateJobStatus(ctx, jobID, status, attempts, errorMsg); err != nil {
		r.logger.Error("failed to update job status",
			"job_id", jobID,
			"status", status,
			"error", err)
	}
}
