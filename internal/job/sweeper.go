package job

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// ReminderExpirer covers the reminder store operation the sweeper
// needs.
type ReminderExpirer interface {
	ExpirePending(ctx context.Context, now time.Time) (int64, error)
}

// Sweeper periodically resolves reminders whose scheduled time has
// passed without the dispatcher firing them (for example reminders that
// came due while the server was down and whose jobs were lost). Swept
// reminders are marked triggered without a notification being sent.
type Sweeper struct {
	reminders ReminderExpirer
	interval  time.Duration
	logger    *slog.Logger
	cron      *cron.Cron
	timeFunc  func() time.Time
}

// NewSweeper creates a reminder expiry sweeper running at the given
// interval.
func NewSweeper(reminders ReminderExpirer, interval time.Duration, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		reminders: reminders,
		interval:  interval,
		logger:    logger.With("component", "reminder_sweeper"),
		cron:      cron.New(),
		timeFunc:  func() time.Time { return time.Now().UTC() },
	}
}

// Start runs one immediate sweep to catch up after downtime, then
// schedules the recurring sweep.
func (s *Sweeper) Start(ctx context.Context) error {
	s.RunOnce(ctx)

	spec := fmt.Sprintf("@every %s", s.interval)
	if _, err := s.cron.AddFunc(spec, func() {
		s.RunOnce(context.Background())
	}); err != nil {
		return fmt.Errorf("failed to schedule sweep: %w", err)
	}

	s.cron.Start()
	s.logger.Info("reminder sweeper started", "interval", s.interval)
	return nil
}

// Stop halts the recurring sweep, waiting for an in-flight run to
// finish.
func (s *Sweeper) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.logger.Info("reminder sweeper stopped")
}

// RunOnce performs a single expiry sweep.
func (s *Sweeper) RunOnce(ctx context.Context) {
	now := s.timeFunc()
	expired, err := s.reminders.ExpirePending(ctx, now)
	if err != nil {
		s.logger.Error("reminder expiry sweep failed", "error", err)
		return
	}
	if expired > 0 {
		s.logger.Info("expired overdue reminders", "count", expired)
	} else {
		s.logger.Debug("no overdue reminders to expire")
	}
}
