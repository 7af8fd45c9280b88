package job

import (
	"context"
	"log/slog"

	"github.com/jdalton/taskwell-api/internal/domain"
)

// Notifier delivers a reminder notification to the user. Delivery
// transports (email, push) plug in behind this interface.
type Notifier interface {
	Notify(ctx context.Context, task *domain.Task, reminder *domain.ScheduledReminder) error
}

// LogNotifier is the default notifier. It records the reminder in the
// structured log, which is where deliveries surface until a real
// transport is configured.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a notifier that writes reminders to the log.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With("component", "notifier")}
}

// Notify logs the fired reminder.
func (n *LogNotifier) Notify(_ context.Context, task *domain.Task, reminder *domain.ScheduledReminder) error {
	n.logger.Info("reminder fired",
		"reminder_id", reminder.ID,
		"task_id", task.ID,
		"task_title", task.Title,
		"due_date", task.DueDate,
		"scheduled_time", reminder.ScheduledTime)
	return nil
}
