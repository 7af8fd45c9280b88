package job

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jdalton/taskwell-api/internal/events"
)

// EventHandler turns job request events into persisted, queued jobs.
// Services emit events instead of talking to the runner directly, so
// they stay decoupled from job construction.
type EventHandler struct {
	runner    *Runner
	factories map[string]Factory
	logger    *slog.Logger
}

// NewEventHandler creates a handler that submits jobs to the given
// runner.
func NewEventHandler(runner *Runner, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		runner:    runner,
		factories: make(map[string]Factory),
		logger:    logger.With("component", "job_event_handler"),
	}
}

// RegisterFactory maps an event type to the factory that builds its
// job. The same factory is registered with the runner for recovery.
func (h *EventHandler) RegisterFactory(eventType string, factory Factory) {
	h.factories[eventType] = factory
	h.runner.RegisterFactory(eventType, factory)
}

// HandleEvent builds the job for the event and submits it, honoring the
// event's run time when one is set.
func (h *EventHandler) HandleEvent(ctx context.Context, event *events.JobRequestEvent) error {
	factory, ok := h.factories[event.Type]
	if !ok {
		h.logger.Warn("no factory registered for event type, ignoring event",
			"event_id", event.ID,
			"event_type", event.Type)
		return nil
	}

	builtJob, err := factory(event.Payload)
	if err != nil {
		return fmt.Errorf("failed to build job for event %s: %w", event.Type, err)
	}

	if event.RunAt.IsZero() {
		err = h.runner.Submit(ctx, builtJob)
	} else {
		err = h.runner.SubmitAt(ctx, builtJob, event.RunAt)
	}
	if err != nil {
		return fmt.Errorf("failed to submit job for event %s: %w", event.Type, err)
	}

	h.logger.Debug("job submitted for event",
		"event_id", event.ID,
		"event_type", event.Type,
		"job_id", builtJob.ID())
	return nil
}
