package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingHandler captures the events it receives and optionally fails.
type recordingHandler struct {
	events []*JobRequestEvent
	err    error
}

func (h *recordingHandler) HandleEvent(ctx context.Context, event *JobRequestEvent) error {
	h.events = append(h.events, event)
	return h.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestInMemoryEventEmitter(t *testing.T) {
	t.Parallel()

	t.Run("emit with no handlers is a no-op", func(t *testing.T) {
		t.Parallel()

		emitter := NewInMemoryEventEmitter(testLogger())
		event, err := NewJobRequestEvent("reminder_fire", map[string]string{"k": "v"})
		require.NoError(t, err)

		assert.NoError(t, emitter.EmitEvent(context.Background(), event))
	})

	t.Run("all handlers receive the event", func(t *testing.T) {
		t.Parallel()

		emitter := NewInMemoryEventEmitter(testLogger())
		first := &recordingHandler{}
		second := &recordingHandler{}
		emitter.RegisterHandler(first)
		emitter.RegisterHandler(second)

		event, err := NewJobRequestEvent("recurrence_spawn", nil)
		require.NoError(t, err)

		require.NoError(t, emitter.EmitEvent(context.Background(), event))
		assert.Len(t, first.events, 1)
		assert.Len(t, second.events, 1)
	})

	t.Run("a failing handler does not block the rest", func(t *testing.T) {
		t.Parallel()

		emitter := NewInMemoryEventEmitter(testLogger())
		failing := &recordingHandler{err: errors.New("handler broke")}
		healthy := &recordingHandler{}
		emitter.RegisterHandler(failing)
		emitter.RegisterHandler(healthy)

		event, err := NewJobRequestEvent("recurrence_spawn", nil)
		require.NoError(t, err)

		err = emitter.EmitEvent(context.Background(), event)
		assert.EqualError(t, err, "handler broke")
		assert.Len(t, healthy.events, 1, "later handlers still run")
	})
}

func TestJobRequestEventPayload(t *testing.T) {
	t.Parallel()

	type payload struct {
		TaskID string `json:"task_id"`
	}

	event, err := NewJobRequestEvent("reminder_fire", payload{TaskID: "abc"})
	require.NoError(t, err)

	var decoded payload
	require.NoError(t, event.UnmarshalPayload(&decoded))
	assert.Equal(t, "abc", decoded.TaskID)
}

func TestNewDeferredJobRequestEvent(t *testing.T) {
	t.Parallel()

	runAt := time.Now().UTC().Add(time.Hour)
	event, err := NewDeferredJobRequestEvent("reminder_fire", nil, runAt)
	require.NoError(t, err)
	assert.Equal(t, runAt, event.RunAt)
}
