package job

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdalton/taskwell-api/internal/events"
)

func TestEventHandlerSubmitsJobForKnownType(t *testing.T) {
	store := NewMockStore()
	runner := fastRunner(store)
	runner.Start()
	defer runner.Stop()

	var executed atomic.Int32
	handler := NewEventHandler(runner, testLogger())
	handler.RegisterFactory("test_job", func(payload []byte) (Job, error) {
		j := newTestJob(func(ctx context.Context, attempt int32) error {
			executed.Add(1)
			return nil
		})
		j.payload = payload
		return j, nil
	})

	event, err := events.NewJobRequestEvent("test_job", map[string]string{"key": "value"})
	require.NoError(t, err)
	require.NoError(t, handler.HandleEvent(context.Background(), event))

	require.Eventually(t, func() bool {
		return executed.Load() == 1
	}, 2*time.Second, 5*time.Millisecond)
}

func TestEventHandlerHonorsDeferredRunTime(t *testing.T) {
	store := NewMockStore()
	runner := fastRunner(store)
	runner.Start()
	defer runner.Stop()

	var executed atomic.Int32
	handler := NewEventHandler(runner, testLogger())
	handler.RegisterFactory("test_job", func(payload []byte) (Job, error) {
		return newTestJob(func(ctx context.Context, attempt int32) error {
			executed.Add(1)
			return nil
		}), nil
	})

	runAt := time.Now().UTC().Add(60 * time.Millisecond)
	event, err := events.NewDeferredJobRequestEvent("test_job", map[string]string{}, runAt)
	require.NoError(t, err)
	require.NoError(t, handler.HandleEvent(context.Background(), event))

	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, executed.Load(), "deferred job must not run before its time")

	require.Eventually(t, func() bool {
		return executed.Load() == 1
	}, 2*time.Second, 5*time.Millisecond)
}

func TestEventHandlerIgnoresUnknownEventType(t *testing.T) {
	store := NewMockStore()
	runner := fastRunner(store)
	runner.Start()
	defer runner.Stop()

	handler := NewEventHandler(runner, testLogger())

	event, err := events.NewJobRequestEvent("unregistered", map[string]string{})
	require.NoError(t, err)

	require.NoError(t, handler.HandleEvent(context.Background(), event))

	pending, err := store.GetPendingJobs(context.Background())
	require.NoError(t, err)
	assert.Empty(t, pending, "no job should be persisted")
}
