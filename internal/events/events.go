package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// JobRequestEvent represents a request to run a background job. It
// carries the job type and an opaque JSON payload so emitters need no
// direct dependency on the job package.
type JobRequestEvent struct {
	// ID is a unique identifier for this event.
	ID uuid.UUID `json:"id"`

	// Type indicates the job type that should be created.
	Type string `json:"type"`

	// Payload contains the job-specific data serialized as JSON.
	Payload json.RawMessage `json:"payload"`

	// RunAt is when the job should execute. The zero value means "as
	// soon as possible".
	RunAt time.Time `json:"run_at,omitempty"`

	// CreatedAt is when the event was created.
	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *JobRequestEvent) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewJobRequestEvent creates a new JobRequestEvent with the given type
// and payload.
func NewJobRequestEvent(eventType string, payload interface{}) (*JobRequestEvent, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &JobRequestEvent{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   payloadBytes,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// NewDeferredJobRequestEvent creates a JobRequestEvent that should not
// execute before runAt.
func NewDeferredJobRequestEvent(
	eventType string,
	payload interface{},
	runAt time.Time,
) (*JobRequestEvent, error) {
	event, err := NewJobRequestEvent(eventType, payload)
	if err != nil {
		return nil, err
	}
	event.RunAt = runAt
	return event, nil
}

// EventHandler is implemented by components that process events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	HandleEvent(ctx context.Context, event *JobRequestEvent) error
}

// EventEmitter is implemented by components that publish events.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *JobRequestEvent) error
}
