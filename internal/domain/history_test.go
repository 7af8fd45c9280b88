package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRecurringTaskHistory(t *testing.T) {
	t.Parallel()

	parentID := uuid.New()
	instanceID := uuid.New()
	scheduled := time.Date(2024, 6, 2, 9, 0, 0, 0, time.UTC)

	record, err := NewRecurringTaskHistory(parentID, instanceID, 1, scheduled)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, record.ID)
	assert.Equal(t, parentID, record.ParentTaskID)
	assert.Equal(t, instanceID, record.InstanceTaskID)
	assert.Equal(t, 1, record.OccurrenceNumber)
	assert.Equal(t, scheduled, record.ScheduledDate)
}

func TestNewRecurringTaskHistoryRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	parentID := uuid.New()
	instanceID := uuid.New()
	scheduled := time.Now().UTC()

	tests := []struct {
		name     string
		parent   uuid.UUID
		instance uuid.UUID
		number   int
		date     time.Time
		wantErr  error
	}{
		{"nil parent", uuid.Nil, instanceID, 1, scheduled, ErrEmptyParentTaskID},
		{"nil instance", parentID, uuid.Nil, 1, scheduled, ErrEmptyInstanceTaskID},
		{"self reference", parentID, parentID, 1, scheduled, ErrSelfReferencingHistory},
		{"zero occurrence number", parentID, instanceID, 0, scheduled, ErrInvalidOccurrenceNum},
		{"negative occurrence number", parentID, instanceID, -3, scheduled, ErrInvalidOccurrenceNum},
		{"zero scheduled date", parentID, instanceID, 1, time.Time{}, ErrZeroScheduledDate},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewRecurringTaskHistory(tc.parent, tc.instance, tc.number, tc.date)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}
