package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScheduledReminder(t *testing.T) {
	t.Parallel()

	taskID := uuid.New()
	at := time.Date(2024, 6, 1, 8, 30, 0, 0, time.FixedZone("CEST", 2*3600))

	reminder, err := NewScheduledReminder(taskID, at)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, reminder.ID)
	assert.Equal(t, taskID, reminder.TaskID)
	assert.Equal(t, at.UTC(), reminder.ScheduledTime)
	assert.True(t, reminder.Pending())
	assert.Nil(t, reminder.TriggeredAt)
}

func TestNewScheduledReminderRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	_, err := NewScheduledReminder(uuid.Nil, time.Now().UTC())
	assert.ErrorIs(t, err, ErrEmptyReminderTaskID)

	_, err = NewScheduledReminder(uuid.New(), time.Time{})
	assert.ErrorIs(t, err, ErrZeroScheduledTime)
}

func TestScheduledReminderPending(t *testing.T) {
	t.Parallel()

	reminder, err := NewScheduledReminder(uuid.New(), time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, reminder.Pending())

	reminder.Triggered = true
	assert.False(t, reminder.Pending())
}
