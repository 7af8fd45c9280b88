package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTask(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	task, err := NewTask(userID, "Water the plants")
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, task.ID)
	assert.Equal(t, userID, task.UserID)
	assert.Equal(t, PriorityMedium, task.Priority)
	assert.Equal(t, RecurrenceNone, task.RecurrencePattern)
	assert.False(t, task.Completed)
	assert.Nil(t, task.DueDate)
	assert.Nil(t, task.LastOccurrenceID)
}

func TestTaskValidate(t *testing.T) {
	t.Parallel()

	valid := func() *Task {
		task, err := NewTask(uuid.New(), "valid task")
		require.NoError(t, err)
		return task
	}

	tests := []struct {
		name    string
		mutate  func(*Task)
		wantErr error
	}{
		{
			name:    "empty ID",
			mutate:  func(task *Task) { task.ID = uuid.Nil },
			wantErr: ErrEmptyTaskID,
		},
		{
			name:    "empty user ID",
			mutate:  func(task *Task) { task.UserID = uuid.Nil },
			wantErr: ErrEmptyTaskUserID,
		},
		{
			name:    "empty title",
			mutate:  func(task *Task) { task.Title = "" },
			wantErr: ErrEmptyTaskTitle,
		},
		{
			name: "title too long",
			mutate: func(task *Task) {
				title := make([]byte, 256)
				for i := range title {
					title[i] = 'a'
				}
				task.Title = string(title)
			},
			wantErr: ErrTaskTitleTooLong,
		},
		{
			name:    "invalid priority",
			mutate:  func(task *Task) { task.Priority = Priority("urgent") },
			wantErr: ErrInvalidPriority,
		},
		{
			name:    "invalid recurrence pattern",
			mutate:  func(task *Task) { task.RecurrencePattern = RecurrencePattern("hourly") },
			wantErr: ErrInvalidRecurrence,
		},
		{
			name: "reminder lead below one minute",
			mutate: func(task *Task) {
				lead := 0
				task.ReminderLeadMinutes = &lead
			},
			wantErr: ErrInvalidReminderLead,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			task := valid()
			tt.mutate(task)
			assert.ErrorIs(t, task.Validate(), tt.wantErr)
		})
	}
}

func TestTaskIsRecurring(t *testing.T) {
	t.Parallel()

	task, err := NewTask(uuid.New(), "check recurrence")
	require.NoError(t, err)
	assert.False(t, task.IsRecurring())

	task.RecurrencePattern = RecurrenceWeekly
	assert.True(t, task.IsRecurring())
}

func TestTaskReminderTime(t *testing.T) {
	t.Parallel()

	task, err := NewTask(uuid.New(), "with reminder")
	require.NoError(t, err)

	_, ok := task.ReminderTime()
	assert.False(t, ok, "no due date means no reminder time")

	due := time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)
	task.DueDate = &due
	_, ok = task.ReminderTime()
	assert.False(t, ok, "no lead time means no reminder time")

	lead := 30
	task.ReminderLeadMinutes = &lead
	at, ok := task.ReminderTime()
	require.True(t, ok)
	assert.Equal(t, due.Add(-30*time.Minute), at)
}

func TestTaskDueStatusAt(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

	task, err := NewTask(uuid.New(), "status checks")
	require.NoError(t, err)

	assert.Equal(t, DueStatusNoDueDate, task.DueStatusAt(now))

	past := now.AddDate(0, 0, -2)
	task.DueDate = &past
	assert.Equal(t, DueStatusOverdue, task.DueStatusAt(now))

	today := now.Add(-3 * time.Hour)
	task.DueDate = &today
	assert.Equal(t, DueStatusDueToday, task.DueStatusAt(now))

	future := now.AddDate(0, 0, 3)
	task.DueDate = &future
	assert.Equal(t, DueStatusUpcoming, task.DueStatusAt(now))

	task.Completed = true
	assert.Equal(t, DueStatusCompleted, task.DueStatusAt(now))
}

func TestTaskNextOccurrence(t *testing.T) {
	t.Parallel()

	due := time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)
	lead := 15

	parent, err := NewTask(uuid.New(), "recurring chore")
	require.NoError(t, err)
	parent.Description = "take out the bins"
	parent.Priority = PriorityHigh
	parent.RecurrencePattern = RecurrenceDaily
	parent.DueDate = &due
	parent.ReminderLeadMinutes = &lead
	parent.Completed = true

	nextDue := due.AddDate(0, 0, 1)
	successor := parent.NextOccurrence(nextDue)

	require.NoError(t, successor.Validate())
	assert.NotEqual(t, parent.ID, successor.ID)
	assert.Equal(t, parent.UserID, successor.UserID)
	assert.Equal(t, parent.Title, successor.Title)
	assert.Equal(t, parent.Description, successor.Description)
	assert.Equal(t, parent.Priority, successor.Priority)
	assert.Equal(t, parent.RecurrencePattern, successor.RecurrencePattern)
	assert.Equal(t, parent.ReminderLeadMinutes, successor.ReminderLeadMinutes)
	assert.False(t, successor.Completed)
	require.NotNil(t, successor.DueDate)
	assert.Equal(t, nextDue, *successor.DueDate)
	require.NotNil(t, successor.LastOccurrenceID)
	assert.Equal(t, parent.ID, *successor.LastOccurrenceID)
}
