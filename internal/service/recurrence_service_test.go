package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdalton/taskwell-api/internal/domain"
	"github.com/jdalton/taskwell-api/internal/store"
)

func newRecurrenceFixture(tasks *mockTaskStore, history *mockHistoryStore) *RecurrenceService {
	svc := &RecurrenceService{
		tasks:    tasks,
		history:  history,
		logger:   testLogger(),
		timeFunc: func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) },
		runTx:    passthroughTx,
	}
	return svc
}

func seedRecurringTask(t *testing.T, tasks *mockTaskStore, pattern domain.RecurrencePattern, due *time.Time) *domain.Task {
	t.Helper()
	task, err := domain.NewTask(uuid.New(), "Water the plants")
	require.NoError(t, err)
	task.RecurrencePattern = pattern
	task.DueDate = due
	task.Completed = true
	require.NoError(t, tasks.Create(context.Background(), task))
	return task
}

func TestCreateNextOccurrenceDaily(t *testing.T) {
	tasks := newMockTaskStore()
	history := newMockHistoryStore()
	svc := newRecurrenceFixture(tasks, history)

	due := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	parent := seedRecurringTask(t, tasks, domain.RecurrenceDaily, &due)

	successor, err := svc.CreateNextOccurrence(context.Background(), parent.ID)
	require.NoError(t, err)
	require.NotNil(t, successor)

	require.NotNil(t, successor.DueDate)
	assert.Equal(t, time.Date(2024, 6, 2, 9, 0, 0, 0, time.UTC), *successor.DueDate)
	assert.False(t, successor.Completed)
	assert.Equal(t, parent.UserID, successor.UserID)
	assert.Equal(t, parent.Title, successor.Title)
	require.NotNil(t, successor.LastOccurrenceID)
	assert.Equal(t, parent.ID, *successor.LastOccurrenceID)

	stored, err := tasks.Get(context.Background(), successor.ID)
	require.NoError(t, err)
	assert.Equal(t, successor.ID, stored.ID)

	records, err := history.ListByParent(context.Background(), parent.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 1, records[0].OccurrenceNumber)
	assert.Equal(t, successor.ID, records[0].InstanceTaskID)
	assert.Equal(t, *successor.DueDate, records[0].ScheduledDate)
}

func TestCreateNextOccurrenceNumbersAdvance(t *testing.T) {
	tasks := newMockTaskStore()
	history := newMockHistoryStore()
	svc := newRecurrenceFixture(tasks, history)

	due := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	parent := seedRecurringTask(t, tasks, domain.RecurrenceWeekly, &due)

	first, err := svc.CreateNextOccurrence(context.Background(), parent.ID)
	require.NoError(t, err)
	second, err := svc.CreateNextOccurrence(context.Background(), parent.ID)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)

	records, err := history.ListByParent(context.Background(), parent.ID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 1, records[0].OccurrenceNumber)
	assert.Equal(t, 2, records[1].OccurrenceNumber)
}

func TestCreateNextOccurrenceWithoutDueDateRestartsFromNow(t *testing.T) {
	tasks := newMockTaskStore()
	history := newMockHistoryStore()
	svc := newRecurrenceFixture(tasks, history)

	parent := seedRecurringTask(t, tasks, domain.RecurrenceDaily, nil)

	successor, err := svc.CreateNextOccurrence(context.Background(), parent.ID)
	require.NoError(t, err)
	require.NotNil(t, successor.DueDate)
	assert.Equal(t, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC), *successor.DueDate)
}

func TestCreateNextOccurrenceMonthlyClampsDay(t *testing.T) {
	tasks := newMockTaskStore()
	history := newMockHistoryStore()
	svc := newRecurrenceFixture(tasks, history)

	due := time.Date(2024, 1, 31, 8, 0, 0, 0, time.UTC)
	parent := seedRecurringTask(t, tasks, domain.RecurrenceMonthly, &due)

	successor, err := svc.CreateNextOccurrence(context.Background(), parent.ID)
	require.NoError(t, err)
	require.NotNil(t, successor.DueDate)
	assert.Equal(t, time.Date(2024, 2, 29, 8, 0, 0, 0, time.UTC), *successor.DueDate)
}

func TestCreateNextOccurrenceNonRecurringIsNoOp(t *testing.T) {
	tasks := newMockTaskStore()
	history := newMockHistoryStore()
	svc := newRecurrenceFixture(tasks, history)

	parent := seedRecurringTask(t, tasks, domain.RecurrenceNone, nil)

	successor, err := svc.CreateNextOccurrence(context.Background(), parent.ID)
	require.NoError(t, err)
	assert.Nil(t, successor)

	records, err := history.ListByParent(context.Background(), parent.ID)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestCreateNextOccurrenceConcurrentSpawnsNeverShareNumbers(t *testing.T) {
	tasks := newMockTaskStore()
	history := newMockHistoryStore()
	svc := newRecurrenceFixture(tasks, history)

	due := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	parent := seedRecurringTask(t, tasks, domain.RecurrenceDaily, &due)

	const spawns = 8
	var wg sync.WaitGroup
	errs := make([]error, spawns)
	for i := 0; i < spawns; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.CreateNextOccurrence(context.Background(), parent.ID)
		}(i)
	}
	wg.Wait()

	// The losers of a number race fail on the unique constraint; nothing
	// else may go wrong.
	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, store.ErrDuplicateOccurrence)
	}
	require.GreaterOrEqual(t, succeeded, 1)

	records, err := history.ListByParent(context.Background(), parent.ID)
	require.NoError(t, err)
	require.Len(t, records, succeeded)

	seen := make(map[int]bool, len(records))
	for _, rec := range records {
		assert.False(t, seen[rec.OccurrenceNumber],
			"occurrence number %d assigned twice", rec.OccurrenceNumber)
		seen[rec.OccurrenceNumber] = true
	}
}

func TestNextOccurrenceNumberReadsWithoutConsuming(t *testing.T) {
	history := newMockHistoryStore()
	parentID := uuid.New()

	first, err := history.NextOccurrenceNumber(context.Background(), parentID)
	require.NoError(t, err)
	assert.Equal(t, 1, first)

	// Reading the next number must not advance it; only inserting a
	// history record does.
	again, err := history.NextOccurrenceNumber(context.Background(), parentID)
	require.NoError(t, err)
	assert.Equal(t, first, again)

	record, err := domain.NewRecurringTaskHistory(parentID, uuid.New(), first, time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, history.Create(context.Background(), record))

	next, err := history.NextOccurrenceNumber(context.Background(), parentID)
	require.NoError(t, err)
	assert.Equal(t, first+1, next)
}

func TestCreateNextOccurrenceMissingParent(t *testing.T) {
	tasks := newMockTaskStore()
	history := newMockHistoryStore()
	svc := newRecurrenceFixture(tasks, history)

	_, err := svc.CreateNextOccurrence(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, store.IsNotFoundError(err))
}
