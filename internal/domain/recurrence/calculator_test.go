package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdalton/taskwell-api/internal/domain"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return parsed
}

func TestNextDue_Patterns(t *testing.T) {
	t.Parallel()

	now := mustTime(t, "2024-06-15T12:00:00Z")

	tests := []struct {
		name    string
		lastDue string
		pattern domain.RecurrencePattern
		want    string
	}{
		{
			name:    "daily adds one day",
			lastDue: "2024-06-01T09:00:00Z",
			pattern: domain.RecurrenceDaily,
			want:    "2024-06-02T09:00:00Z",
		},
		{
			name:    "daily across month boundary",
			lastDue: "2024-06-30T09:00:00Z",
			pattern: domain.RecurrenceDaily,
			want:    "2024-07-01T09:00:00Z",
		},
		{
			name:    "weekly adds seven days",
			lastDue: "2024-06-01T09:00:00Z",
			pattern: domain.RecurrenceWeekly,
			want:    "2024-06-08T09:00:00Z",
		},
		{
			name:    "monthly keeps day of month",
			lastDue: "2024-03-15T18:30:00Z",
			pattern: domain.RecurrenceMonthly,
			want:    "2024-04-15T18:30:00Z",
		},
		{
			name:    "monthly clamps to leap-year february",
			lastDue: "2024-01-31T00:00:00Z",
			pattern: domain.RecurrenceMonthly,
			want:    "2024-02-29T00:00:00Z",
		},
		{
			name:    "monthly clamps to non-leap february",
			lastDue: "2023-01-31T00:00:00Z",
			pattern: domain.RecurrenceMonthly,
			want:    "2023-02-28T00:00:00Z",
		},
		{
			name:    "monthly clamps 31st to 30-day month",
			lastDue: "2024-05-31T08:00:00Z",
			pattern: domain.RecurrenceMonthly,
			want:    "2024-06-30T08:00:00Z",
		},
		{
			name:    "monthly december rolls the year",
			lastDue: "2024-12-15T09:00:00Z",
			pattern: domain.RecurrenceMonthly,
			want:    "2025-01-15T09:00:00Z",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			lastDue := mustTime(t, tt.lastDue)
			got := NextDue(&lastDue, tt.pattern, now)
			assert.Equal(t, mustTime(t, tt.want), got)
		})
	}
}

func TestNextDue_AlwaysAdvances(t *testing.T) {
	t.Parallel()

	now := mustTime(t, "2024-06-15T12:00:00Z")
	patterns := []domain.RecurrencePattern{
		domain.RecurrenceDaily,
		domain.RecurrenceWeekly,
		domain.RecurrenceMonthly,
	}

	// Sample a spread of dates, including month ends and a leap day.
	dates := []string{
		"2024-01-01T00:00:00Z",
		"2024-01-31T23:59:59Z",
		"2024-02-29T12:00:00Z",
		"2024-06-15T09:30:00Z",
		"2024-12-31T23:00:00Z",
		"2025-02-28T00:00:00Z",
	}

	for _, pattern := range patterns {
		for _, date := range dates {
			lastDue := mustTime(t, date)
			got := NextDue(&lastDue, pattern, now)
			assert.True(t, got.After(lastDue),
				"NextDue(%s, %s) = %s must be after the last due date", date, pattern, got)
		}
	}
}

func TestNextDue_NoLastDueRestartsFromNow(t *testing.T) {
	t.Parallel()

	now := mustTime(t, "2024-06-15T12:00:00Z")

	for _, pattern := range []domain.RecurrencePattern{
		domain.RecurrenceDaily,
		domain.RecurrenceWeekly,
		domain.RecurrenceMonthly,
	} {
		got := NextDue(nil, pattern, now)
		assert.Equal(t, now, got)
	}
}

func TestNextDue_FallbackForNonRecurringPatterns(t *testing.T) {
	t.Parallel()

	now := mustTime(t, "2024-06-15T12:00:00Z")
	lastDue := mustTime(t, "2024-06-01T09:00:00Z")

	assert.Equal(t, now, NextDue(&lastDue, domain.RecurrenceNone, now))
	assert.Equal(t, now, NextDue(&lastDue, domain.RecurrencePattern("fortnightly"), now))
}

func TestNextDue_PreservesLocation(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("UTC+2", 2*60*60)
	lastDue := time.Date(2024, time.January, 31, 9, 0, 0, 0, loc)

	got := NextDue(&lastDue, domain.RecurrenceMonthly, time.Now().UTC())
	assert.Equal(t, time.Date(2024, time.February, 29, 9, 0, 0, 0, loc), got)
	assert.Equal(t, loc, got.Location())
}
