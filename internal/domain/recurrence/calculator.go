// Package recurrence implements the occurrence-date arithmetic for
// recurring tasks: given the due date of the instance just completed and
// the task's recurrence pattern, it computes when the next instance is
// due.
package recurrence

import (
	"time"

	"github.com/jdalton/taskwell-api/internal/domain"
)

// NextDue computes the due date of the next occurrence of a recurring
// task.
//
// Behavior:
//   - A nil lastDue means the recurring task never had a due date; the
//     chain restarts from now. This is a policy choice, not an error.
//   - daily advances one calendar day, weekly seven; the clock time is
//     preserved in both cases.
//   - monthly advances to the same day-of-month in the following month,
//     clamped to that month's last valid day (Jan 31 -> Feb 28, or Feb 29
//     in leap years). December rolls over into January of the next year.
//   - RecurrenceNone or an unrecognized pattern returns now. The
//     recurrence engine never calls NextDue for non-recurring tasks, so
//     this branch is a defensive fallback rather than a normal path.
//
// NextDue is pure: callers supply the current instant, and the result
// depends only on the arguments.
func NextDue(lastDue *time.Time, pattern domain.RecurrencePattern, now time.Time) time.Time {
	if lastDue == nil {
		return now
	}

	last := *lastDue

	switch pattern {
	case domain.RecurrenceDaily:
		return last.AddDate(0, 0, 1)
	case domain.RecurrenceWeekly:
		return last.AddDate(0, 0, 7)
	case domain.RecurrenceMonthly:
		return nextMonthClamped(last)
	default:
		return now
	}
}

// nextMonthClamped returns the same day-of-month in the following month,
// clamping to the last valid day when the original day does not exist
// there. time.Date would normalize Feb 31 into March, so the day is
// clamped before constructing the result.
func nextMonthClamped(t time.Time) time.Time {
	year, month, day := t.Date()

	month++
	if month > time.December {
		month = time.January
		year++
	}

	if last := daysIn(year, month); day > last {
		day = last
	}

	hour, min, sec := t.Clock()
	return time.Date(year, month, day, hour, min, sec, t.Nanosecond(), t.Location())
}

// daysIn returns the number of days in the given month. Day 0 of the
// following month normalizes to the last day of this one.
func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
