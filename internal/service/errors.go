package service

import "errors"

// Sentinel errors returned by services. Handlers map these to HTTP
// status codes.
var (
	// ErrTaskNotFound indicates the task does not exist or belongs to a
	// different user.
	ErrTaskNotFound = errors.New("task not found")

	// ErrTagNotFound indicates the tag does not exist.
	ErrTagNotFound = errors.New("tag not found")

	// ErrReminderNotFound indicates the reminder does not exist or
	// belongs to a different user.
	ErrReminderNotFound = errors.New("reminder not found")

	// ErrNotRecurring indicates a recurrence operation was requested for
	// a task whose pattern is none.
	ErrNotRecurring = errors.New("task is not recurring")
)
