// Package api implements the HTTP handlers for the REST surface:
// authentication, task CRUD with filtering and completion toggling,
// tags, reminders, and the recurrence history ledger. Handlers decode
// and validate requests, delegate to services or stores, and map
// service errors to HTTP status codes.
package api
