// Package domain defines the core business entities of the application:
// users, tasks, tags, scheduled reminders, and recurring-task history.
// Entities carry their own validation; persistence concerns live in the
// store packages.
package domain
