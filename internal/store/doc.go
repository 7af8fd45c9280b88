// Package store defines the persistence interfaces for the application's
// entities together with shared store errors and a transaction helper.
// Implementations live in internal/platform/postgres.
package store
