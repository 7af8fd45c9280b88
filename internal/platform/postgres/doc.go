// Package postgres provides PostgreSQL implementations of the store
// interfaces. All stores accept a store.DBTX so they work both against
// the shared connection pool and inside a transaction, and they map
// driver errors to the store package's sentinel errors so callers never
// see database internals.
package postgres
