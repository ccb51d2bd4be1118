// Package store persists workshop items, tasks, and timelines in SQLite and
// implements the workflow engine's storage boundaries.
//
// The Store manages the database connection, schema initialization, busy
// retries, and the conditional task-transition write the workflow controller
// relies on. Task status transitions are compare-and-swap updates keyed on
// the expected prior status; a lost race surfaces as workflow.ErrConflict
// instead of a silent overwrite.
//
// Treat this package as the single source of truth for persistence
// semantics; when you add columns, update schema.sql and bump schemaVersion.
package store
