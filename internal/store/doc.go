// Package store runs requests against SQLite or PostgreSQL through sqlx.
//
// The store renders a request with the request's own builder when it has
// one, and otherwise with a statement cache for the connection's dialect.
// Placeholders are rebound for the driver before execution.
//
// Each call accepts only the request shapes it can run:
//   - Scalar: average, min, max, sum and count
//   - Count: count
//   - Exists: exists
//   - Exec: delete
//   - Rows: select
//
// Rows are returned unscanned; mapping them to values is left to callers.
//
// # Database Configuration
//
// SQLite connections get the same pragmas everywhere:
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
