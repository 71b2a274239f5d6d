// Package statement renders requests into parameterized SQL.
//
// SQLBuilder is the request.Builder used by the store and the CLI. It
// renders every request shape with squirrel for one Dialect. Values are
// always bound as arguments and never interpolated into the SQL text.
//
// Cache wraps any Builder and reuses rendered statements for requests
// with the same hash. A hit is only served when the cached request is
// structurally equal to the new one; a hash collision is rebuilt.
package statement
