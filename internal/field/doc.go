// Package field provides column references for requests.
//
// A Field is a trimmed, non-empty name plus an optional Go type. Two fields
// are equal when both name and type match; a field without a type never
// equals one with a type. Fields are values: the hash is computed when the
// field is built and WithType returns a new field rather than mutating.
//
// Fields can be built from:
//   - raw names (New, FromNames)
//   - the exported members of a struct type or value (FromType, FromValue)
//   - member-access expressions (FromExpression, FromExpressionSource)
//
// OrderField pairs a Field with a sort direction for ORDER BY clauses.
package field
