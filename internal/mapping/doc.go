// Package mapping resolves Go types to storage-side names.
//
// Two capabilities live here:
//
//	MemberLister  type → ordered exported members (name, Go type)
//	Resolver      type → mapped table name
//
// Member enumeration uses sqlx's reflectx so the `db` struct tag convention
// is honored everywhere a column name is derived from a struct field.
// Resolution is cached per type and is deterministic: a type that resolves
// once resolves to the same name for the life of the cache.
package mapping
