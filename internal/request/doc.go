// Package request provides the hashable request objects that key
// statement caches.
//
// One generic Request type covers every operation. A Kind (Query,
// Average, MaxAll, ...) is looked up in a registry that says which
// optional components the operation accepts; supplying any other
// component is an InvalidArgument error. New kinds can be added with
// RegisterKind.
//
// Requests are built by name (New) or by type (NewFor, NewOf). Type-based
// construction resolves the table name once through a mapping.Resolver;
// both forms produce the same hash for the same components.
//
// Equal compares hashes only (HashComparer). StructuralComparer adds a
// full component comparison behind the same interface.
package request
