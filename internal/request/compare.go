package request

import (
	"github.com/roach88/reqkey/internal/field"
	"github.com/roach88/reqkey/internal/predicate"
)

// Comparer decides whether two requests describe the same operation.
type Comparer interface {
	Equal(a, b *Request) bool
}

// HashComparer treats equal hashes as equal requests.
//
// Hashes are 64-bit and components combine by addition, so two different
// requests can collide. Callers that key correctness-critical state on
// requests should use StructuralComparer.
type HashComparer struct{}

func (HashComparer) Equal(a, b *Request) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Hash() == b.Hash()
}

// StructuralComparer checks hashes first, then compares every identity
// component. The target type and the builder are not compared.
type StructuralComparer struct{}

func (StructuralComparer) Equal(a, b *Request) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a == b {
		return true
	}
	if a.Hash() != b.Hash() {
		return false
	}
	if a.name != b.name || a.spec.Kind != b.spec.Kind {
		return false
	}
	if a.limit != b.limit || a.hints != b.hints {
		return false
	}
	if !field.Equals(a.fields, b.fields) || !field.OrderEquals(a.orderBy, b.orderBy) {
		return false
	}
	if a.where.IsZero() || b.where.IsZero() {
		return a.where.IsZero() && b.where.IsZero()
	}
	return predicate.EqualNodes(a.where, b.where)
}
