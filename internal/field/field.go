package field

import (
	"iter"
	"reflect"
	"slices"
	"strings"

	"github.com/roach88/reqkey/internal/ir"
	"github.com/roach88/reqkey/internal/reqerr"
)

// Field is a column reference by name and optional Go type.
// The zero Field is invalid; build fields with New or one of the parsers.
type Field struct {
	name string
	typ  reflect.Type
	hash uint64
}

// New creates a Field. The name is trimmed and must not be blank.
// At most one type may be given.
func New(name string, typ ...reflect.Type) (Field, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Field{}, reqerr.InvalidArgument("field name must not be empty")
	}
	if len(typ) > 1 {
		return Field{}, reqerr.InvalidArgument("field %q: at most one type, got %d", name, len(typ))
	}
	var t reflect.Type
	if len(typ) == 1 {
		t = typ[0]
	}
	return build(name, t), nil
}

// MustNew is like New but panics on error.
// Use only in tests or when the name is known to be valid.
func MustNew(name string, typ ...reflect.Type) Field {
	f, err := New(name, typ...)
	if err != nil {
		panic(err)
	}
	return f
}

func build(name string, t reflect.Type) Field {
	return Field{name: name, typ: t, hash: ir.HashWithDomain(ir.DomainField, name) + TypeHash(t)}
}

// TypeHash hashes a type descriptor. A nil type hashes to zero.
func TypeHash(t reflect.Type) uint64 {
	if t == nil {
		return 0
	}
	return ir.HashWithDomain(ir.DomainType, t.PkgPath(), t.String())
}

// Name returns the column name.
func (f Field) Name() string { return f.name }

// Type returns the value type, or nil when untyped.
func (f Field) Type() reflect.Type { return f.typ }

// IsZero reports whether f is the zero Field.
func (f Field) IsZero() bool { return f.name == "" }

// WithType returns a copy of f carrying t.
func (f Field) WithType(t reflect.Type) Field {
	if f.IsZero() {
		return f
	}
	return build(f.name, t)
}

// Hash returns the structural hash.
func (f Field) Hash() uint64 { return f.hash }

// Equal reports whether both name and type match.
func (f Field) Equal(other Field) bool {
	return f.hash == other.hash && f.name == other.name && f.typ == other.typ
}

// String is for diagnostics only.
func (f Field) String() string {
	if f.typ == nil {
		return f.name
	}
	return f.name + " " + f.typ.String()
}

// FromNames validates names and returns a sequence yielding one Field per
// name in input order. An empty list or any blank name is an error; fields
// are built lazily as the sequence is consumed.
func FromNames(names ...string) (iter.Seq[Field], error) {
	if len(names) == 0 {
		return nil, reqerr.InvalidArgument("field names must not be empty")
	}
	for i, n := range names {
		if strings.TrimSpace(n) == "" {
			return nil, reqerr.InvalidArgument("field name at index %d must not be empty", i)
		}
	}
	return func(yield func(Field) bool) {
		for _, n := range names {
			if !yield(build(strings.TrimSpace(n), nil)) {
				return
			}
		}
	}, nil
}

// MustFromNames collects FromNames and panics on error.
func MustFromNames(names ...string) []Field {
	seq, err := FromNames(names...)
	if err != nil {
		panic(err)
	}
	return slices.Collect(seq)
}

// Names projects fields to their names.
func Names(fields []Field) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.name
	}
	return out
}

// Equals compares two field lists element-wise.
func Equals(a, b []Field) bool {
	return slices.EqualFunc(a, b, Field.Equal)
}

// HashAll hashes an ordered field list. Position matters.
func HashAll(fields []Field) uint64 {
	hashes := make([]uint64, len(fields))
	for i, f := range fields {
		hashes[i] = f.hash
	}
	return ir.HashSequence(ir.DomainField, hashes...)
}
