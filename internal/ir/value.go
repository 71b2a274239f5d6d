package ir

import "slices"

// Value is a sealed interface representing constrained value types.
// Only Null, String, Int, Float, Bool and List implement it.
type Value interface {
	irValue() // Sealed - only these types implement it
}

// Null represents an SQL NULL.
type Null struct{}

func (Null) irValue() {}

// String represents a string value.
type String string

func (String) irValue() {}

// Int represents an integer value. Always int64.
type Int int64

func (Int) irValue() {}

// Float represents a finite floating point value.
type Float float64

func (Float) irValue() {}

// Bool represents a boolean value.
type Bool bool

func (Bool) irValue() {}

// List represents an ordered list of values, used by IN and BETWEEN.
type List []Value

func (List) irValue() {}

// NewList creates a List from values.
func NewList(vals ...Value) List {
	return List(vals)
}

// IsNull reports whether v is nil or Null.
func IsNull(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(Null)
	return ok
}

// IsList reports whether v is a List.
func IsList(v Value) bool {
	_, ok := v.(List)
	return ok
}

// Equal reports whether a and b hold the same value of the same kind.
// Lists compare element-wise in order. Strings compare by bytes; FromGo
// stores them in NFC so Equal agrees with Hash.
func Equal(a, b Value) bool {
	if IsNull(a) || IsNull(b) {
		return IsNull(a) && IsNull(b)
	}
	switch av := a.(type) {
	case List:
		bv, ok := b.(List)
		return ok && slices.EqualFunc(av, bv, Equal)
	default:
		return a == b
	}
}

// EqualUnordered reports whether two lists hold the same multiset of values.
func EqualUnordered(a, b List) bool {
	if len(a) != len(b) {
		return false
	}
	used := make([]bool, len(b))
outer:
	for _, av := range a {
		for i, bv := range b {
			if !used[i] && Equal(av, bv) {
				used[i] = true
				continue outer
			}
		}
		return false
	}
	return true
}

// ToGo converts a Value to a Go native value suitable for a driver argument.
func ToGo(v Value) any {
	switch val := v.(type) {
	case nil, Null:
		return nil
	case String:
		return string(val)
	case Int:
		return int64(val)
	case Float:
		return float64(val)
	case Bool:
		return bool(val)
	case List:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = ToGo(elem)
		}
		return out
	default:
		return nil
	}
}

// Kind returns a short name for the value's kind, used in hashing and messages.
func Kind(v Value) string {
	switch v.(type) {
	case nil, Null:
		return "null"
	case String:
		return "string"
	case Int:
		return "int"
	case Float:
		return "float"
	case Bool:
		return "bool"
	case List:
		return "list"
	default:
		return "unknown"
	}
}
