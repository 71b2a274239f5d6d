package field

import (
	"maps"
	"reflect"
	"slices"
	"strings"

	"github.com/roach88/reqkey/internal/ir"
	"github.com/roach88/reqkey/internal/reqerr"
)

// Order is a sort direction.
type Order int

const (
	Ascending Order = iota
	Descending
)

func (o Order) String() string {
	if o == Descending {
		return "DESC"
	}
	return "ASC"
}

// OrderField is a Field with a sort direction.
type OrderField struct {
	field Field
	order Order
	hash  uint64
}

// NewOrder creates an OrderField for name.
func NewOrder(name string, order Order, typ ...reflect.Type) (OrderField, error) {
	if order != Ascending && order != Descending {
		return OrderField{}, reqerr.InvalidArgument("invalid order %d", int(order))
	}
	f, err := New(name, typ...)
	if err != nil {
		return OrderField{}, err
	}
	return OrderBy(f, order), nil
}

// OrderBy pairs an existing field with a direction.
func OrderBy(f Field, order Order) OrderField {
	return OrderField{
		field: f,
		order: order,
		hash:  f.Hash() + ir.HashWithDomain(ir.DomainOrder, order.String()),
	}
}

// Asc is shorthand for an ascending OrderField. It panics on a blank name.
func Asc(name string) OrderField {
	return OrderBy(MustNew(name), Ascending)
}

// Desc is shorthand for a descending OrderField. It panics on a blank name.
func Desc(name string) OrderField {
	return OrderBy(MustNew(name), Descending)
}

// ParseOrder reads "Name", "Name ASC" or "Name DESC" (case-insensitive keyword).
func ParseOrder(s string) (OrderField, error) {
	parts := strings.Fields(s)
	switch len(parts) {
	case 1:
		return NewOrder(parts[0], Ascending)
	case 2:
		switch strings.ToUpper(parts[1]) {
		case "ASC", "ASCENDING":
			return NewOrder(parts[0], Ascending)
		case "DESC", "DESCENDING":
			return NewOrder(parts[0], Descending)
		}
		return OrderField{}, reqerr.InvalidArgument("order %q: unknown direction %q", s, parts[1])
	case 0:
		return OrderField{}, reqerr.InvalidArgument("order must not be empty")
	default:
		return OrderField{}, reqerr.InvalidArgument("order %q: expected \"<name> [ASC|DESC]\"", s)
	}
}

// OrderFromMap builds OrderFields from a name to direction map.
// Map iteration order is random, so the result is sorted by name.
func OrderFromMap(m map[string]Order) ([]OrderField, error) {
	if len(m) == 0 {
		return nil, reqerr.InvalidArgument("order map must not be empty")
	}
	out := make([]OrderField, 0, len(m))
	for _, name := range slices.Sorted(maps.Keys(m)) {
		of, err := NewOrder(name, m[name])
		if err != nil {
			return nil, err
		}
		out = append(out, of)
	}
	return out, nil
}

// Field returns the ordered field.
func (o OrderField) Field() Field { return o.field }

// Order returns the direction.
func (o OrderField) Order() Order { return o.order }

// Hash returns the structural hash.
func (o OrderField) Hash() uint64 { return o.hash }

// Equal reports whether field and direction match.
func (o OrderField) Equal(other OrderField) bool {
	return o.order == other.order && o.field.Equal(other.field)
}

func (o OrderField) String() string {
	return o.field.Name() + " " + o.order.String()
}

// OrderEquals compares two ordering lists element-wise.
func OrderEquals(a, b []OrderField) bool {
	return slices.EqualFunc(a, b, OrderField.Equal)
}

// HashOrder hashes an ordering list. Position matters.
func HashOrder(orders []OrderField) uint64 {
	hashes := make([]uint64, len(orders))
	for i, o := range orders {
		hashes[i] = o.hash
	}
	return ir.HashSequence(ir.DomainOrder, hashes...)
}
