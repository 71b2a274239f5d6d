package predicate

import (
	"fmt"
	"strings"

	"github.com/roach88/reqkey/internal/ir"
	"github.com/roach88/reqkey/internal/reqerr"
)

// Node is a sealed interface for the members of a filter tree.
type Node interface {
	predicateNode() // Marker method - seals interface to this package
	Hash() uint64
	String() string
}

// Predicate is a single column/operator/value condition.
// The zero Predicate is invalid; build with New or one of the parsers.
type Predicate struct {
	name  string
	op    Operator
	value ir.Value // nil for IsNull and IsNotNull
	hash  uint64
}

func (Predicate) predicateNode() {}

// OpValue pairs an operator with its value for dynamic inputs:
//
//	predicate.FromDynamic(map[string]any{"Age": predicate.Op(predicate.GreaterThan, 18)})
type OpValue struct {
	Op    Operator
	Value any
}

// Op builds an OpValue.
func Op(op Operator, value any) OpValue {
	return OpValue{Op: op, Value: value}
}

// New creates a Predicate after checking the operator/value shape:
//
//	Between, NotBetween   exactly two values
//	In, NotIn             a non-empty list
//	IsNull, IsNotNull     no value (nil)
//	others                one non-null scalar
//
// Go values are converted with ir.FromGo; ir.Value arguments pass through.
func New(name string, op Operator, value any) (Predicate, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Predicate{}, reqerr.InvalidArgument("predicate field name must not be empty")
	}
	info, ok := operators[op]
	if !ok {
		return Predicate{}, reqerr.InvalidArgument("predicate %q: unknown operator %d", name, int(op))
	}
	v, err := ir.FromGo(value)
	if err != nil {
		return Predicate{}, reqerr.InvalidArgument("predicate %q: %v", name, err)
	}
	if err := checkArity(name, op, info.arity, v); err != nil {
		return Predicate{}, err
	}
	if info.arity == arityNone {
		v = nil
	}
	return build(name, op, v), nil
}

// build hashes name, operator and value as an ordered triple so the parts
// of sibling predicates cannot be traded between them.
func build(name string, op Operator, v ir.Value) Predicate {
	var vh uint64
	switch {
	case v == nil:
	case op == In || op == NotIn:
		vh = ir.HashUnordered(v.(ir.List))
	default:
		vh = ir.Hash(v)
	}
	h := ir.HashSequence(ir.DomainPredicate, ir.HashWithDomain(ir.DomainField, name), op.Hash(), vh)
	return Predicate{name: name, op: op, value: v, hash: h}
}

func checkArity(name string, op Operator, a arity, v ir.Value) error {
	switch a {
	case arityNone:
		if !ir.IsNull(v) {
			return reqerr.InvalidArgument("predicate %q: %s takes no value, got %s", name, op, ir.Text(v))
		}
	case arityScalar:
		if ir.IsNull(v) {
			return reqerr.InvalidArgument("predicate %q: %s requires a value; use IsNull for null", name, op)
		}
		if ir.IsList(v) {
			return reqerr.InvalidArgument("predicate %q: %s requires a single value, got a list", name, op)
		}
	case arityPair:
		l, ok := v.(ir.List)
		if !ok || len(l) != 2 {
			return reqerr.InvalidArgument("predicate %q: %s requires exactly 2 values, got %s", name, op, describe(v))
		}
		return checkElements(name, op, l)
	case arityList:
		l, ok := v.(ir.List)
		if !ok || len(l) == 0 {
			return reqerr.InvalidArgument("predicate %q: %s requires a non-empty list, got %s", name, op, describe(v))
		}
		return checkElements(name, op, l)
	}
	return nil
}

func checkElements(name string, op Operator, l ir.List) error {
	for i, e := range l {
		if ir.IsNull(e) {
			return reqerr.InvalidArgument("predicate %q: %s value %d is null", name, op, i)
		}
	}
	return nil
}

func describe(v ir.Value) string {
	if l, ok := v.(ir.List); ok {
		return fmt.Sprintf("%d values", len(l))
	}
	if ir.IsNull(v) {
		return "null"
	}
	return "1 value"
}

// FromKeyValue builds a predicate for a loose name/value pair.
// nil maps to IsNull, an OpValue supplies its own operator, and anything
// else compares with Equal.
func FromKeyValue(name string, value any) (Predicate, error) {
	switch v := value.(type) {
	case OpValue:
		return New(name, v.Op, v.Value)
	case *OpValue:
		if v != nil {
			return New(name, v.Op, v.Value)
		}
	}
	cv, err := ir.FromGo(value)
	if err != nil {
		return Predicate{}, reqerr.InvalidArgument("predicate %q: %v", name, err)
	}
	if ir.IsNull(cv) {
		return New(name, IsNull, nil)
	}
	if ir.IsList(cv) {
		return New(name, In, cv)
	}
	return New(name, Equal, cv)
}

// FieldName returns the column name.
func (p Predicate) FieldName() string { return p.name }

// Operator returns the comparison operator.
func (p Predicate) Operator() Operator { return p.op }

// Value returns the comparison value; nil for IsNull and IsNotNull.
func (p Predicate) Value() ir.Value { return p.value }

// Args returns the value as driver-ready Go values: one for scalars,
// two for Between, one per element for In, none for null checks.
func (p Predicate) Args() []any {
	switch v := p.value.(type) {
	case nil:
		return nil
	case ir.List:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = ir.ToGo(e)
		}
		return out
	default:
		return []any{ir.ToGo(v)}
	}
}

// Hash returns the structural hash. In and NotIn hash their list
// order-independently.
func (p Predicate) Hash() uint64 { return p.hash }

// Negate returns the predicate with its operator inverted.
func (p Predicate) Negate() (Predicate, error) {
	inv, ok := p.op.Inverse()
	if !ok {
		return Predicate{}, reqerr.UnsupportedExpression(p, "%s has no inverse", p.op)
	}
	return build(p.name, inv, p.value), nil
}

// Equal compares name, operator and value. In and NotIn values compare as
// multisets; Between values compare in order.
func (p Predicate) Equal(other Predicate) bool {
	if p.hash != other.hash || p.name != other.name || p.op != other.op {
		return false
	}
	if p.value == nil || other.value == nil {
		return p.value == nil && other.value == nil
	}
	if p.op == In || p.op == NotIn {
		a, _ := p.value.(ir.List)
		b, _ := other.value.(ir.List)
		return ir.EqualUnordered(a, b)
	}
	return ir.Equal(p.value, other.value)
}

func (p Predicate) String() string {
	switch p.op.arity() {
	case arityNone:
		return fmt.Sprintf("%s %s", p.name, p.op.Symbol())
	case arityPair:
		l, _ := p.value.(ir.List)
		if len(l) == 2 {
			return fmt.Sprintf("%s %s %s AND %s", p.name, p.op.Symbol(), ir.Text(l[0]), ir.Text(l[1]))
		}
	}
	return fmt.Sprintf("%s %s %s", p.name, p.op.Symbol(), ir.Text(p.value))
}

func (op Operator) arity() arity {
	return operators[op].arity
}
