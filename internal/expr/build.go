package expr

import (
	"reflect"

	"github.com/roach88/reqkey/internal/mapping"
	"github.com/roach88/reqkey/internal/reqerr"
)

// Param is the lambda parameter of an expression, bound to a Go type.
// An unbound Param (nil type) accepts any member name and leaves it untyped.
type Param struct {
	typ     reflect.Type
	members []mapping.Member
}

// NewParam binds a parameter to t, enumerating members with lister.
// A nil lister uses mapping.DefaultLister.
func NewParam(t reflect.Type, lister mapping.MemberLister) *Param {
	if lister == nil {
		lister = mapping.DefaultLister
	}
	p := &Param{typ: t}
	if t != nil {
		p.members = lister.Members(t)
	}
	return p
}

// ParamFor binds a parameter to T.
func ParamFor[T any](lister mapping.MemberLister) *Param {
	return NewParam(reflect.TypeFor[T](), lister)
}

// Type returns the bound type, or nil.
func (p *Param) Type() reflect.Type {
	if p == nil {
		return nil
	}
	return p.typ
}

// Member resolves a member by mapped or Go name.
// On a typed Param an unknown name is an InvalidExpression error.
func (p *Param) Member(name string) (Member, error) {
	if p == nil || p.typ == nil {
		return Member{Name: name}, nil
	}
	m, ok := mapping.Lookup(p.members, name)
	if !ok {
		return Member{}, reqerr.InvalidExpression(Member{Name: name}, "type %s has no member %q", p.typ, name)
	}
	return Member{Name: m.Name, Type: m.Type}, nil
}

// M is like Member but panics on error.
// Use only in tests or when the member is known to exist.
func (p *Param) M(name string) Member {
	m, err := p.Member(name)
	if err != nil {
		panic(err)
	}
	return m
}

// Value wraps a literal.
func Value(v any) Const {
	return Const{Value: v}
}

// operand returns v as a Node, wrapping non-nodes in Const.
func operand(v any) Node {
	if n, ok := v.(Node); ok {
		return n
	}
	return Const{Value: v}
}

// Eq builds left == right. Non-node operands become constants.
func Eq(left, right any) Comparison { return compare(OpEq, left, right) }

// Ne builds left != right.
func Ne(left, right any) Comparison { return compare(OpNe, left, right) }

// Lt builds left < right.
func Lt(left, right any) Comparison { return compare(OpLt, left, right) }

// Le builds left <= right.
func Le(left, right any) Comparison { return compare(OpLe, left, right) }

// Gt builds left > right.
func Gt(left, right any) Comparison { return compare(OpGt, left, right) }

// Ge builds left >= right.
func Ge(left, right any) Comparison { return compare(OpGe, left, right) }

func compare(op CompareOp, left, right any) Comparison {
	return Comparison{Op: op, Left: operand(left), Right: operand(right)}
}

// And builds a conjunction.
func And(children ...Node) Logical {
	return Logical{Op: OpAnd, Children: children}
}

// Or builds a disjunction.
func Or(children ...Node) Logical {
	return Logical{Op: OpOr, Children: children}
}

// Negate builds !(x).
func Negate(x Node) Not {
	return Not{X: x}
}

// Convert wraps x in a conversion to t.
func Convert(x Node, t reflect.Type) Conversion {
	return Conversion{X: x, Type: t}
}

// Contains builds receiver.Contains(arg). With a list receiver it reads as
// membership; with a string member receiver it reads as substring match.
func Contains(receiver, arg any) Call {
	return Call{Method: MethodContains, Receiver: operand(receiver), Args: []Node{operand(arg)}}
}

// StartsWith builds receiver.StartsWith(arg).
func StartsWith(receiver, arg any) Call {
	return Call{Method: MethodStartsWith, Receiver: operand(receiver), Args: []Node{operand(arg)}}
}

// EndsWith builds receiver.EndsWith(arg).
func EndsWith(receiver, arg any) Call {
	return Call{Method: MethodEndsWith, Receiver: operand(receiver), Args: []Node{operand(arg)}}
}

// As renames x.
func As(x Node, name string) Alias {
	return Alias{X: x, Name: name}
}
