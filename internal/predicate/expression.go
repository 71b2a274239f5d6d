package predicate

import (
	"reflect"

	"github.com/roach88/reqkey/internal/expr"
	"github.com/roach88/reqkey/internal/mapping"
	"github.com/roach88/reqkey/internal/reqerr"
)

var compareOperators = map[expr.CompareOp]Operator{
	expr.OpEq: Equal,
	expr.OpNe: NotEqual,
	expr.OpLt: LessThan,
	expr.OpLe: LessThanOrEqual,
	expr.OpGt: GreaterThan,
	expr.OpGe: GreaterThanOrEqual,
}

// FromBinaryExpression converts one leaf condition into a Predicate.
//
// Recognized shapes:
//
//	e.Age > 18, 18 < e.Age         comparison, constant on either side
//	e.Name == null, e.Name != null IsNull, IsNotNull
//	[1, 2].Contains(e.Id)          In
//	e.Name.Contains("a")           Like "%a%"
//	e.Name.StartsWith("a")         Like "a%"
//	e.Name.EndsWith("a")           Like "%a"
//
// Conversions around either operand are ignored. Anything else is an
// UnsupportedExpression error.
func FromBinaryExpression(n expr.Node) (Predicate, error) {
	switch x := expr.Unwrap(n).(type) {
	case expr.Comparison:
		return fromComparison(n, x)
	case expr.Call:
		return fromCall(n, x)
	case nil:
		return Predicate{}, reqerr.UnsupportedExpression(n, "expression is nil")
	default:
		return Predicate{}, reqerr.UnsupportedExpression(n, "expected a comparison or call, got %T", x)
	}
}

func fromComparison(n expr.Node, c expr.Comparison) (Predicate, error) {
	op := c.Op
	m, k, ok := memberAndConst(c.Left, c.Right)
	if !ok {
		m, k, ok = memberAndConst(c.Right, c.Left)
		if !ok {
			return Predicate{}, reqerr.UnsupportedExpression(n, "comparison needs one member and one constant")
		}
		op = op.Flip()
	}

	if k.Value == nil {
		switch op {
		case expr.OpEq:
			return New(m.Name, IsNull, nil)
		case expr.OpNe:
			return New(m.Name, IsNotNull, nil)
		default:
			return Predicate{}, reqerr.UnsupportedExpression(n, "null only compares with == or !=")
		}
	}

	pop, known := compareOperators[op]
	if !known {
		return Predicate{}, reqerr.UnsupportedExpression(n, "unsupported comparison operator %s", op)
	}
	p, err := New(m.Name, pop, k.Value)
	if err != nil {
		return Predicate{}, unsupported(n, err)
	}
	return p, nil
}

func fromCall(n expr.Node, c expr.Call) (Predicate, error) {
	if len(c.Args) != 1 {
		return Predicate{}, reqerr.UnsupportedExpression(n, "%s takes one argument", c.Method)
	}
	recv, arg := expr.Unwrap(c.Receiver), expr.Unwrap(c.Args[0])

	if c.Method == expr.MethodContains {
		if list, ok := recv.(expr.Const); ok {
			m, ok := arg.(expr.Member)
			if !ok {
				return Predicate{}, reqerr.UnsupportedExpression(n, "list membership needs a member argument")
			}
			p, err := New(m.Name, In, list.Value)
			if err != nil {
				return Predicate{}, unsupported(n, err)
			}
			return p, nil
		}
	}

	m, ok := recv.(expr.Member)
	if !ok {
		return Predicate{}, reqerr.UnsupportedExpression(n, "%s needs a member receiver", c.Method)
	}
	k, ok := arg.(expr.Const)
	if !ok {
		return Predicate{}, reqerr.UnsupportedExpression(n, "%s needs a constant argument", c.Method)
	}
	s, ok := k.Value.(string)
	if !ok {
		return Predicate{}, reqerr.UnsupportedExpression(n, "%s needs a string argument", c.Method)
	}

	var pattern string
	switch c.Method {
	case expr.MethodContains:
		pattern = "%" + s + "%"
	case expr.MethodStartsWith:
		pattern = s + "%"
	case expr.MethodEndsWith:
		pattern = "%" + s
	default:
		return Predicate{}, reqerr.UnsupportedExpression(n, "unsupported method %s", c.Method)
	}
	return New(m.Name, Like, pattern)
}

func memberAndConst(a, b expr.Node) (expr.Member, expr.Const, bool) {
	m, ok := expr.Unwrap(a).(expr.Member)
	if !ok {
		return expr.Member{}, expr.Const{}, false
	}
	k, ok := expr.Unwrap(b).(expr.Const)
	if !ok {
		return expr.Member{}, expr.Const{}, false
	}
	return m, k, true
}

func unsupported(n expr.Node, cause error) error {
	return &reqerr.Error{
		Code:    reqerr.CodeUnsupportedExpression,
		Message: "cannot build predicate",
		Expr:    text(n),
		Err:     cause,
	}
}

func text(n expr.Node) string {
	if n == nil {
		return "<nil>"
	}
	return n.String()
}

// FromExpressionTree converts a boolean expression into a Group.
//
// && and || become nested groups, leaves go through FromBinaryExpression,
// and ! inverts a leaf's operator or applies De Morgan to a group. A bare
// leaf at the root is wrapped in an AND group.
func FromExpressionTree(n expr.Node) (Group, error) {
	node, err := fromTree(n, false)
	if err != nil {
		return Group{}, err
	}
	if g, ok := node.(Group); ok {
		return g, nil
	}
	return And(node)
}

func fromTree(n expr.Node, negated bool) (Node, error) {
	switch x := expr.Unwrap(n).(type) {
	case expr.Logical:
		comb := CombineAnd
		if x.Op == expr.OpOr {
			comb = CombineOr
		}
		if negated {
			comb = comb.Flip()
		}
		if len(x.Children) == 0 {
			return nil, reqerr.InvalidExpression(n, "empty %s", x.Op)
		}
		children := make([]Node, 0, len(x.Children))
		for _, c := range x.Children {
			child, err := fromTree(c, negated)
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}
		return NewGroup(comb, children...)

	case expr.Not:
		return fromTree(x.X, !negated)

	default:
		p, err := FromBinaryExpression(n)
		if err != nil {
			return nil, err
		}
		if !negated {
			return p, nil
		}
		inv, ok := p.op.Inverse()
		if !ok {
			return nil, reqerr.UnsupportedExpression(n, "cannot negate %s", p.op)
		}
		return build(p.name, inv, p.value), nil
	}
}

// FromExpressionSource parses src over t and converts it with
// FromExpressionTree. t may be nil for untyped members.
func FromExpressionSource(src string, t reflect.Type, lister mapping.MemberLister) (Group, error) {
	n, err := expr.Parse(src, expr.NewParam(t, lister))
	if err != nil {
		return Group{}, err
	}
	return FromExpressionTree(n)
}
