package expr

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/roach88/reqkey/internal/ir"
)

// Node is a sealed interface for expression tree variants.
type Node interface {
	exprNode() // Marker method - seals interface to this package
	String() string
}

// Member is an access to one data member of the parameter type.
// Type is nil when the member was not resolved against a Go type.
type Member struct {
	Name string
	Type reflect.Type
}

func (Member) exprNode() {}

func (m Member) String() string { return "e." + m.Name }

// Const is a literal value: a scalar, a list (as []any), or nil.
type Const struct {
	Value any
}

func (Const) exprNode() {}

func (c Const) String() string {
	if v, err := ir.FromGo(c.Value); err == nil {
		return ir.Text(v)
	}
	return fmt.Sprintf("%v", c.Value)
}

// CompareOp is a binary comparison operator.
type CompareOp int

const (
	OpEq CompareOp = iota + 1
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
)

var compareOpText = map[CompareOp]string{
	OpEq: "==",
	OpNe: "!=",
	OpLt: "<",
	OpLe: "<=",
	OpGt: ">",
	OpGe: ">=",
}

func (op CompareOp) String() string {
	if s, ok := compareOpText[op]; ok {
		return s
	}
	return fmt.Sprintf("CompareOp(%d)", int(op))
}

// Flip returns the operator with operands swapped (a < b ⇔ b > a).
func (op CompareOp) Flip() CompareOp {
	switch op {
	case OpLt:
		return OpGt
	case OpLe:
		return OpGe
	case OpGt:
		return OpLt
	case OpGe:
		return OpLe
	default:
		return op
	}
}

// Comparison is a binary comparison between two operands.
type Comparison struct {
	Op    CompareOp
	Left  Node
	Right Node
}

func (Comparison) exprNode() {}

func (c Comparison) String() string {
	return fmt.Sprintf("%s %s %s", text(c.Left), c.Op, text(c.Right))
}

// LogicalOp combines boolean children.
type LogicalOp int

const (
	OpAnd LogicalOp = iota + 1
	OpOr
)

func (op LogicalOp) String() string {
	switch op {
	case OpAnd:
		return "&&"
	case OpOr:
		return "||"
	default:
		return fmt.Sprintf("LogicalOp(%d)", int(op))
	}
}

// Logical is a conjunction or disjunction of children.
type Logical struct {
	Op       LogicalOp
	Children []Node
}

func (Logical) exprNode() {}

func (l Logical) String() string {
	parts := make([]string, len(l.Children))
	for i, c := range l.Children {
		parts[i] = text(c)
		if _, nested := c.(Logical); nested {
			parts[i] = "(" + parts[i] + ")"
		}
	}
	return strings.Join(parts, " "+l.Op.String()+" ")
}

// Not is a logical negation.
type Not struct {
	X Node
}

func (Not) exprNode() {}

func (n Not) String() string { return "!(" + text(n.X) + ")" }

// Conversion is a type conversion wrapping an operand, e.g. int(e.Age).
type Conversion struct {
	X    Node
	Type reflect.Type
}

func (Conversion) exprNode() {}

func (c Conversion) String() string {
	name := "convert"
	if c.Type != nil {
		name = c.Type.String()
	}
	return fmt.Sprintf("%s(%s)", name, text(c.X))
}

// Method names recognized on Call nodes.
const (
	MethodContains   = "Contains"
	MethodStartsWith = "StartsWith"
	MethodEndsWith   = "EndsWith"
)

// Call is a method-call shaped node: Receiver.Method(Args...).
type Call struct {
	Method   string
	Receiver Node
	Args     []Node
}

func (Call) exprNode() {}

func (c Call) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = text(a)
	}
	return fmt.Sprintf("%s.%s(%s)", text(c.Receiver), c.Method, strings.Join(args, ", "))
}

// Alias renames an operand, e.g. e.Name as DisplayName.
type Alias struct {
	X    Node
	Name string
}

func (Alias) exprNode() {}

func (a Alias) String() string { return fmt.Sprintf("%s as %s", text(a.X), a.Name) }

func text(n Node) string {
	if n == nil {
		return "<nil>"
	}
	return n.String()
}

// Unwrap strips Conversion layers and returns the innermost operand.
func Unwrap(n Node) Node {
	for {
		c, ok := n.(Conversion)
		if !ok {
			return n
		}
		n = c.X
	}
}
