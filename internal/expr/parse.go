package expr

import (
	"reflect"
	"strconv"
	"strings"

	"cuelang.org/go/cue/ast"
	"cuelang.org/go/cue/format"
	"cuelang.org/go/cue/literal"
	"cuelang.org/go/cue/parser"
	"cuelang.org/go/cue/token"

	"github.com/roach88/reqkey/internal/reqerr"
)

// source adapts raw expression text to fmt.Stringer for error reporting.
type source string

func (s source) String() string { return string(s) }

// conversions maps CUE conversion builtins to Go types.
var conversions = map[string]reflect.Type{
	"int":    reflect.TypeFor[int64](),
	"float":  reflect.TypeFor[float64](),
	"number": reflect.TypeFor[float64](),
	"string": reflect.TypeFor[string](),
	"bool":   reflect.TypeFor[bool](),
}

// packageCalls maps package-qualified CUE builtins to Call methods.
var packageCalls = map[string]map[string]string{
	"strings": {
		"Contains":  MethodContains,
		"HasPrefix": MethodStartsWith,
		"HasSuffix": MethodEndsWith,
	},
	"list": {
		"Contains": MethodContains,
	},
}

var methods = map[string]bool{
	MethodContains:   true,
	MethodStartsWith: true,
	MethodEndsWith:   true,
}

// Parse reads a CUE-syntax expression and converts it into a Node tree.
//
// Supported syntax:
//
//	e.Age, Age                     member access
//	18, -1.5, "a", true, null      literals
//	[1, 2, 3]                      list literals
//	== != < <= > >=                comparisons
//	&& || !                        logic (chains flatten into one Logical)
//	int(e.Age), string(e.Code)     conversions
//	strings.Contains(e.Name, "a")  substring, also HasPrefix / HasSuffix
//	list.Contains([1, 2], e.Id)    membership
//	e.Name.StartsWith("a")         method-call form of the above
//
// Members are resolved against p; p may be nil for untyped members.
func Parse(src string, p *Param) (Node, error) {
	if strings.TrimSpace(src) == "" {
		return nil, reqerr.InvalidExpression(source(src), "empty expression")
	}
	x, err := parser.ParseExpr("expression", src)
	if err != nil {
		return nil, &reqerr.Error{
			Code:    reqerr.CodeInvalidExpression,
			Message: "syntax error",
			Expr:    src,
			Err:     err,
		}
	}
	c := &converter{param: p}
	return c.convert(x)
}

// MustParse is like Parse but panics on error.
// Use only in tests or when the source is known to be valid.
func MustParse(src string, p *Param) Node {
	n, err := Parse(src, p)
	if err != nil {
		panic(err)
	}
	return n
}

// converter maps CUE AST nodes onto Node variants.
type converter struct {
	param *Param
}

func (c *converter) convert(x ast.Expr) (Node, error) {
	switch n := x.(type) {
	case *ast.ParenExpr:
		return c.convert(n.X)
	case *ast.BasicLit:
		return c.literal(n)
	case *ast.Ident:
		switch n.Name {
		case "true":
			return Const{Value: true}, nil
		case "false":
			return Const{Value: false}, nil
		case "null":
			return Const{Value: nil}, nil
		}
		return c.member(n.Name)
	case *ast.SelectorExpr:
		return c.selector(n)
	case *ast.ListLit:
		return c.list(n)
	case *ast.UnaryExpr:
		return c.unary(n)
	case *ast.BinaryExpr:
		return c.binary(n)
	case *ast.CallExpr:
		return c.call(n)
	default:
		return nil, reqerr.UnsupportedExpression(nodeText(x), "unsupported syntax %T", x)
	}
}

func (c *converter) literal(lit *ast.BasicLit) (Node, error) {
	switch lit.Kind {
	case token.INT:
		n, err := strconv.ParseInt(lit.Value, 0, 64)
		if err != nil {
			return nil, reqerr.InvalidExpression(source(lit.Value), "invalid integer literal: %v", err)
		}
		return Const{Value: n}, nil
	case token.FLOAT:
		f, err := strconv.ParseFloat(strings.ReplaceAll(lit.Value, "_", ""), 64)
		if err != nil {
			return nil, reqerr.InvalidExpression(source(lit.Value), "invalid float literal: %v", err)
		}
		return Const{Value: f}, nil
	case token.STRING:
		s, err := literal.Unquote(lit.Value)
		if err != nil {
			return nil, reqerr.InvalidExpression(source(lit.Value), "invalid string literal: %v", err)
		}
		return Const{Value: s}, nil
	case token.TRUE:
		return Const{Value: true}, nil
	case token.FALSE:
		return Const{Value: false}, nil
	case token.NULL:
		return Const{Value: nil}, nil
	default:
		return nil, reqerr.UnsupportedExpression(source(lit.Value), "unsupported literal kind %s", lit.Kind)
	}
}

func (c *converter) selector(sel *ast.SelectorExpr) (Node, error) {
	if _, ok := sel.X.(*ast.Ident); !ok {
		return nil, reqerr.InvalidExpression(nodeText(sel), "only direct members of the parameter are supported")
	}
	name, _, err := ast.LabelName(sel.Sel)
	if err != nil {
		return nil, reqerr.InvalidExpression(nodeText(sel), "invalid member name: %v", err)
	}
	return c.member(name)
}

func (c *converter) member(name string) (Node, error) {
	m, err := c.param.Member(name)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (c *converter) list(l *ast.ListLit) (Node, error) {
	values := make([]any, 0, len(l.Elts))
	for _, elt := range l.Elts {
		n, err := c.convert(elt)
		if err != nil {
			return nil, err
		}
		k, ok := n.(Const)
		if !ok {
			return nil, reqerr.UnsupportedExpression(nodeText(l), "list elements must be literals")
		}
		if _, nested := k.Value.([]any); nested {
			return nil, reqerr.UnsupportedExpression(nodeText(l), "nested lists are not supported")
		}
		values = append(values, k.Value)
	}
	return Const{Value: values}, nil
}

func (c *converter) unary(u *ast.UnaryExpr) (Node, error) {
	x, err := c.convert(u.X)
	if err != nil {
		return nil, err
	}
	switch u.Op {
	case token.NOT:
		return Not{X: x}, nil
	case token.ADD, token.SUB:
		k, ok := x.(Const)
		if !ok {
			return nil, reqerr.UnsupportedExpression(nodeText(u), "sign applies to numeric literals only")
		}
		switch v := k.Value.(type) {
		case int64:
			if u.Op == token.SUB {
				v = -v
			}
			return Const{Value: v}, nil
		case float64:
			if u.Op == token.SUB {
				v = -v
			}
			return Const{Value: v}, nil
		}
		return nil, reqerr.UnsupportedExpression(nodeText(u), "sign applies to numeric literals only")
	default:
		return nil, reqerr.UnsupportedExpression(nodeText(u), "unsupported unary operator %s", u.Op)
	}
}

var compareTokens = map[token.Token]CompareOp{
	token.EQL: OpEq,
	token.NEQ: OpNe,
	token.LSS: OpLt,
	token.LEQ: OpLe,
	token.GTR: OpGt,
	token.GEQ: OpGe,
}

func (c *converter) binary(b *ast.BinaryExpr) (Node, error) {
	var logical LogicalOp
	switch b.Op {
	case token.LAND:
		logical = OpAnd
	case token.LOR:
		logical = OpOr
	}

	op, isCompare := compareTokens[b.Op]
	if logical == 0 && !isCompare {
		return nil, reqerr.UnsupportedExpression(nodeText(b), "unsupported binary operator %s", b.Op)
	}

	left, err := c.convert(b.X)
	if err != nil {
		return nil, err
	}
	right, err := c.convert(b.Y)
	if err != nil {
		return nil, err
	}

	if isCompare {
		return Comparison{Op: op, Left: left, Right: right}, nil
	}

	// a && b && c parses left-nested; flatten same-operator chains.
	var children []Node
	for _, n := range []Node{left, right} {
		if l, ok := n.(Logical); ok && l.Op == logical {
			children = append(children, l.Children...)
			continue
		}
		children = append(children, n)
	}
	return Logical{Op: logical, Children: children}, nil
}

func (c *converter) call(call *ast.CallExpr) (Node, error) {
	switch fn := call.Fun.(type) {
	case *ast.Ident:
		t, ok := conversions[fn.Name]
		if !ok || len(call.Args) != 1 {
			return nil, reqerr.UnsupportedExpression(nodeText(call), "unsupported function %s", fn.Name)
		}
		x, err := c.convert(call.Args[0])
		if err != nil {
			return nil, err
		}
		return Conversion{X: x, Type: t}, nil

	case *ast.SelectorExpr:
		name, _, err := ast.LabelName(fn.Sel)
		if err != nil {
			return nil, reqerr.UnsupportedExpression(nodeText(call), "invalid function name: %v", err)
		}
		if pkg, ok := fn.X.(*ast.Ident); ok {
			if fns, isPkg := packageCalls[pkg.Name]; isPkg {
				method, known := fns[name]
				if !known || len(call.Args) != 2 {
					return nil, reqerr.UnsupportedExpression(nodeText(call), "unsupported function %s.%s", pkg.Name, name)
				}
				return c.methodCall(method, call.Args[0], call.Args[1:])
			}
		}
		if !methods[name] {
			return nil, reqerr.UnsupportedExpression(nodeText(call), "unsupported method %s", name)
		}
		return c.methodCall(name, fn.X, call.Args)

	default:
		return nil, reqerr.UnsupportedExpression(nodeText(call), "unsupported call shape")
	}
}

func (c *converter) methodCall(method string, receiver ast.Expr, args []ast.Expr) (Node, error) {
	recv, err := c.convert(receiver)
	if err != nil {
		return nil, err
	}
	out := Call{Method: method, Receiver: recv, Args: make([]Node, 0, len(args))}
	for _, a := range args {
		n, err := c.convert(a)
		if err != nil {
			return nil, err
		}
		out.Args = append(out.Args, n)
	}
	return out, nil
}

// nodeText renders a CUE node back to source for diagnostics.
func nodeText(n ast.Node) source {
	b, err := format.Node(n)
	if err != nil {
		return source("<unprintable expression>")
	}
	return source(strings.TrimSpace(string(b)))
}
