package field

import (
	"iter"
	"maps"
	"reflect"
	"slices"

	"github.com/roach88/reqkey/internal/expr"
	"github.com/roach88/reqkey/internal/mapping"
	"github.com/roach88/reqkey/internal/reqerr"
)

// FromType yields one typed Field per exported member of t, in declared
// order. Embedded structs are flattened. Non-struct and empty struct types
// yield nothing. A nil lister uses mapping.DefaultLister.
func FromType(t reflect.Type, lister mapping.MemberLister) iter.Seq[Field] {
	if lister == nil {
		lister = mapping.DefaultLister
	}
	members := lister.Members(t)
	return func(yield func(Field) bool) {
		for _, m := range members {
			if !yield(build(m.Name, m.Type)) {
				return
			}
		}
	}
}

// FromTypeOf is FromType for T with the default lister.
func FromTypeOf[T any]() []Field {
	return slices.Collect(FromType(reflect.TypeFor[T](), nil))
}

// FromValue yields fields for the shape of v.
//
// For a struct (or pointer to one) this is FromType of its type. For a
// map with string keys each key becomes a field typed by its value's
// dynamic type, sorted by key. Other values are rejected.
func FromValue(v any, lister mapping.MemberLister) (iter.Seq[Field], error) {
	if v == nil {
		return nil, reqerr.InvalidArgument("cannot derive fields from nil")
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return FromType(rv.Type().Elem(), lister), nil
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Struct:
		return FromType(rv.Type(), lister), nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, reqerr.InvalidArgument("cannot derive fields from %s: keys must be strings", rv.Type())
		}
		return fromMap(rv)
	default:
		return nil, reqerr.InvalidArgument("cannot derive fields from %s", rv.Type())
	}
}

func fromMap(rv reflect.Value) (iter.Seq[Field], error) {
	typed := make(map[string]reflect.Type, rv.Len())
	it := rv.MapRange()
	for it.Next() {
		name := it.Key().String()
		if _, err := New(name); err != nil {
			return nil, err
		}
		var t reflect.Type
		if ev := it.Value(); ev.Kind() == reflect.Interface {
			if !ev.IsNil() {
				t = ev.Elem().Type()
			}
		} else {
			t = ev.Type()
		}
		typed[name] = t
	}
	names := slices.Sorted(maps.Keys(typed))
	return func(yield func(Field) bool) {
		for _, name := range names {
			f, _ := New(name, typed[name])
			if !yield(f) {
				return
			}
		}
	}, nil
}

// FromExpression resolves a member-access expression to one Field.
//
// Accepted shapes:
//
//	e.Age                 the member, typed by its declared type
//	int(e.Age)            a conversion wrapping a member
//	e.Name as Display     a renamed member, typed like the member
//	e.Age > 18            a comparison; the member operand names the field
//
// Anything else is an InvalidExpression error quoting the expression.
func FromExpression(n expr.Node) (Field, error) {
	switch x := expr.Unwrap(n).(type) {
	case expr.Member:
		return New(x.Name, x.Type)
	case expr.Alias:
		m, ok := expr.Unwrap(x.X).(expr.Member)
		if !ok {
			return Field{}, reqerr.InvalidExpression(n, "alias must rename a member")
		}
		return New(x.Name, m.Type)
	case expr.Comparison:
		if m, ok := expr.Unwrap(x.Left).(expr.Member); ok {
			return New(m.Name, m.Type)
		}
		if m, ok := expr.Unwrap(x.Right).(expr.Member); ok {
			return New(m.Name, m.Type)
		}
		return Field{}, reqerr.InvalidExpression(n, "comparison has no member operand")
	case nil:
		return Field{}, reqerr.InvalidExpression(n, "expression is nil")
	default:
		return Field{}, reqerr.InvalidExpression(n, "expected a member access, got %T", x)
	}
}

// FromExpressionSource parses src as an expression over t and resolves it
// with FromExpression. t may be nil, leaving the field untyped.
func FromExpressionSource(src string, t reflect.Type, lister mapping.MemberLister) (Field, error) {
	n, err := expr.Parse(src, expr.NewParam(t, lister))
	if err != nil {
		return Field{}, err
	}
	return FromExpression(n)
}

// FromExpressions resolves each expression in order.
func FromExpressions(nodes ...expr.Node) ([]Field, error) {
	if len(nodes) == 0 {
		return nil, reqerr.InvalidArgument("expressions must not be empty")
	}
	out := make([]Field, 0, len(nodes))
	for _, n := range nodes {
		f, err := FromExpression(n)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}
