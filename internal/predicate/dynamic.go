package predicate

import (
	"maps"
	"reflect"
	"slices"

	"github.com/roach88/reqkey/internal/mapping"
	"github.com/roach88/reqkey/internal/reqerr"
)

// FromDynamic builds an AND group from a loose object.
//
// Accepted inputs:
//   - map[string]V: one predicate per key, in sorted key order
//   - a struct or pointer to one: one predicate per exported member, named
//     by lister (mapping.DefaultLister when nil)
//   - a Group, a Predicate, or a slice of Nodes or Predicates
//
// Each value goes through FromKeyValue, so nil becomes IsNull and an
// OpValue picks its own operator. Since group equality ignores child order,
// the result does not depend on enumeration order.
func FromDynamic(obj any, lister mapping.MemberLister) (Group, error) {
	switch v := obj.(type) {
	case nil:
		return Group{}, reqerr.InvalidArgument("dynamic filter must not be nil")
	case Group:
		if v.IsZero() {
			return Group{}, reqerr.InvalidArgument("dynamic filter group is empty")
		}
		return v, nil
	case Predicate:
		return And(v)
	case []Node:
		return And(v...)
	case []Predicate:
		nodes := make([]Node, len(v))
		for i, p := range v {
			nodes[i] = p
		}
		return And(nodes...)
	}

	rv := reflect.ValueOf(obj)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return Group{}, reqerr.InvalidArgument("dynamic filter must not be nil")
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		return fromMap(rv)
	case reflect.Struct:
		return fromStruct(rv, lister)
	default:
		return Group{}, reqerr.InvalidArgument("dynamic filter must be a map or struct, got %T", obj)
	}
}

func fromMap(rv reflect.Value) (Group, error) {
	if rv.Type().Key().Kind() != reflect.String {
		return Group{}, reqerr.InvalidArgument("dynamic filter keys must be strings, got %s", rv.Type().Key())
	}
	values := make(map[string]any, rv.Len())
	it := rv.MapRange()
	for it.Next() {
		values[it.Key().String()] = it.Value().Interface()
	}
	if len(values) == 0 {
		return Group{}, reqerr.InvalidArgument("dynamic filter has no entries")
	}
	children := make([]Node, 0, len(values))
	for _, name := range slices.Sorted(maps.Keys(values)) {
		p, err := FromKeyValue(name, values[name])
		if err != nil {
			return Group{}, err
		}
		children = append(children, p)
	}
	return And(children...)
}

func fromStruct(rv reflect.Value, lister mapping.MemberLister) (Group, error) {
	if lister == nil {
		lister = mapping.DefaultLister
	}
	members := lister.Members(rv.Type())
	if len(members) == 0 {
		return Group{}, reqerr.InvalidArgument("dynamic filter %s has no members", rv.Type())
	}
	children := make([]Node, 0, len(members))
	for _, m := range members {
		var value any
		// A nil embedded pointer leaves its members null.
		if fv, err := rv.FieldByIndexErr(m.Index); err == nil && fv.CanInterface() {
			value = fv.Interface()
		}
		p, err := FromKeyValue(m.Name, value)
		if err != nil {
			return Group{}, err
		}
		children = append(children, p)
	}
	return And(children...)
}
