package ir

import (
	"database/sql/driver"
	"fmt"
	"math"
	"reflect"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// FromGo converts a Go value into a Value. Strings are stored in NFC, the
// same form the canonical encoding hashes.
//
// Supported inputs: nil, Value, strings, booleans, every integer and float
// kind (including named types), uuid.UUID, time.Time, driver.Valuer, pointers
// to any of these, and slices or arrays of them (except []byte).
func FromGo(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return normalize(val), nil
	case string:
		return String(norm.NFC.String(val)), nil
	case bool:
		return Bool(val), nil
	case int:
		return Int(val), nil
	case int64:
		return Int(val), nil
	case float64:
		return fromFloat(val)
	case uuid.UUID:
		return String(val.String()), nil
	case time.Time:
		return String(val.UTC().Format(time.RFC3339Nano)), nil
	case []byte:
		return nil, fmt.Errorf("unsupported value type: %T", v)
	case driver.Valuer:
		dv, err := val.Value()
		if err != nil {
			return nil, fmt.Errorf("driver value: %w", err)
		}
		if dv == nil {
			return Null{}, nil
		}
		if _, again := dv.(driver.Valuer); again {
			return nil, fmt.Errorf("unsupported value type: %T", dv)
		}
		return FromGo(dv)
	}
	return fromReflect(reflect.ValueOf(v))
}

func fromReflect(rv reflect.Value) (Value, error) {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null{}, nil
		}
		return FromGo(rv.Elem().Interface())
	case reflect.String:
		return String(norm.NFC.String(rv.String())), nil
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return nil, fmt.Errorf("unsigned value %d overflows int64", u)
		}
		return Int(int64(u)), nil
	case reflect.Float32, reflect.Float64:
		return fromFloat(rv.Float())
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
			return nil, fmt.Errorf("unsupported value type: %s", rv.Type())
		}
		list := make(List, rv.Len())
		for i := range list {
			elem, err := FromGo(rv.Index(i).Interface())
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			if IsList(elem) {
				return nil, fmt.Errorf("[%d]: nested lists are not supported", i)
			}
			list[i] = elem
		}
		return list, nil
	default:
		return nil, fmt.Errorf("unsupported value type: %s", rv.Type())
	}
}

func fromFloat(f float64) (Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("non-finite float has no canonical form: %v", f)
	}
	return Float(f), nil
}

func normalize(v Value) Value {
	switch val := v.(type) {
	case String:
		return String(norm.NFC.String(string(val)))
	case List:
		out := make(List, len(val))
		for i, elem := range val {
			out[i] = normalize(elem)
		}
		return out
	}
	return v
}
