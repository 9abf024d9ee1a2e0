package validator

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// DataType is the structural type of a field value.
type DataType int

const (
	String DataType = iota + 1
	Number
	Boolean
	Map
	List
)

func (t DataType) String() string {
	switch t {
	case String:
		return "string"
	case Number:
		return "number"
	case Boolean:
		return "boolean"
	case Map:
		return "map"
	case List:
		return "list"
	default:
		return fmt.Sprintf("DataType(%d)", int(t))
	}
}

// isType reports whether v has the structural type t.
func isType(v any, t DataType) bool {
	switch t {
	case String:
		_, ok := v.(string)
		return ok
	case Number:
		_, ok := toFloat(v)
		return ok
	case Boolean:
		_, ok := v.(bool)
		return ok
	case Map:
		_, ok := toMap(v)
		return ok
	case List:
		_, ok := toList(v)
		return ok
	default:
		return false
	}
}

// toFloat converts any Go numeric value or json.Number. Numeric strings are
// not numbers.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// toMap accepts map[string]any as decoded from JSON, and any other map with
// string keys.
func toMap(v any) (map[string]any, bool) {
	if m, ok := v.(map[string]any); ok {
		return m, true
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}

	m := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		m[iter.Key().String()] = iter.Value().Interface()
	}
	return m, true
}

// toList accepts []any as decoded from JSON, and any other slice or array
// except byte slices.
func toList(v any) ([]any, bool) {
	if l, ok := v.([]any); ok {
		return l, true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return nil, false
		}
	default:
		return nil, false
	}

	l := make([]any, rv.Len())
	for i := range l {
		l[i] = rv.Index(i).Interface()
	}
	return l, true
}

// stringOf returns the string form used by length checks.
func stringOf(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(v)
	}
}

// equalValues compares two values; numbers compare by value regardless of
// their Go type.
func equalValues(a, b any) bool {
	fa, okA := toFloat(a)
	fb, okB := toFloat(b)
	if okA && okB {
		return fa == fb
	}
	return reflect.DeepEqual(a, b)
}
