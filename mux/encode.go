package mux

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"
)

var timeType = reflect.TypeOf(time.Time{})

// encodeJSON marshals v. Values encoding/json rejects (channels, functions,
// complex numbers, NaN and infinities) are written as their fmt.Sprint form
// instead of failing the whole response.
func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(v); err != nil {
		var typeErr *json.UnsupportedTypeError
		var valueErr *json.UnsupportedValueError
		if !errors.As(err, &typeErr) && !errors.As(err, &valueErr) {
			return nil, err
		}

		buf.Reset()
		if err := enc.Encode(sanitize(reflect.ValueOf(v), 0)); err != nil {
			return nil, err
		}
	}

	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

const maxSanitizeDepth = 64

// sanitize converts v into a tree of JSON-safe values.
func sanitize(v reflect.Value, depth int) any {
	if !v.IsValid() {
		return nil
	}
	if depth > maxSanitizeDepth {
		return fmt.Sprint(v.Interface())
	}

	if (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) && v.IsNil() {
		return nil
	}
	if v.Type() == timeType {
		return v.Interface().(time.Time).Format(time.RFC3339Nano)
	}
	if v.CanInterface() {
		if m, ok := v.Interface().(json.Marshaler); ok {
			if b, err := m.MarshalJSON(); err == nil {
				return json.RawMessage(b)
			}
		}
	}

	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		return sanitize(v.Elem(), depth+1)

	case reflect.Float32, reflect.Float64:
		f := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Sprint(f)
		}
		return f

	case reflect.Complex64, reflect.Complex128, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return fmt.Sprint(v.Interface())

	case reflect.Map:
		if v.IsNil() {
			return nil
		}
		out := make(map[string]any, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out[fmt.Sprint(iter.Key().Interface())] = sanitize(iter.Value(), depth+1)
		}
		return out

	case reflect.Slice:
		if v.IsNil() {
			return nil
		}
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return v.Interface()
		}
		fallthrough
	case reflect.Array:
		out := make([]any, v.Len())
		for i := range out {
			out[i] = sanitize(v.Index(i), depth+1)
		}
		return out

	case reflect.Struct:
		return sanitizeStruct(v, depth)

	default:
		if v.CanInterface() {
			return v.Interface()
		}
		return fmt.Sprint(v)
	}
}

// sanitizeStruct maps exported fields by their json names.
func sanitizeStruct(v reflect.Value, depth int) map[string]any {
	t := v.Type()
	out := make(map[string]any, t.NumField())

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}

		name := f.Name
		tag := f.Tag.Get("json")
		if tag == "-" {
			continue
		}
		if n, _, _ := strings.Cut(tag, ","); n != "" {
			name = n
		}

		out[name] = sanitize(v.Field(i), depth+1)
	}
	return out
}
