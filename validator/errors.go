package validator

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrTypeMismatch is matched by *TypeError, returned in strict mode when a
// check meets a value of an incompatible type.
var ErrTypeMismatch = errors.New("validator: type mismatch")

// TypeError reports a structurally incompatible value met in strict mode.
type TypeError struct {
	Field    string
	Expected DataType
	Value    any
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("validator: field %q: expected %s, got %T", e.Field, e.Expected, e.Value)
}

func (e *TypeError) Unwrap() error {
	return ErrTypeMismatch
}

// Errors maps dotted field paths to messages. An empty map means the input
// is valid.
type Errors map[string]string

// Has reports whether the field has an error.
func (e Errors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

// Fields returns the failing field paths in sorted order.
func (e Errors) Fields() []string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// String renders the errors as "field: message" pairs in field order.
func (e Errors) String() string {
	parts := make([]string, 0, len(e))
	for _, f := range e.Fields() {
		parts = append(parts, f+": "+e[f])
	}
	return strings.Join(parts, "; ")
}
