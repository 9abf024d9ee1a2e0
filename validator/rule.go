package validator

import (
	"fmt"
	"regexp"
)

// DateFormat selects the layout accepted by Rule.Date.
type DateFormat int

const (
	// DateOnly accepts YYYY-MM-DD.
	DateOnly DateFormat = iota + 1
	// TimeOnly accepts HH:MM:SS with an optional fraction of up to six digits.
	TimeOnly
	// DateTime accepts a date and a time separated by a single space.
	DateTime
)

// Predicate is a caller supplied check. It receives the field value and the
// full field map the value belongs to.
type Predicate func(value any, fields map[string]any) bool

// Rules maps field names to their rules.
type Rules map[string]*Rule

type requiredCheck struct {
	notBlank bool
	msg      string
}

type typeCheck struct {
	typ DataType
	msg string
}

type lengthCheck struct {
	n   int
	msg string
}

type numberCheck struct {
	n   float64
	msg string
}

type formatCheck struct {
	msg string
}

type dateCheck struct {
	format DateFormat
	msg    string
}

type setCheck struct {
	values []any
	msg    string
}

type patternCheck struct {
	re  *regexp.Regexp
	msg string
}

type callbackCheck struct {
	fn  Predicate
	msg string
}

type mapCheck struct {
	rules Rules
	msg   string
}

type listCheck struct {
	rules []*Rule
	each  *Rule
	msg   string
}

// Rule is the set of constraints for one field. Build it with Field and the
// chained methods; every method accepts an optional message overriding the
// default one.
//
//	rules := validator.Rules{
//	    "email": validator.Field().Required().Email(),
//	    "age":   validator.Field().Nullable().Type(validator.Number).Min(18),
//	}
type Rule struct {
	nullable    bool
	required    *requiredCheck
	dataType    *typeCheck
	minLength   *lengthCheck
	maxLength   *lengthCheck
	exactLength *lengthCheck
	minNumber   *numberCheck
	maxNumber   *numberCheck
	exactNumber *numberCheck
	email       *formatCheck
	url         *formatCheck
	date        *dateCheck
	in          *setCheck
	notIn       *setCheck
	children    *mapCheck
	elements    *listCheck
	pattern     *patternCheck
	callback    *callbackCheck
}

// Field starts an empty rule.
func Field() *Rule {
	return &Rule{}
}

func message(msg []string, def string) string {
	if len(msg) > 0 && msg[0] != "" {
		return msg[0]
	}
	return def
}

// Nullable skips every other check when the value is absent.
func (r *Rule) Nullable() *Rule {
	r.nullable = true
	return r
}

// Required fails when the value is absent.
func (r *Rule) Required(msg ...string) *Rule {
	r.required = &requiredCheck{msg: message(msg, "This field is required")}
	return r
}

// NotBlank is Required that also rejects empty and whitespace-only strings.
func (r *Rule) NotBlank(msg ...string) *Rule {
	r.required = &requiredCheck{notBlank: true, msg: message(msg, "This field is required")}
	return r
}

// Type requires the value to have the given structural type.
func (r *Rule) Type(t DataType, msg ...string) *Rule {
	r.dataType = &typeCheck{typ: t, msg: message(msg, typeMessage(t))}
	return r
}

// MinLength requires the string form of the value to have at least n
// characters.
func (r *Rule) MinLength(n int, msg ...string) *Rule {
	r.minLength = &lengthCheck{n: n, msg: message(msg, fmt.Sprintf("Must be at least %d characters long", n))}
	return r
}

// MaxLength requires the string form of the value to have at most n
// characters.
func (r *Rule) MaxLength(n int, msg ...string) *Rule {
	r.maxLength = &lengthCheck{n: n, msg: message(msg, fmt.Sprintf("Must be at most %d characters long", n))}
	return r
}

// ExactLength requires the string form of the value to have exactly n
// characters.
func (r *Rule) ExactLength(n int, msg ...string) *Rule {
	r.exactLength = &lengthCheck{n: n, msg: message(msg, fmt.Sprintf("Must be exactly %d characters long", n))}
	return r
}

// Min requires a number greater than or equal to n.
func (r *Rule) Min(n float64, msg ...string) *Rule {
	r.minNumber = &numberCheck{n: n, msg: message(msg, "Must be at least "+formatNumber(n))}
	return r
}

// Max requires a number less than or equal to n.
func (r *Rule) Max(n float64, msg ...string) *Rule {
	r.maxNumber = &numberCheck{n: n, msg: message(msg, "Must be at most "+formatNumber(n))}
	return r
}

// Exact requires a number equal to n.
func (r *Rule) Exact(n float64, msg ...string) *Rule {
	r.exactNumber = &numberCheck{n: n, msg: message(msg, "Must be exactly "+formatNumber(n))}
	return r
}

// Email requires a string shaped like an email address.
func (r *Rule) Email(msg ...string) *Rule {
	r.email = &formatCheck{msg: message(msg, "Invalid email format")}
	return r
}

// URL requires an absolute URL with a scheme and a host.
func (r *Rule) URL(msg ...string) *Rule {
	r.url = &formatCheck{msg: message(msg, "Invalid URL format")}
	return r
}

// Date requires a string in the given format.
func (r *Rule) Date(format DateFormat, msg ...string) *Rule {
	r.date = &dateCheck{format: format, msg: message(msg, "Invalid date format")}
	return r
}

// In requires the value to be one of values.
func (r *Rule) In(values []any, msg ...string) *Rule {
	r.in = &setCheck{values: values, msg: message(msg, "Must be one of: "+joinValues(values))}
	return r
}

// NotIn requires the value not to be one of values.
func (r *Rule) NotIn(values []any, msg ...string) *Rule {
	r.notIn = &setCheck{values: values, msg: message(msg, "Value is not allowed")}
	return r
}

// Children validates a map value against nested rules. Nested errors are
// reported as "field.child".
func (r *Rule) Children(rules Rules, msg ...string) *Rule {
	r.children = &mapCheck{rules: rules, msg: message(msg, typeMessage(Map))}
	return r
}

// Elements validates a list value positionally: rules[i] applies to
// element i. Errors are reported as "field.i".
func (r *Rule) Elements(rules []*Rule, msg ...string) *Rule {
	r.elements = &listCheck{rules: rules, msg: message(msg, typeMessage(List))}
	return r
}

// Each validates every element of a list value with the same rule.
func (r *Rule) Each(rule *Rule, msg ...string) *Rule {
	r.elements = &listCheck{each: rule, msg: message(msg, typeMessage(List))}
	return r
}

// Matches requires a string matching re.
func (r *Rule) Matches(re *regexp.Regexp, msg ...string) *Rule {
	r.pattern = &patternCheck{re: re, msg: message(msg, "Invalid format")}
	return r
}

// Func adds a caller supplied predicate reported with msg on failure. It
// panics when fn is nil or msg is empty, since the rule could never report
// a meaningful failure.
func (r *Rule) Func(fn Predicate, msg string) *Rule {
	if fn == nil {
		panic("validator: Func requires a predicate")
	}
	if msg == "" {
		panic("validator: Func requires a message")
	}
	r.callback = &callbackCheck{fn: fn, msg: msg}
	return r
}

func typeMessage(t DataType) string {
	switch t {
	case String:
		return "Must be a string"
	case Number:
		return "Must be a number"
	case Boolean:
		return "Must be a boolean"
	case Map:
		return "Must be an object"
	case List:
		return "Must be a list"
	default:
		return "Invalid type"
	}
}
