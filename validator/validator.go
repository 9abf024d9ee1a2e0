package validator

import (
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Config holds the process-wide validator defaults.
type Config struct {
	// TypeSafety turns structurally incompatible values into field errors.
	// When false, Validate stops with a *TypeError instead.
	TypeSafety bool `env:"KESTREL_TYPE_SAFETY" envDefault:"true"`
}

// DefaultConfig returns the configuration used by the zero Validator.
func DefaultConfig() Config {
	return Config{TypeSafety: true}
}

// Validator evaluates Rules against decoded field maps. It holds no per-call
// state and is safe for concurrent use.
type Validator struct {
	cfg Config
}

// New returns a validator with the given defaults.
func New(cfg Config) *Validator {
	return &Validator{cfg: cfg}
}

// Config returns the defaults the validator was built with.
func (v *Validator) Config() Config {
	return v.cfg
}

// CallOption overrides the validator defaults for one Validate call.
type CallOption func(*Config)

// WithTypeSafety overrides Config.TypeSafety for one call.
func WithTypeSafety(enabled bool) CallOption {
	return func(c *Config) { c.TypeSafety = enabled }
}

// Validate checks fields against rules and returns one message per failing
// field. Each field stops at its first failing check; every field is
// checked. The error is non-nil only in strict mode, when a check meets a
// value of an incompatible type.
func (v *Validator) Validate(fields map[string]any, rules Rules, opts ...CallOption) (Errors, error) {
	cfg := v.cfg
	for _, opt := range opts {
		opt(&cfg)
	}

	e := &evaluator{cfg: cfg}
	errs := make(Errors)
	if err := e.validate("", fields, rules, errs); err != nil {
		return nil, err
	}
	return errs, nil
}

// Validate runs rules with the default configuration.
func Validate(fields map[string]any, rules Rules, opts ...CallOption) (Errors, error) {
	return New(DefaultConfig()).Validate(fields, rules, opts...)
}

type evaluator struct {
	cfg Config
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

func (e *evaluator) validate(prefix string, fields map[string]any, rules Rules, errs Errors) error {
	names := make([]string, 0, len(rules))
	for name := range rules {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		rule := rules[name]
		if rule == nil {
			continue
		}
		if err := e.field(joinKey(prefix, name), fields[name], fields, rule, errs); err != nil {
			return err
		}
	}
	return nil
}

// mismatch records msg for key in type-safe mode and returns a *TypeError in
// strict mode. Absent values always produce a field error.
func (e *evaluator) mismatch(key string, value any, expected DataType, msg string, errs Errors) error {
	if value != nil && !e.cfg.TypeSafety {
		return &TypeError{Field: key, Expected: expected, Value: value}
	}
	errs[key] = msg
	return nil
}

// field evaluates one rule. The first failing check records its message and
// ends evaluation of the field.
func (e *evaluator) field(key string, value any, fields map[string]any, r *Rule, errs Errors) error {
	absent := value == nil

	if r.nullable && absent {
		return nil
	}

	if c := r.required; c != nil {
		if absent {
			errs[key] = c.msg
			return nil
		}
		if s, ok := value.(string); ok && c.notBlank && strings.TrimSpace(s) == "" {
			errs[key] = c.msg
			return nil
		}
	}

	if c := r.dataType; c != nil && !isType(value, c.typ) {
		errs[key] = c.msg
		return nil
	}

	if failed := e.lengths(key, value, r, errs); failed {
		return nil
	}

	if failed, err := e.numbers(key, value, r, errs); failed || err != nil {
		return err
	}

	if failed, err := e.formats(key, value, r, errs); failed || err != nil {
		return err
	}

	if c := r.in; c != nil && !contains(c.values, value) {
		errs[key] = c.msg
		return nil
	}
	if c := r.notIn; c != nil && contains(c.values, value) {
		errs[key] = c.msg
		return nil
	}

	if failed, err := e.nested(key, value, r, errs); failed || err != nil {
		return err
	}

	if c := r.pattern; c != nil {
		s, ok := value.(string)
		if !ok {
			return e.mismatch(key, value, String, c.msg, errs)
		}
		if !c.re.MatchString(s) {
			errs[key] = c.msg
			return nil
		}
	}

	if c := r.callback; c != nil && !c.fn(value, fields) {
		errs[key] = c.msg
	}

	return nil
}

func (e *evaluator) lengths(key string, value any, r *Rule, errs Errors) bool {
	if r.minLength == nil && r.maxLength == nil && r.exactLength == nil {
		return false
	}

	n := utf8.RuneCountInString(stringOf(value))

	switch {
	case r.minLength != nil && n < r.minLength.n:
		errs[key] = r.minLength.msg
	case r.maxLength != nil && n > r.maxLength.n:
		errs[key] = r.maxLength.msg
	case r.exactLength != nil && n != r.exactLength.n:
		errs[key] = r.exactLength.msg
	default:
		return false
	}
	return true
}

func (e *evaluator) numbers(key string, value any, r *Rule, errs Errors) (bool, error) {
	checks := []struct {
		c    *numberCheck
		fail func(v, n float64) bool
	}{
		{r.minNumber, func(v, n float64) bool { return v < n }},
		{r.maxNumber, func(v, n float64) bool { return v > n }},
		{r.exactNumber, func(v, n float64) bool { return v != n }},
	}

	for _, check := range checks {
		if check.c == nil {
			continue
		}

		f, ok := toFloat(value)
		if !ok {
			return true, e.mismatch(key, value, Number, typeMessage(Number), errs)
		}
		if check.fail(f, check.c.n) {
			errs[key] = check.c.msg
			return true, nil
		}
	}
	return false, nil
}

func (e *evaluator) formats(key string, value any, r *Rule, errs Errors) (bool, error) {
	type check struct {
		msg   string
		valid func(string) bool
	}

	var checks []check
	if r.email != nil {
		checks = append(checks, check{r.email.msg, isEmail})
	}
	if r.url != nil {
		checks = append(checks, check{r.url.msg, isURL})
	}
	if r.date != nil {
		format := r.date.format
		checks = append(checks, check{r.date.msg, func(s string) bool { return isDate(s, format) }})
	}

	for _, c := range checks {
		s, ok := value.(string)
		if !ok {
			return true, e.mismatch(key, value, String, c.msg, errs)
		}
		if !c.valid(s) {
			errs[key] = c.msg
			return true, nil
		}
	}
	return false, nil
}

// nested validates Children and list rules. Every failing nested field is
// merged into errs under the composed key.
func (e *evaluator) nested(key string, value any, r *Rule, errs Errors) (bool, error) {
	if c := r.children; c != nil {
		m, ok := toMap(value)
		if !ok {
			return true, e.mismatch(key, value, Map, c.msg, errs)
		}
		return e.merge(key, m, c.rules, errs)
	}

	if c := r.elements; c != nil {
		l, ok := toList(value)
		if !ok {
			return true, e.mismatch(key, value, List, c.msg, errs)
		}

		items := make(map[string]any, len(l))
		for i, item := range l {
			items[strconv.Itoa(i)] = item
		}

		rules := make(Rules)
		if c.each != nil {
			for i := range l {
				rules[strconv.Itoa(i)] = c.each
			}
		} else {
			for i, rule := range c.rules {
				rules[strconv.Itoa(i)] = rule
			}
		}
		return e.merge(key, items, rules, errs)
	}

	return false, nil
}

func (e *evaluator) merge(key string, fields map[string]any, rules Rules, errs Errors) (bool, error) {
	sub := make(Errors)
	if err := e.validate(key, fields, rules, sub); err != nil {
		return true, err
	}
	for k, msg := range sub {
		errs[k] = msg
	}
	return len(sub) > 0, nil
}

func contains(values []any, value any) bool {
	for _, v := range values {
		if equalValues(v, value) {
			return true
		}
	}
	return false
}
