/*
Package validator checks decoded request fields against declarative rules.

Rules are built per field and grouped in a Rules map:

	rules := validator.Rules{
	    "email": validator.Field().Required().Email(),
	    "address": validator.Field().Required().Children(validator.Rules{
	        "city": validator.Field().Required().Type(validator.String),
	    }),
	    "tags": validator.Field().Nullable().Each(validator.Field().MinLength(2)),
	}

	errs, err := validator.New(validator.DefaultConfig()).Validate(fields, rules)

Checks of a field run in a fixed order: nullable, required, type, length,
number, format (email, URL, date), membership, nested map or list, pattern
and callback. A field stops at its first failing check, so every failing
field reports exactly one message. Nested failures are keyed with dots:
"address.city", "tags.0".

Type safety decides what happens when a check meets a value of the wrong
type, such as Min on a string. With TypeSafety set the field gets an error
message; without it Validate returns a *TypeError and no field errors.
*/
package validator
