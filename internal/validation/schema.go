// Package validation holds declarative field rules for edit forms.
//
// A Schema is a static table of rules keyed by wire field name. Values reach
// the schema as text, so every field can be checked the same way regardless
// of the draft's Go type.
package validation

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Errors maps a field name to a single human-readable message
type Errors map[string]string

// Error implements error with fields in a stable order
func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, e[f]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Fields returns the field names carrying an error, sorted
func (e Errors) Fields() []string {
	out := make([]string, 0, len(e))
	for f := range e {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Check inspects a value and returns a message, or "" when it passes
type Check func(value string) string

// Rule binds checks to one field. Checks run in order and the first
// failure is the field's message.
type Rule struct {
	Field  string
	Checks []Check
}

// Schema is an ordered rule table
type Schema []Rule

// Validate checks every rule against values. All fields are checked; the
// result is nil when nothing failed.
func (s Schema) Validate(values map[string]string) Errors {
	var errs Errors
	for _, rule := range s {
		v := values[rule.Field]
		for _, check := range rule.Checks {
			if msg := check(v); msg != "" {
				if errs == nil {
					errs = Errors{}
				}
				errs[rule.Field] = msg
				break
			}
		}
	}
	return errs
}

var decimalPattern = regexp.MustCompile(`^\d+(\.\d+)?$`)

// Length requires a rune count within [min, max]
func Length(min, max int) Check {
	return func(v string) string {
		n := utf8.RuneCountInString(v)
		if n < min {
			return fmt.Sprintf("String must contain at least %d character(s)", min)
		}
		if n > max {
			return fmt.Sprintf("String must contain at most %d character(s)", max)
		}
		return ""
	}
}

// Pattern requires a regular expression match
func Pattern(re *regexp.Regexp, msg string) Check {
	return func(v string) string {
		if !re.MatchString(v) {
			return msg
		}
		return ""
	}
}

// Decimal requires an unsigned decimal with an optional fractional part.
// The text is matched, not parsed, so "27.00" stays "27.00".
func Decimal(field string) Check {
	return Pattern(decimalPattern, "Invalid decimal format for "+field)
}

// IsDecimal reports whether v is an unsigned decimal string
func IsDecimal(v string) bool {
	return decimalPattern.MatchString(v)
}

// Integer requires a base-10 integer
func Integer() Check {
	return func(v string) string {
		if _, err := strconv.Atoi(v); err != nil {
			return "Expected number, received nan"
		}
		return ""
	}
}

// Min requires an integer no smaller than n. Non-integers pass; pair with
// Integer.
func Min(n int) Check {
	return func(v string) string {
		i, err := strconv.Atoi(v)
		if err != nil {
			return ""
		}
		if i < n {
			return fmt.Sprintf("Number must be greater than or equal to %d", n)
		}
		return ""
	}
}

// Max requires an integer no larger than n. Non-integers pass; pair with
// Integer.
func Max(n int) Check {
	return func(v string) string {
		i, err := strconv.Atoi(v)
		if err != nil {
			return ""
		}
		if i > n {
			return fmt.Sprintf("Number must be less than or equal to %d", n)
		}
		return ""
	}
}

// Required rejects empty values
func Required() Check {
	return func(v string) string {
		if strings.TrimSpace(v) == "" {
			return "Required"
		}
		return ""
	}
}

// Date requires a YYYY-MM-DD calendar date
func Date() Check {
	return func(v string) string {
		if _, err := time.Parse(time.DateOnly, v); err != nil {
			return "Invalid date"
		}
		return ""
	}
}

// UUID requires a non-nil UUID
func UUID() Check {
	return func(v string) string {
		id, err := uuid.Parse(v)
		if err != nil || id == uuid.Nil {
			return "Invalid uuid"
		}
		return ""
	}
}
