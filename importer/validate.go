package importer

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var fieldValidator = validator.New()

// FieldError is one rule violation on one column.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return e.Message
}

// Values holds the typed, validated column values of one row.
type Values struct {
	strings map[string]string
	lists   map[string][]string
	dates   map[string]*time.Time
}

func newValues(size int) Values {
	return Values{
		strings: make(map[string]string, size),
		lists:   make(map[string][]string),
		dates:   make(map[string]*time.Time),
	}
}

func (v Values) String(name string) string {
	return v.strings[name]
}

// List never returns nil.
func (v Values) List(name string) []string {
	if list, ok := v.lists[name]; ok && list != nil {
		return list
	}
	return []string{}
}

// Date returns nil when the column was empty.
func (v Values) Date(name string) *time.Time {
	return v.dates[name]
}

// Validate applies every rule of schema to row and collects all violations.
// The values are only meaningful when no violations are returned.
func Validate(schema Schema, row Row) (Values, []FieldError) {
	values := newValues(len(schema.Fields))
	var violations []FieldError

	for _, rule := range schema.Fields {
		raw, _ := row.Get(rule.Name)
		value := strings.TrimSpace(raw)

		if value == "" {
			if rule.Required {
				violations = append(violations, FieldError{
					Field:   rule.Name,
					Message: fmt.Sprintf("%q is required.", rule.Name),
				})
				continue
			}
			switch rule.Kind {
			case FieldList:
				values.lists[rule.Name] = []string{}
			case FieldDate:
				values.dates[rule.Name] = nil
			default:
				values.strings[rule.Name] = ""
			}
			continue
		}

		if violation, ok := applyRule(rule, value, values); !ok {
			violations = append(violations, violation)
		}
	}

	return values, violations
}

func applyRule(rule FieldRule, value string, values Values) (FieldError, bool) {
	switch rule.Kind {
	case FieldEnum:
		for _, allowed := range rule.EnumValues {
			if value == allowed {
				values.strings[rule.Name] = value
				return FieldError{}, true
			}
		}
		return FieldError{
			Field:   rule.Name,
			Message: fmt.Sprintf("%q must be one of: %s.", rule.Name, strings.Join(rule.EnumValues, ", ")),
		}, false
	case FieldEmail:
		if fieldValidator.Var(value, "email") != nil {
			return FieldError{Field: rule.Name, Message: fmt.Sprintf("%q must be a valid email address.", rule.Name)}, false
		}
		values.strings[rule.Name] = value
	case FieldURL:
		if fieldValidator.Var(value, "url") != nil {
			return FieldError{Field: rule.Name, Message: fmt.Sprintf("%q must be a valid URL.", rule.Name)}, false
		}
		values.strings[rule.Name] = value
	case FieldList:
		values.lists[rule.Name] = splitList(value, rule.delimiter())
	case FieldDate:
		parsed, err := parseDate(value)
		if err != nil {
			return FieldError{Field: rule.Name, Message: fmt.Sprintf("%q must be a date in YYYY-MM-DD format.", rule.Name)}, false
		}
		values.dates[rule.Name] = &parsed
	default:
		values.strings[rule.Name] = value
	}
	return FieldError{}, true
}

// joinViolations renders the row-level message for a set of violations.
func joinViolations(violations []FieldError) string {
	messages := make([]string, len(violations))
	for i, violation := range violations {
		messages[i] = violation.Message
	}
	return strings.Join(messages, "; ")
}
