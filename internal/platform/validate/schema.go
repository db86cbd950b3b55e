// Package validate provides explicit, per-endpoint schema checks over decoded JSON values.
// Each check records a human readable message on the failing field and keeps going, so a
// request reports every problem at once.
package validate

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/employee-tracker/internal/shared"
)

var tags = validator.New()

// DateTimeLayouts are accepted by DateTime, tried in order.
var DateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Schema accumulates field failures.
type Schema struct {
	errs *shared.ValidationError
}

// New returns an empty Schema.
func New() *Schema {
	return &Schema{errs: shared.NewValidationError()}
}

// Err returns the collected *shared.ValidationError or nil.
func (s *Schema) Err() error {
	return s.errs.OrNil()
}

// Failed reports whether field already failed a check.
func (s *Schema) Failed(field string) bool {
	return s.errs.Has(field)
}

// Fail records message on field.
func (s *Schema) Fail(field, message string) {
	s.errs.Add(field, message)
}

func label(field string) string {
	return strings.ReplaceAll(field, "_", " ")
}

func (s *Schema) failf(field, format string, args ...any) {
	s.Fail(field, fmt.Sprintf("The %s field "+format, append([]any{label(field)}, args...)...))
}

// String reads a string value. Absent and null values fail when required.
func (s *Schema) String(field string, raw any, required bool) (string, bool) {
	if raw == nil {
		if required {
			s.failf(field, "is required.")
		}
		return "", false
	}
	str, ok := raw.(string)
	if !ok {
		s.failf(field, "must be a string.")
		return "", false
	}
	if str == "" {
		if required {
			s.failf(field, "is required.")
		}
		return "", false
	}
	return str, true
}

// MaxLen checks value has at most max characters.
func (s *Schema) MaxLen(field, value string, max int) {
	if tags.Var(value, "max="+strconv.Itoa(max)) != nil {
		s.failf(field, "must not be greater than %d characters.", max)
	}
}

// MinLen checks value has at least min characters.
func (s *Schema) MinLen(field, value string, min int) {
	if tags.Var(value, "min="+strconv.Itoa(min)) != nil {
		s.failf(field, "must be at least %d characters.", min)
	}
}

// MaxBytes checks the encoded length of value, for limits that count bytes
// rather than characters.
func (s *Schema) MaxBytes(field, value string, max int) {
	if len(value) > max {
		s.failf(field, "must not be greater than %d bytes.", max)
	}
}

// Email checks value is a syntactically valid address.
func (s *Schema) Email(field, value string) {
	if tags.Var(value, "email") != nil {
		s.failf(field, "must be a valid email address.")
	}
}

// Confirmed checks the companion "<field>_confirmation" value equals value.
func (s *Schema) Confirmed(field, value string, confirmation any) {
	other, _ := confirmation.(string)
	if other != value {
		s.failf(field, "confirmation does not match.")
	}
}

// Number reads a JSON number or a numeric string.
func (s *Schema) Number(field string, raw any, required bool) (float64, bool) {
	if isBlank(raw) {
		if required {
			s.failf(field, "is required.")
		}
		return 0, false
	}
	var v float64
	switch t := raw.(type) {
	case float64:
		v = t
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			s.failf(field, "must be a number.")
			return 0, false
		}
		v = parsed
	default:
		s.failf(field, "must be a number.")
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		s.failf(field, "must be a number.")
		return 0, false
	}
	return v, true
}

// Integer reads a whole JSON number or an integer string.
func (s *Schema) Integer(field string, raw any, required bool) (int, bool) {
	if isBlank(raw) {
		if required {
			s.failf(field, "is required.")
		}
		return 0, false
	}
	switch t := raw.(type) {
	case float64:
		if t != math.Trunc(t) || math.Abs(t) > math.MaxInt32 {
			s.failf(field, "must be an integer.")
			return 0, false
		}
		return int(t), true
	case string:
		v, err := strconv.ParseInt(strings.TrimSpace(t), 10, 32)
		if err != nil {
			s.failf(field, "must be an integer.")
			return 0, false
		}
		return int(v), true
	default:
		s.failf(field, "must be an integer.")
		return 0, false
	}
}

// Between checks min <= v <= max.
func (s *Schema) Between(field string, v, min, max float64) {
	if tags.Var(v, fmt.Sprintf("gte=%g,lte=%g", min, max)) != nil {
		s.failf(field, "must be between %g and %g.", min, max)
	}
}

// Range checks min <= v <= max for integers, reporting the violated bound.
func (s *Schema) Range(field string, v, min, max int) {
	switch {
	case v < min:
		s.failf(field, "must be at least %d.", min)
	case v > max:
		s.failf(field, "must not be greater than %d.", max)
	}
}

// DateTime reads an optional date/time string in one of DateTimeLayouts.
// Values without a zone are interpreted in UTC.
func (s *Schema) DateTime(field string, raw any) (time.Time, bool) {
	if isBlank(raw) {
		return time.Time{}, false
	}
	str, ok := raw.(string)
	if !ok {
		s.failf(field, "must be a valid date.")
		return time.Time{}, false
	}
	str = strings.TrimSpace(str)
	for _, layout := range DateTimeLayouts {
		if t, err := time.ParseInLocation(layout, str, time.UTC); err == nil {
			return t, true
		}
	}
	s.failf(field, "must be a valid date.")
	return time.Time{}, false
}

func isBlank(raw any) bool {
	if raw == nil {
		return true
	}
	str, ok := raw.(string)
	return ok && strings.TrimSpace(str) == ""
}
