// Package validation checks request payloads with validator/v10 and reports failures per field.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// ErrInvalid matches every *Error via errors.Is.
var ErrInvalid = errors.New("validation failed")

// Error maps JSON field paths to a human readable problem.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return ErrInvalid.Error()
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+e.Fields[k])
	}
	return ErrInvalid.Error() + ": " + strings.Join(parts, "; ")
}

func (e *Error) Is(target error) bool { return target == ErrInvalid }

// Field builds a single-field error for checks done outside struct tags.
func Field(name, msg string) *Error {
	return &Error{Fields: map[string]string{name: msg}}
}

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

var hhmm = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(DateLayout, fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return hhmm.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		digits := 0
		for _, r := range fl.Field().String() {
			switch {
			case r >= '0' && r <= '9':
				digits++
			case strings.ContainsRune("+-(). ", r):
			default:
				return false
			}
		}
		return digits >= 7 && digits <= 15
	})

	return &Validator{v: v}
}

// Validate returns nil or an *Error.
func (v *Validator) Validate(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	out := &Error{Fields: make(map[string]string, len(fieldErrs))}
	for _, e := range fieldErrs {
		out.Fields[fieldPath(e)] = friendlyMessage(e)
	}
	return out
}

// ValidTime reports whether s is a 24-hour "HH:MM" value.
func ValidTime(s string) bool { return hhmm.MatchString(s) }

// fieldPath drops the root struct name from the namespace, e.g. "workingHours[monday].start".
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return e.Field()
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", e.Param())
		}
		return "must be at least " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("must not exceed %s characters", e.Param())
		}
		return "must not exceed " + e.Param()
	case "uuid", "uuid4":
		return "must be a valid UUID"
	case "oneof":
		return "must be one of: " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "gt":
		return "must be greater than " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	case "isodate":
		return "must be a date in YYYY-MM-DD format"
	case "hhmm":
		return "must be a time in HH:MM format"
	case "phone":
		return "must be a valid phone number"
	default:
		return "is invalid"
	}
}
