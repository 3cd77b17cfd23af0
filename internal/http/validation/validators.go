// Package validation turns go-playground/validator failures into per-field messages
// for form re-rendering.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator validates tagged structs. Field names in messages come from the
// form tag, then the json tag, then the Go field name.
type Validator struct {
	v *validator.Validate
}

// New returns a Validator with tag name resolution configured.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(fieldName)
	return &Validator{v: v}
}

// Struct validates s and returns validator.ValidationErrors on failure.
func (val *Validator) Struct(s any) error {
	return val.v.Struct(s)
}

// FieldErrors maps each failed field to a readable message. Errors that are not
// validation failures yield nil.
func FieldErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, dup := out[fe.Field()]; dup {
			continue
		}
		out[fe.Field()] = Message(fe)
	}
	return out
}

// Message renders a single field failure.
func Message(fe validator.FieldError) string {
	label := Label(fe.Field())
	switch fe.Tag() {
	case "required":
		return label + " is required."
	case "email":
		return "Enter a valid email address."
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s cannot exceed %s characters.", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s.", label, fe.Param())
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters.", label, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s.", label, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s.", label, fe.Param())
	case "uppercase":
		return label + " must be uppercase."
	default:
		return label + " is invalid."
	}
}

// Label turns a field name such as "referral.cookie_days" into "Cookie days".
func Label(field string) string {
	if i := strings.LastIndex(field, "."); i >= 0 {
		field = field[i+1:]
	}
	field = strings.ReplaceAll(field, "_", " ")
	if field == "" {
		return "Value"
	}
	return strings.ToUpper(field[:1]) + field[1:]
}

func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"form", "json"} {
		name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}
