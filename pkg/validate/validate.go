// Package validate wraps go-playground/validator with Laravel-flavoured
// messages keyed by JSON paths.
//
// Rules use the standard `validate` tag:
//
//	type Input struct {
//	    Name  string  `json:"name"  validate:"required,min=3"`
//	    Price float64 `json:"price" validate:"gte=0"`
//	    Items []Item  `json:"items" validate:"dive"`
//	}
//
// Struct returns a map of path → message where the path follows JSON names
// and slice indexes ("items.0.schoolId"). Per-field messages can be
// overridden with a Messages table whose keys may use "*" for any index:
//
//	validate.Struct(in, validate.Messages{"items.*.schoolId": "School is required."})
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Messages overrides the default message for a path pattern.
type Messages map[string]string

var (
	once sync.Once
	v    *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return v
}

// RegisterType teaches the validator how to see a custom type, e.g. a union
// that should be validated as its string form.
func RegisterType(fn validator.CustomTypeFunc, types ...interface{}) {
	instance().RegisterCustomTypeFunc(fn, types...)
}

// Struct validates v. An empty map means no errors. Only the first failing
// rule of each field is reported.
func Struct(in interface{}, overrides ...Messages) map[string]string {
	errs := make(map[string]string)

	err := instance().Struct(in)
	if err == nil {
		return errs
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs["_"] = err.Error()
		return errs
	}

	for _, fe := range verrs {
		path := fieldPath(fe.Namespace())
		if _, seen := errs[path]; seen {
			continue
		}
		errs[path] = message(path, fe, overrides)
	}
	return errs
}

// HasErrors returns true when the errs map is non-empty.
func HasErrors(errs map[string]string) bool { return len(errs) > 0 }

// fieldPath turns "bookInput.readingPlan[0].schoolId" into
// "readingPlan.0.schoolId".
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		ns = rest
	}
	return strings.NewReplacer("[", ".", "]", "").Replace(ns)
}

// pattern replaces numeric path segments with "*".
func pattern(path string) string {
	parts := strings.Split(path, ".")
	for i, p := range parts {
		if p != "" && strings.Trim(p, "0123456789") == "" {
			parts[i] = "*"
		}
	}
	return strings.Join(parts, ".")
}

func message(path string, fe validator.FieldError, overrides []Messages) string {
	generic := pattern(path)
	for _, m := range overrides {
		if msg, ok := m[path]; ok {
			return msg
		}
		if msg, ok := m[generic]; ok {
			return msg
		}
	}
	return defaultMessage(fe)
}

func defaultMessage(fe validator.FieldError) string {
	field := fe.Field()
	param := fe.Param()

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", field)
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", field)
	case "url":
		return fmt.Sprintf("The %s must be a valid URL.", field)
	case "uuid", "uuid4":
		return fmt.Sprintf("The %s must be a valid UUID.", field)
	case "oneof":
		return fmt.Sprintf("The selected %s is invalid.", field)
	case "min":
		if isNumeric(fe.Kind()) {
			return fmt.Sprintf("The %s must be at least %s.", field, param)
		}
		return fmt.Sprintf("The %s must be at least %s characters.", field, param)
	case "max":
		if isNumeric(fe.Kind()) {
			return fmt.Sprintf("The %s must not be greater than %s.", field, param)
		}
		return fmt.Sprintf("The %s must not exceed %s characters.", field, param)
	case "gt":
		return fmt.Sprintf("The %s must be greater than %s.", field, param)
	case "gte":
		return fmt.Sprintf("The %s must be greater than or equal to %s.", field, param)
	case "lt":
		return fmt.Sprintf("The %s must be less than %s.", field, param)
	case "lte":
		return fmt.Sprintf("The %s must be less than or equal to %s.", field, param)
	}
	return fmt.Sprintf("The %s is invalid.", field)
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
