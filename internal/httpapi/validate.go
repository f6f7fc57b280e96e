package httpapi

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/lpms-app/lpms/internal/validation"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// validatorInstance returns the shared validator with json field names and
// the decimal rule registered
func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("decimal", func(fl validator.FieldLevel) bool {
			return validation.IsDecimal(fl.Field().String())
		})
		validate = v
	})
	return validate
}

// fieldErrors holds per-field messages keyed by wire field name
type fieldErrors map[string]string

func (f fieldErrors) Error() string {
	return validation.Errors(f).Error()
}

// validateStruct runs the struct tags and returns fieldErrors on failure.
// Messages match the ones the console shows for the same rules.
func validateStruct(v any) error {
	err := validatorInstance().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := fieldErrors{}
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; seen {
			continue
		}
		out[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "min":
		return "String must contain at least " + fe.Param() + " character(s)"
	case "max":
		return "String must contain at most " + fe.Param() + " character(s)"
	case "gte":
		return "Number must be greater than or equal to " + fe.Param()
	case "lte":
		return "Number must be less than or equal to " + fe.Param()
	case "decimal":
		return "Invalid decimal format for " + fe.Field()
	case "datetime":
		return "Invalid date"
	case "required":
		return "Required"
	default:
		return "Invalid value"
	}
}
