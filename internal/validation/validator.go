package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"exam-hub/internal/domain"

	"github.com/go-playground/validator/v10"
)

// Validator checks `validate` struct tags and reports failures as
// domain.ValidationErrors keyed by JSON field path.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
	return &Validator{validate: v}
}

// Struct validates s. It returns nil or domain.ValidationErrors.
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return domain.NewInternalError("request validation failed", err)
	}

	out := make(domain.ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, toFieldError(fe))
	}
	return out
}

// fieldPath drops the root struct name: "CreateQuestionRequest.options[0].text" -> "options[0].text".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func toFieldError(fe validator.FieldError) domain.FieldError {
	field := fieldPath(fe)
	switch fe.Tag() {
	case "required":
		return domain.NewMissingFieldError(field)
	case "min", "max", "gte", "lte", "gt", "lt", "len":
		return domain.FieldError{
			Field:   field,
			Code:    domain.CodeOutOfRange,
			Message: rangeMessage(field, fe),
			Value:   fe.Value(),
		}
	case "oneof":
		return domain.FieldError{
			Field:   field,
			Code:    domain.CodeInvalidFormat,
			Message: fmt.Sprintf("%s must be one of [%s]", field, fe.Param()),
			Value:   fe.Value(),
		}
	default:
		return domain.NewInvalidFormatError(field, fe.Value())
	}
}

func rangeMessage(field string, fe validator.FieldError) string {
	unit := ""
	switch fe.Kind() {
	case reflect.String:
		unit = " characters"
	case reflect.Slice, reflect.Array, reflect.Map:
		unit = " items"
	}
	switch fe.Tag() {
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s%s", field, fe.Param(), unit)
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s%s", field, fe.Param(), unit)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "lt":
		return fmt.Sprintf("%s must be less than %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s must have length %s%s", field, fe.Param(), unit)
	}
}
