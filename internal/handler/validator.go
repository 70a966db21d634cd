package handler

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// RequestValidator plugs go-playground/validator into echo's c.Validate.
type RequestValidator struct {
	v *validator.Validate
}

// NewRequestValidator returns a validator that reports JSON field names.
func NewRequestValidator() *RequestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &RequestValidator{v: v}
}

// Validate implements echo.Validator.
func (rv *RequestValidator) Validate(i any) error {
	return rv.v.Struct(i)
}

// failedFields lists the JSON names of fields that failed validation, with
// the tag that failed.
func failedFields(err error) map[string]string {
	out := map[string]string{}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return out
	}
	for _, fe := range verrs {
		// Namespace looks like reserveRequest.seatIds[0]; keep the top-level field.
		field := fe.Field()
		if ns := fe.Namespace(); strings.Contains(ns, ".") {
			field = strings.SplitN(strings.SplitN(ns, ".", 2)[1], "[", 2)[0]
		}
		if _, seen := out[field]; !seen {
			out[field] = fe.Tag()
		}
	}
	return out
}
