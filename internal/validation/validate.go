// Package validation adapts go-playground/validator to the apperr taxonomy so
// form errors can be surfaced on the originating field.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/wolfman30/sports-travel-platform/internal/apperr"
)

var (
	once     sync.Once
	instance *validator.Validate
)

func get() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		instance = v
	})
	return instance
}

// Struct validates s and returns the first failing field as a validation error.
func Struct(s any) error {
	errs := Fields(s)
	if len(errs) == 0 {
		return nil
	}
	return errs[0]
}

// Fields validates s and returns one validation error per failing field.
func Fields(s any) []*apperr.Error {
	err := get().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []*apperr.Error{apperr.Validation("", err.Error())}
	}
	out := make([]*apperr.Error, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, apperr.Validation(fe.Field(), message(fe)))
	}
	return out
}

// Var validates a single value against tag, reporting failures on field.
func Var(field string, value any, tag string) error {
	err := get().Var(value, tag)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return apperr.Validation(field, message(verrs[0]))
	}
	return apperr.Validation(field, err.Error())
}

// Map flattens errors into the field→message shape forms expect.
func Map(errs []*apperr.Error) map[string]string {
	out := make(map[string]string, len(errs))
	for _, e := range errs {
		if _, seen := out[e.Field]; !seen {
			out[e.Field] = e.Msg
		}
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
