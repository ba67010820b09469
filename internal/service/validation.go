package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Request validation errors.
var (
	// ErrValidationFailed wraps every request validation failure.
	ErrValidationFailed = errors.New("validation failed")
	// ErrFieldRequired is returned when a required field is missing.
	ErrFieldRequired = errors.New("field is required")
	// ErrFieldEmail is returned when a field must be a valid email.
	ErrFieldEmail = errors.New("field must be a valid email")
	// ErrFieldGreaterThan is returned when a field must be greater than a value.
	ErrFieldGreaterThan = errors.New("field must be greater than constraint")
	// ErrFieldGreaterThanOrEqual is returned when a field must be at least a value.
	ErrFieldGreaterThanOrEqual = errors.New("field must be greater than or equal to constraint")
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// getValidator returns the shared validator. Field names in errors are the
// JSON names clients send.
func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// validateRequest checks msg against its validate tags and reports the first
// failing field.
func validateRequest(msg any) error {
	err := getValidator().Struct(msg)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		return formatValidationError(validationErrors[0])
	}
	return fmt.Errorf("%w: %w", ErrValidationFailed, err)
}

var validationErrorFormatters = map[string]func(field, param string) error{
	"required": func(field, _ string) error {
		return fmt.Errorf("%w: %w: '%s'", ErrValidationFailed, ErrFieldRequired, field)
	},
	"email": func(field, _ string) error {
		return fmt.Errorf("%w: %w: '%s'", ErrValidationFailed, ErrFieldEmail, field)
	},
	"gt": func(field, param string) error {
		return fmt.Errorf("%w: %w: '%s' must be greater than %s", ErrValidationFailed, ErrFieldGreaterThan, field, param)
	},
	"gte": func(field, param string) error {
		return fmt.Errorf("%w: %w: '%s' must be at least %s", ErrValidationFailed, ErrFieldGreaterThanOrEqual, field, param)
	},
}

func formatValidationError(fe validator.FieldError) error {
	if formatter, ok := validationErrorFormatters[fe.Tag()]; ok {
		return formatter(fe.Field(), fe.Param())
	}
	return fmt.Errorf("%w: '%s' failed '%s'", ErrValidationFailed, fe.Field(), fe.Tag())
}
