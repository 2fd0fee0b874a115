// Package validator provides request validation using go-playground/validator.
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"newsletter-analytics/internal/domain"
)

// Validator wraps the go-playground validator with JSON field names and the
// publication tag.
type Validator struct {
	v *validator.Validate
}

// ValidationError represents a single field validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Value   string `json:"value,omitempty"`
	Message string `json:"message"`
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error joins the messages with "; ".
func (ve ValidationErrors) Error() string {
	msgs := make([]string, len(ve))
	for i, e := range ve {
		msgs[i] = e.Message
	}

	return strings.Join(msgs, "; ")
}

// messages maps a tag to its message format. Formats with two verbs
// receive the tag parameter as the second argument.
var messages = map[string]string{
	"required":    "%s is required",
	"min":         "%s must be at least %s",
	"max":         "%s must be at most %s",
	"oneof":       "%s must be one of: %s",
	"publication": "%s must be a publication name, domain or URL",
}

// New creates a new Validator instance.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, key := range []string{"json", "query"} {
			name, _, _ := strings.Cut(fld.Tag.Get(key), ",")
			if name != "" && name != "-" {
				return name
			}
		}

		return fld.Name
	})

	if err := v.RegisterValidation("publication", isPublication); err != nil {
		panic(fmt.Sprintf("registering publication validation: %v", err))
	}

	return &Validator{v: v}
}

// isPublication accepts anything domain.ParsePublicationInput accepts.
func isPublication(fl validator.FieldLevel) bool {
	_, err := domain.ParsePublicationInput(fl.Field().String())
	return err == nil
}

// Validate validates the given struct and returns ValidationErrors if invalid.
func (v *Validator) Validate(i any) error {
	return convert(v.v.Struct(i), "")
}

// Var validates a single value, such as a path parameter, under name.
func (v *Validator) Var(name string, value any, tag string) error {
	return convert(v.v.Var(value, tag), name)
}

// convert turns validator errors into ValidationErrors. A non-empty field
// overrides the reported field name.
func convert(err error, field string) error {
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	errs := make(ValidationErrors, 0, len(fieldErrs))
	for _, e := range fieldErrs {
		name := field
		if name == "" {
			name = e.Field()
		}
		errs = append(errs, ValidationError{
			Field:   name,
			Tag:     e.Tag(),
			Value:   fmt.Sprintf("%v", e.Value()),
			Message: message(name, e.Tag(), e.Param()),
		})
	}

	return errs
}

func message(field, tag, param string) string {
	format, ok := messages[tag]
	if !ok {
		return fmt.Sprintf("%s failed %s validation", field, tag)
	}
	if strings.Count(format, "%s") == 2 {
		return fmt.Sprintf(format, field, param)
	}

	return fmt.Sprintf(format, field)
}
