// Package validation validates request payloads with go-playground/validator.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	domainerrors "github.com/kanineapp/kanine-server/internal/errors"
	"github.com/kanineapp/kanine-server/internal/normalize"
)

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator configured for our domain.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	// notblank rejects strings that are empty after normalization.
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return normalize.Text(fl.Field().String()) != ""
	})

	// tagname limits a single tag to MaxTagNameLength runes after normalization.
	_ = v.RegisterValidation("tagname", func(fl validator.FieldLevel) bool {
		return utf8.RuneCountInString(normalize.TagName(fl.Field().String())) <= normalize.MaxTagNameLength
	})

	return &Validator{v: v}
}

// Validate validates a struct and returns a domain error.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(err)
	}
	return nil
}

// Var validates a single value against a tag string, reporting failures under name.
func (v *Validator) Var(name string, value any, tag string) error {
	err := v.v.Var(value, tag)
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return err
	}
	msg := v.friendlyMessage(validationErrs[0])
	return domainerrors.ValidationWithDetails(name+" "+msg, map[string]string{name: msg})
}

// formatError converts validator errors to domain errors.
func (v *Validator) formatError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	fieldErrors := make(map[string]string, len(validationErrs))
	fields := make([]string, 0, len(validationErrs))
	for _, e := range validationErrs {
		field := fieldPath(e)
		if _, seen := fieldErrors[field]; !seen {
			fields = append(fields, field)
		}
		fieldErrors[field] = v.friendlyMessage(e)
	}

	msg := "validation failed"
	if len(fields) > 0 {
		msg = fields[0] + " " + fieldErrors[fields[0]]
	}
	return domainerrors.ValidationWithDetails(msg, fieldErrors)
}

// fieldPath drops the top-level struct name from the namespace,
// so "createNoteRequest.tags[2]" becomes "tags[2]".
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return e.Field()
}

//nolint:gocyclo // Switch statement covering validation tags is intentionally exhaustive.
func (v *Validator) friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "notblank":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", e.Param())
		}
		return "must be at least " + e.Param()
	case "max":
		switch e.Kind() {
		case reflect.String:
			return fmt.Sprintf("must not exceed %s characters", e.Param())
		case reflect.Slice:
			return fmt.Sprintf("must not contain more than %s items", e.Param())
		}
		return "must be at most " + e.Param()
	case "tagname":
		return fmt.Sprintf("must not exceed %d characters", normalize.MaxTagNameLength)
	case "oneof":
		return "must be one of: " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	case "gt":
		return "must be greater than " + e.Param()
	case "lt":
		return "must be less than " + e.Param()
	default:
		return "is invalid"
	}
}
