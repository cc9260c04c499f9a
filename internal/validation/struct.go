package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"reelhub/internal/models"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON names so messages match the request body.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	mustRegister(v, "category", func(fl validator.FieldLevel) bool {
		return models.Category(fl.Field().String()).Valid()
	})
	mustRegister(v, "videotype", func(fl validator.FieldLevel) bool {
		return models.VideoType(fl.Field().String()).Valid()
	})
	mustRegister(v, "username", func(fl validator.FieldLevel) bool {
		return ValidateUsername(fl.Field().String()) == nil
	})
	mustRegister(v, "password", func(fl validator.FieldLevel) bool {
		return ValidatePassword(fl.Field().String()) == nil
	})
	mustRegister(v, "mailbox", func(fl validator.FieldLevel) bool {
		return ValidateEmail(fl.Field().String()) == nil
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

// Struct validates s against its `validate` tags and returns a
// VALIDATION_ERROR AppError describing the first failing field.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return models.NewInternalError(fmt.Errorf("validate %T: %w", s, err))
	}
	return models.NewValidationError(Message(fieldErrs[0]))
}

// Message renders one field error as a client-facing sentence.
func Message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "min":
		if fe.Kind() == reflect.String && fe.Param() == "1" {
			return field + " cannot be empty"
		}
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "url", "http_url":
		return field + " must be a valid URL"
	case "category":
		return fmt.Sprintf("%s must be one of: %s", field, joinCategories())
	case "videotype":
		return fmt.Sprintf("%s must be one of: %s, %s", field, models.VideoTypeShort, models.VideoTypeLong)
	case "username":
		return ruleMessage(ValidateUsername(fmt.Sprint(fe.Value())), field)
	case "password":
		return ruleMessage(ValidatePassword(fmt.Sprint(fe.Value())), field)
	case "mailbox":
		return ruleMessage(ValidateEmail(fmt.Sprint(fe.Value())), field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func joinCategories() string {
	parts := make([]string, len(models.Categories))
	for i, c := range models.Categories {
		parts[i] = string(c)
	}
	return strings.Join(parts, ", ")
}

func ruleMessage(err error, field string) string {
	if err == nil {
		return field + " is invalid"
	}
	return err.Error()
}
