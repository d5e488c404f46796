package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	apperrors "wanderlust/pkg/errors"
	"wanderlust/pkg/model"

	"github.com/go-playground/validator/v10"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type Errors []FieldError

func (e Errors) Error() string {
	if len(e) == 0 {
		return ""
	}
	messages := make([]string, 0, len(e))
	for _, fe := range e {
		messages = append(messages, fe.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(e), strings.Join(messages, "; "))
}

// AppError renders the errors as a 422 with one detail entry per field.
func (e Errors) AppError(message string) *apperrors.AppError {
	details := make(map[string]any, len(e))
	for _, fe := range e {
		details[fe.Field] = fe.Message
	}
	return apperrors.Validation(message, details)
}

// New returns a validator with the project's custom tags registered and
// field names taken from json tags.
func New() (*validator.Validate, error) {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("listing_category", func(fl validator.FieldLevel) bool {
		return model.IsValidCategory(fl.Field().String())
	}); err != nil {
		return nil, fmt.Errorf("register listing_category: %w", err)
	}
	return v, nil
}

// Struct validates s and translates failures into Errors.
func Struct(v *validator.Validate, s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return Translate(validationErrs)
	}
	return err
}

func Translate(errs validator.ValidationErrors) Errors {
	out := make(Errors, 0, len(errs))
	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "gte":
			message = fmt.Sprintf("%s must be greater than or equal to %s", err.Field(), err.Param())
		case "lte":
			message = fmt.Sprintf("%s must be less than or equal to %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", err.Field())
		case "url":
			message = fmt.Sprintf("%s must be a valid URL", err.Field())
		case "alphanum":
			message = fmt.Sprintf("%s may only contain letters and digits", err.Field())
		case "listing_category":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), strings.Join(model.Categories, ", "))
		}

		out = append(out, FieldError{Field: err.Field(), Message: message})
	}
	return out
}
