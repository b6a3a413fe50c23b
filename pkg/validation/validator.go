package validation

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	// validate is a singleton validator instance
	validate *validator.Validate

	// MaxPropertyKey bounds the length of property keys in configuration
	MaxPropertyKey = 100

	propKeyPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	_ = validate.RegisterValidation("property_key", func(fl validator.FieldLevel) bool {
		return ValidatePropertyKey(fl.Field().String()) == nil
	})
}

// ValidateStruct validates s against its `validate` struct tags and
// returns every failed field joined into one error.
func ValidateStruct(s any) error {
	return errors.Join(structErrors(s)...)
}

// ValidatePropertyKey validates a node or relationship property key
func ValidatePropertyKey(key string) error {
	if key == "" {
		return errors.New("property key cannot be empty")
	}
	if len(key) > MaxPropertyKey {
		return fmt.Errorf("property key '%s' exceeds maximum length of %d characters", key, MaxPropertyKey)
	}
	if !propKeyPattern.MatchString(key) {
		return fmt.Errorf("property key '%s' is invalid (must start with letter or underscore, followed by alphanumeric or underscore)", key)
	}
	return nil
}

func structErrors(s any) []error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return []error{err}
	}

	out := make([]error, 0, len(validationErrs))
	for _, e := range validationErrs {
		out = append(out, formatFieldError(e))
	}
	return out
}

// formatFieldError converts a validator field error to a user-friendly message
func formatFieldError(e validator.FieldError) error {
	field := e.Field()
	param := e.Param()

	switch e.Tag() {
	case "required":
		return fmt.Errorf("%s: field is required", field)
	case "min", "gte":
		return fmt.Errorf("%s: must be at least %s, got %v", field, param, e.Value())
	case "max", "lte":
		return fmt.Errorf("%s: must not exceed %s, got %v", field, param, e.Value())
	case "property_key":
		return fmt.Errorf("%s: %q is not a valid property key", field, e.Value())
	default:
		return fmt.Errorf("%s: validation failed (%s)", field, e.Tag())
	}
}
