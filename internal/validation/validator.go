// package validation provides helper functions for request data validation.
// It uses the go-playground/validator library and includes custom validation rules.
package validation

import (
	"fmt"
	"strings"

	"github.com/avoronov/scrumboard-service/internal/domain"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// init registers custom validation rules with the validator instance.
func init() {
	// "milestone_status" accepts only the fixed status enum. Empty strings are
	// left for the 'required' tag to judge.
	err := validate.RegisterValidation("milestone_status", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if value == "" {
			return true
		}

		return domain.MilestoneStatus(value).Valid()
	})
	if err != nil {
		panic(fmt.Sprintf("failed to register custom validation: %v", err))
	}
}

// ValidationError is a custom error type that holds a slice of validation error messages.
type ValidationError struct {
	Errors []string
}

func (v *ValidationError) Error() string {
	return strings.Join(v.Errors, ", ")
}

// ValidateStruct performs validation on a given struct based on its validation tags.
// If validation fails, it returns a *ValidationError with user-friendly messages.
func ValidateStruct(s interface{}) error {
	if err := validate.Struct(s); err != nil {
		var validationErrors []string

		for _, err := range err.(validator.ValidationErrors) {
			var message string

			switch err.Tag() {
			case "milestone_status":
				message = fmt.Sprintf(
					"field '%s' must be one of PENDING, OPEN, CLOSED, EVALUATING, COMPLETED",
					err.Field(),
				)
			default:
				message = fmt.Sprintf(
					"field '%s' failed on the '%s' tag",
					err.Field(),
					err.Tag(),
				)
			}
			validationErrors = append(validationErrors, message)
		}

		return &ValidationError{Errors: validationErrors}
	}

	return nil
}
