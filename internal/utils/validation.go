package utils

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/navikt/roomboard/internal/availability"
)

var validate = mustNewValidator()

// roomIDPattern keeps room IDs safe inside URL paths and storage keys
var roomIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

var customValidations = map[string]validator.Func{
	"clock":  validateClock,
	"date":   validateDate,
	"roomid": validateRoomID,
}

func mustNewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)
	if err := registerValidations(v, customValidations); err != nil {
		panic(err)
	}
	return v
}

func registerValidations(v *validator.Validate, funcs map[string]validator.Func) error {
	for tag, fn := range funcs {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %q validation: %w", tag, err)
		}
	}
	return nil
}

// ValidateStruct checks the validate tags of s
func ValidateStruct(s any) error {
	return validate.Struct(s)
}

// jsonFieldName reports fields by their JSON name so messages match request bodies
func jsonFieldName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "-" || name == "" {
		return field.Name
	}
	return name
}

// validateClock accepts strict "HH:MM" wall-clock times
func validateClock(fl validator.FieldLevel) bool {
	_, err := availability.ParseClock(fl.Field().String())
	return err == nil
}

// validateDate accepts "YYYY-MM-DD" calendar dates
func validateDate(fl validator.FieldLevel) bool {
	_, err := availability.ParseDate(fl.Field().String(), time.UTC)
	return err == nil
}

// validateRoomID accepts letters, digits, '-' and '_'
func validateRoomID(fl validator.FieldLevel) bool {
	return roomIDPattern.MatchString(fl.Field().String())
}

var validationMessages = map[string]string{
	"required": "is required",
	"clock":    "must be a time of day as HH:MM",
	"date":     "must be a date as YYYY-MM-DD",
	"roomid":   "may only contain letters, digits, '-' and '_'",
	"max":      "is too long",
	"gte":      "must not be negative",
}

// FormatValidationError turns validator errors into one readable line
func FormatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err.Error()
	}

	messages := make([]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		message, ok := validationMessages[fieldErr.Tag()]
		if !ok {
			message = "is invalid"
		}
		messages = append(messages, fieldErr.Field()+" "+message)
	}
	return strings.Join(messages, ", ")
}
