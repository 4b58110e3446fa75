package services

import (
	"fmt"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/mkessaci/digimart/internal/models"
)

// Shared validator instance, reused across all services.
var validate = validator.New()

// toValidationError converts validator output into the field-scoped
// ValidationError surfaced to callers. Non-validator errors pass through.
func toValidationError(err error) error {
	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	fields := make(map[string][]string)
	for _, fe := range ve {
		field := lowerFirst(fe.Field())
		fields[field] = append(fields[field], formatFieldError(fe))
	}

	return &models.ValidationError{Fields: fields}
}

func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return "Please enter a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "eqfield":
		return "Passwords do not match"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "required_if":
		return "Store name is required for vendors"
	default:
		return fmt.Sprintf("failed validation: %s", fe.Tag())
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}
