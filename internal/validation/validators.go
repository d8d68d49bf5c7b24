package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/vuminh/shoprec/internal/models"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// Register custom validators for enums
	if err := Validate.RegisterValidation("action_type", validateActionType); err != nil {
		panic(fmt.Sprintf("failed to register action_type validator: %v", err))
	}
}

// validateActionType validates that a string is a valid ActionType enum value
func validateActionType(fl validator.FieldLevel) bool {
	return models.IsValidActionType(fl.Field().String())
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	text = strings.TrimSpace(text)

	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}

// ValidateActionType validates an action type string value
func ValidateActionType(value string) error {
	if !models.IsValidActionType(value) {
		return fmt.Errorf("invalid action_type: %s", value)
	}
	return nil
}
