package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"droidswitch/internal/utils"
)

// MaxNameLength is the longest accepted provider name, in characters
const MaxNameLength = 50

// InputValidator validates user input
type InputValidator struct {
}

// NewInputValidator creates a new InputValidator
func NewInputValidator() *InputValidator {
	return &InputValidator{}
}

// ValidateName checks a provider name after trimming
func (iv *InputValidator) ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if utf8.RuneCountInString(trimmed) > MaxNameLength {
		return fmt.Errorf("name is too long (max %d characters)", MaxNameLength)
	}
	return nil
}

// ValidateAPIKey checks that a key is present and carries the fk- prefix
func (iv *InputValidator) ValidateAPIKey(key string) error {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return fmt.Errorf("API key cannot be empty")
	}
	if !strings.HasPrefix(trimmed, utils.APIKeyPrefix) {
		return fmt.Errorf("API key must start with %s", utils.APIKeyPrefix)
	}
	if strings.ContainsAny(trimmed, " \t\r\n\"") {
		return fmt.Errorf("API key contains invalid characters")
	}
	return nil
}

// ValidateModelID checks a custom model id
func (iv *InputValidator) ValidateModelID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("model id cannot be empty")
	}
	if strings.ContainsAny(id, " <>\"'&\\") {
		return fmt.Errorf("model id contains invalid characters")
	}
	return nil
}
