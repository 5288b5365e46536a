package api

import (
	"fmt"
	"strings"
	"unicode"
)

// ValidationError reports a rejected request parameter.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// SanitizeString drops control characters and surrounding whitespace.
func SanitizeString(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)

	return strings.TrimSpace(s)
}

func validateUserId(userId string) (string, error) {
	userId = SanitizeString(userId)
	if userId == "" {
		return "", &ValidationError{Field: "user_id", Message: "is required"}
	}
	if len(userId) > 128 {
		return "", &ValidationError{Field: "user_id", Message: "cannot exceed 128 characters"}
	}
	return userId, nil
}
