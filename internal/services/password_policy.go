package services

import (
	"errors"
	"unicode"
)

var ErrWeakPassword = errors.New("weak password")

const (
	minPasswordRunes = 8
	// bcrypt refuses anything longer.
	maxPasswordBytes = 72
)

// ValidatePasswordStrength requires 8+ characters mixing upper case, lower case
// and digits, within the 72 byte bcrypt input limit.
func ValidatePasswordStrength(password string) error {
	if len([]rune(password)) < minPasswordRunes || len(password) > maxPasswordBytes {
		return ErrWeakPassword
	}

	var hasUpper, hasLower, hasDigit bool
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsDigit(char):
			hasDigit = true
		}
	}

	if !hasUpper || !hasLower || !hasDigit {
		return ErrWeakPassword
	}
	return nil
}
