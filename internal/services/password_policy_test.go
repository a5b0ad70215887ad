package services

import (
	"errors"
	"strings"
	"testing"
)

func TestValidatePasswordStrength_RejectsWeakPasswords(t *testing.T) {
	testCases := []string{
		"Short1",
		"alllowercase1",
		"ALLUPPERCASE1",
		"NoDigitsHere",
		"Aa1" + strings.Repeat("x", maxPasswordBytes),
	}

	for _, password := range testCases {
		if err := ValidatePasswordStrength(password); !errors.Is(err, ErrWeakPassword) {
			t.Fatalf("expected ErrWeakPassword for %q, got %v", password, err)
		}
	}
}

func TestValidatePasswordStrength_AcceptsStrongPassword(t *testing.T) {
	for _, password := range []string{"StrongPass1", "Skinior2026", "بشرةSkin2026"} {
		if err := ValidatePasswordStrength(password); err != nil {
			t.Fatalf("expected nil error for %q, got %v", password, err)
		}
	}
}
