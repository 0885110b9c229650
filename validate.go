package daho

import (
	"fmt"
	"unicode"
)

const minPasswordLength = 10

// validatePasswordStrength enforces the registration password policy:
// at least 10 characters with at least one letter, one digit, and one
// symbol. The returned error wraps [ErrPasswordPolicy] and its message is
// safe to surface to the caller verbatim.
func validatePasswordStrength(password string) error {
	if len([]rune(password)) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrPasswordPolicy, minPasswordLength)
	}

	var hasLetter, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSymbol = true
		}
	}

	if !hasLetter || !hasDigit || !hasSymbol {
		return fmt.Errorf("%w: password must contain letters, numbers, and symbols", ErrPasswordPolicy)
	}

	return nil
}
