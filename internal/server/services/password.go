package services

import (
	"strings"

	"github.com/sayedsafi2000/pixelsbee/internal/common"
)

const (
	minPasswordLength = 8
	passwordSymbols   = `!@#$%^&*()_+-=[]{};':"\|,.<>/?`
)

// ValidatePassword enforces the password policy. Classes are checked in
// order length, uppercase, symbol, digit and the first failure is reported.
// Length counts Unicode code points, so an emoji counts as one character.
func ValidatePassword(password string) error {
	if len([]rune(password)) < minPasswordLength {
		return common.NewError(common.ErrorInvalidInput, "Password must be at least 8 characters long")
	}
	if !strings.ContainsFunc(password, func(r rune) bool { return r >= 'A' && r <= 'Z' }) {
		return common.NewError(common.ErrorInvalidInput, "Password must contain at least one capital letter")
	}
	if !strings.ContainsAny(password, passwordSymbols) {
		return common.NewError(common.ErrorInvalidInput, "Password must contain at least one special character")
	}
	if !strings.ContainsFunc(password, func(r rune) bool { return r >= '0' && r <= '9' }) {
		return common.NewError(common.ErrorInvalidInput, "Password must contain at least one number")
	}
	return nil
}
