package service

import (
	"strings"
	"unicode"

	apperrors "github.com/spec-kit/user-service/pkg/util/errorutil"
)

const minPasswordLength = 8

const specialChars = `!@#$%^&*()-_=+[]{};:'",.<>/?\|~`

// ValidatePassword enforces the registration complexity rules: minimum
// length, at least one uppercase letter, one digit and one special
// character.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLength {
		return apperrors.NewValidationError("password must be at least 8 characters", nil)
	}

	var hasUpper, hasDigit, hasSpecial bool
	for _, c := range password {
		switch {
		case unicode.IsUpper(c):
			hasUpper = true
		case unicode.IsDigit(c):
			hasDigit = true
		case strings.ContainsRune(specialChars, c):
			hasSpecial = true
		}
	}

	switch {
	case !hasUpper:
		return apperrors.NewValidationError("password must contain at least one uppercase letter", nil)
	case !hasDigit:
		return apperrors.NewValidationError("password must contain at least one digit", nil)
	case !hasSpecial:
		return apperrors.NewValidationError("password must contain at least one special character", nil)
	}
	return nil
}
