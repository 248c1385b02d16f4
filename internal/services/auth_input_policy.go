package services

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	ErrAuthCredentialsInvalid = errors.New("auth credentials invalid")
	ErrWeakPassword           = errors.New("weak password")
)

const (
	maxDisplayNameLength = 80
	minPasswordRunes     = 8
	// bcrypt ignores everything past 72 bytes.
	maxPasswordBytes = 72
)

func NormalizeAuthEmail(raw string) string {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return ""
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return ""
	}
	return email
}

func NormalizeCredentialsInput(emailRaw string, passwordRaw string) (string, string, error) {
	email := NormalizeAuthEmail(emailRaw)
	password := strings.TrimSpace(passwordRaw)
	if email == "" || password == "" {
		return "", "", ErrAuthCredentialsInvalid
	}
	return email, password, nil
}

func NormalizeDisplayName(raw string) (string, error) {
	name := strings.Join(strings.Fields(raw), " ")
	if len([]rune(name)) > maxDisplayNameLength {
		return "", invalid("display_name", "too long")
	}
	return name, nil
}

// ValidatePasswordStrength reports the first password rule that fails. The
// returned error wraps ErrWeakPassword and names the rule.
func ValidatePasswordStrength(password string) error {
	if utf8.RuneCountInString(password) < minPasswordRunes {
		return fmt.Errorf("%w: at least %d characters", ErrWeakPassword, minPasswordRunes)
	}
	if len(password) > maxPasswordBytes {
		return fmt.Errorf("%w: at most %d bytes", ErrWeakPassword, maxPasswordBytes)
	}

	missing := make([]string, 0, 3)
	if !strings.ContainsFunc(password, unicode.IsUpper) {
		missing = append(missing, "an upper case letter")
	}
	if !strings.ContainsFunc(password, unicode.IsLower) {
		missing = append(missing, "a lower case letter")
	}
	if !strings.ContainsFunc(password, unicode.IsDigit) {
		missing = append(missing, "a digit")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: needs %s", ErrWeakPassword, strings.Join(missing, " and "))
	}
	return nil
}
