package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrValidation     = errors.New("validation failed")
	ErrNotFound       = errors.New("not found")
	ErrAlreadyPaid    = errors.New("installment already paid")
	ErrConflict       = errors.New("conflict")
	ErrTransientStore = errors.New("store unavailable")
)

// ValidationError names the input field and the rule it broke.
type ValidationError struct {
	Field string
	Rule  string
}

func (err *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", err.Field, err.Rule)
}

func (err *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field string, rule string) error {
	return &ValidationError{Field: field, Rule: rule}
}

// classifyStoreError maps persistence errors onto the service taxonomy.
func classifyStoreError(operation string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrConflict), errors.Is(err, ErrValidation):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", operation, ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueViolation(err):
		return fmt.Errorf("%s: %w", operation, ErrConflict)
	default:
		return fmt.Errorf("%s: %w: %v", operation, ErrTransientStore, err)
	}
}

func isUniqueViolation(err error) bool {
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "unique constraint failed") || strings.Contains(message, "constraint failed: unique")
}
