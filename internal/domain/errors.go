package domain

import (
	"errors"
	"fmt"
)

// ValidationError is the only pipeline error that reaches callers. It means
// there is no subject to write a note about.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Message: msg}
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field == "" {
		return "validation: " + e.Message
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrPersistFailed   = errors.New("persist failed")
	ErrNotConfigured   = errors.New("not configured")

	// ErrSourceUnavailable means a required source could not be read. Unlike a
	// ValidationError the same event may succeed later.
	ErrSourceUnavailable = errors.New("source unavailable")
)
