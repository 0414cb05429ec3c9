package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced synchronously from edit and lookup operations.
var (
	// ErrNotFound is returned when an operation targets a shape or board
	// that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrEmptyHistory is returned by undo/redo when no operations remain.
	ErrEmptyHistory = errors.New("edit history is empty")

	// ErrSessionClosed is returned when applying to a closed editing session.
	ErrSessionClosed = errors.New("editing session closed")
)

// ValidationError describes malformed geometry or an ill-formed operation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid geometry: " + e.Reason
	}
	return fmt.Sprintf("invalid geometry: %s: %s", e.Field, e.Reason)
}

// Invalidf builds a ValidationError for the given field.
func Invalidf(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
