package recs

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks requests rejected before any I/O: malformed
	// identifiers, non-positive top-n or window lengths.
	ErrInvalidInput = errors.New("invalid input")

	// ErrModelNotFound is returned when no trained model artifact exists.
	// Callers map it to a not-found response rather than a failure.
	ErrModelNotFound = errors.New("recommendation model not found")
)

func invalidInputf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// IsInvalidInput reports whether err is an input validation error.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsModelNotFound reports whether err means no trained model exists.
func IsModelNotFound(err error) bool {
	return errors.Is(err, ErrModelNotFound)
}
