package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInsufficientBalance means a redemption would drive the true balance
	// negative. The balance is re-read inside the redemption transaction, so
	// this also covers the concurrent-redeem race.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrInvalidTransition means a report status change is not in the allowed
	// lifecycle table (skips and reversals are rejected).
	ErrInvalidTransition = errors.New("invalid status transition")
)

// ValidationError reports bad input shape or range.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func validationf(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
