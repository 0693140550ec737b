package batch

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned for malformed or conflicting selectors.
	ErrInvalidInput = errors.New("invalid input")

	// ErrOutOfRange is wrapped by OutOfRangeError.
	ErrOutOfRange = errors.New("batch index out of range")
)

// OutOfRangeError is returned when an index selects past the oldest batch.
type OutOfRangeError struct {
	Requested int
	Count     int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("Requested batch %d, but only %d batch(es) found.", e.Requested, e.Count)
}

func (e *OutOfRangeError) Unwrap() error { return ErrOutOfRange }

// invalidInput formats a message that unwraps to ErrInvalidInput.
func invalidInput(format string, args ...any) error {
	return &inputError{msg: fmt.Sprintf(format, args...)}
}

type inputError struct{ msg string }

func (e *inputError) Error() string { return e.msg }

func (e *inputError) Unwrap() error { return ErrInvalidInput }
