package tasks

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a task lookup matches nothing.
var ErrNotFound = errors.New("task not found")

// ValidationError reports an invalid or missing field. It is surfaced before
// any store mutation is attempted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
