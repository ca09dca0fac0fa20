package club

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation matches every *ValidationError.
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrNotConfirmed = errors.New("delete was not confirmed")
	ErrInFlight     = errors.New("the same operation is already in progress")
)

// ValidationError reports input rejected before any backend call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
