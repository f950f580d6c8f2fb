package registry

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no entry matches the requested identifier
	// or filter.
	ErrNotFound = errors.New("model not found")

	// ErrValidation is wrapped by every *ValidationError.
	ErrValidation = errors.New("validation failed")

	// ErrStoreFailure wraps persistence errors other than not-found, so that
	// callers never mistake an unreachable store for an absent entry.
	ErrStoreFailure = errors.New("store failure")
)

// ValidationError reports malformed or missing input. It is returned before
// the store is touched.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func storeFailure(err error) error {
	return fmt.Errorf("%w: %w", ErrStoreFailure, err)
}
