package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound is returned when a requested resource is not found.
	ErrNotFound = errors.New("not found")
	// ErrExternalService is returned when an external service call fails.
	// Handlers map this to a 502 so upstream outages are distinguishable
	// from bugs in this process.
	ErrExternalService = errors.New("external service error")
	// ErrMalformedResponse is returned when an upstream reply cannot be
	// parsed into the shape the caller requires (e.g. non-JSON auto-fill
	// output). Never coerced into a partial answer.
	ErrMalformedResponse = errors.New("malformed upstream response")
)

// ValidationError represents a validation error with a field name.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

// WrapError wraps an error with additional context.
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// External marks err as an external-service failure while preserving the
// original cause for logging.
func External(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrExternalService, err)
}
