package model

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is returned when a required field is missing or malformed.
	ErrValidation = errors.New("model: validation failed")

	// ErrDataIntegrity is returned when a stored relationship no longer holds,
	// e.g. a Review whose foreign key does not resolve. It indicates a bug in
	// the write path rather than bad input.
	ErrDataIntegrity = errors.New("model: data integrity violated")
)

// FieldError reports which field of which entity failed validation.
// It matches ErrValidation with errors.Is.
type FieldError struct {
	Kind   Kind
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("model: %s.%s %s", e.Kind, e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error { return ErrValidation }

func fieldError(kind Kind, field, reason string) error {
	return &FieldError{Kind: kind, Field: field, Reason: reason}
}

func integrityError(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrDataIntegrity}, args...)...)
}
