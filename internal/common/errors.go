// Package common defines shared constants and sentinel errors used across
// the storage, service and transport layers. Callers should use errors.Is to
// match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorValidation   = errors.New("validation error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired is returned for an authentic token past its expiry.
	// It wraps ErrInvalidToken.
	ErrTokenExpired = fmt.Errorf("%w: token expired", ErrInvalidToken)

	// Login throttling.
	ErrRateLimited = errors.New("too many attempts")

	// Share link consumption failures. All of them wrap ErrorForbidden.
	ErrLinkInactive = fmt.Errorf("%w: link is inactive", ErrorForbidden)
	ErrLinkExpired  = fmt.Errorf("%w: link has expired", ErrorForbidden)
	ErrLinkMaxUses  = fmt.Errorf("%w: link has reached maximum uses", ErrorForbidden)
)

// ValidationError carries a human-readable reason for rejected input.
// It matches ErrorValidation with errors.Is.
type ValidationError struct {
	Message string
}

// NewValidationError returns a *ValidationError with the given message.
func NewValidationError(msg string) error {
	return &ValidationError{Message: msg}
}

func (e *ValidationError) Error() string {
	return ErrorValidation.Error() + ": " + e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrorValidation
}
