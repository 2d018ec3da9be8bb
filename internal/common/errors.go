// Package common defines shared sentinel errors and small utilities used
// across Poseidon components. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrInternal     = errors.New("internal error")
	ErrUnauthorized = errors.New("invalid username or password")
	ErrForbidden    = errors.New("forbidden")

	// Validation errors. Field-level details travel alongside this sentinel,
	// see services.ValidationError.
	ErrValidation = errors.New("validation error")

	// Auth token errors (invalid, malformed or expired).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Session lifecycle errors.
	ErrSessionExpired = errors.New("session expired")
)
