// Package common defines shared constants and sentinel errors used across
// the client and server layers of authgate. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Request validation (missing required fields).
	ErrValidation = errors.New("validation error")

	// Identity-provider call failures. Wrapped with fmt.Errorf so the
	// provider's own message can be surfaced to the client.
	ErrProvider = errors.New("identity provider error")

	// Authentication errors.
	ErrMissingCredentials = errors.New("missing credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrSubjectMismatch    = errors.New("token subject mismatch")

	// Authorization errors.
	ErrForbidden = errors.New("insufficient permissions")
)
