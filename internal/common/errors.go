// Sentinel errors shared by the console and server layers. Callers match
// them with errors.Is.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")

	// Validation errors.
	ErrorValidation = errors.New("validation error")
	ErrUnknownKey   = errors.New("unknown key")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")

	// Step-up errors.
	ErrStepUpStale    = errors.New("step-up verification expired")
	ErrStepUpRejected = errors.New("step-up code rejected")

	// Impersonation errors.
	ErrImpersonationActive   = errors.New("impersonation already active")
	ErrImpersonationRequired = errors.New("not allowed while impersonating")
)
