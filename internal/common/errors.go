// Package common defines shared constants and sentinel errors used across
// client and server layers of FreightDeck. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorUnavailable  = errors.New("server unavailable")

	// Validation errors carry field messages at the API boundary; this is the
	// bare sentinel for errors.Is matching.
	ErrorValidation = errors.New("validation error")

	// Configuration errors: a schema referencing an unregistered type or an
	// unsupported field kind. Logged and degraded to "render nothing", never
	// thrown into the surrounding flow.
	ErrorConfiguration = errors.New("configuration error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
)
