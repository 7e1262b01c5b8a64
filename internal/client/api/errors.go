package api

import (
	"fmt"
	"strings"

	"github.com/mgallardo/freightdeck/internal/common"
)

// Error is a structured remote failure. Validation rejections carry a list of
// field messages in Errors; other failures carry a single Message.
type Error struct {
	StatusCode int
	Message    string
	Errors     []string
}

func (e *Error) Error() string {
	if len(e.Errors) > 0 {
		return fmt.Sprintf("remote validation failed: %s", strings.Join(e.Errors, ", "))
	}
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("remote call failed with status %d", e.StatusCode)
}

// IsValidation reports whether the failure is a validation rejection the user
// can correct, as opposed to a generic remote failure.
func (e *Error) IsValidation() bool {
	return len(e.Errors) > 0 || e.StatusCode == 422
}

// Unwrap lets errors.Is match the shared sentinels.
func (e *Error) Unwrap() error {
	if e.IsValidation() {
		return common.ErrorValidation
	}
	switch e.StatusCode {
	case 401, 403:
		return common.ErrorUnauthorized
	case 404:
		return common.ErrorNotFound
	}
	return common.ErrorInternal
}

// UserMessage renders the failure the way the console shows it: the field
// message list joined with ", ", a single server message, or a generic
// fallback.
func (e *Error) UserMessage() string {
	if len(e.Errors) > 0 {
		return strings.Join(e.Errors, ", ")
	}
	if e.Message != "" {
		return e.Message
	}
	return "Request failed. Please try again."
}
