// Package apperr defines the tagged failure taxonomy shared by the workflow
// services. Every business-rule violation carries a machine-readable Kind so
// the HTTP boundary can map it to a status code without inspecting messages.
package apperr

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Kind classifies a failure.
type Kind int

const (
	// Internal is an unexpected fault, never a business-rule violation.
	Internal Kind = iota
	// Unauthorized means the caller identity could not be established.
	Unauthorized
	// Forbidden means the identity is known but role or ownership disallows the action.
	Forbidden
	// NotFound means the referenced entity is absent or soft-deleted.
	NotFound
	// Conflict means a uniqueness or already-terminal-state violation.
	Conflict
	// BadRequest means a temporal or structural precondition failed.
	BadRequest
)

// String returns the stable machine-readable tag for the kind.
func (k Kind) String() string {
	switch k {
	case Unauthorized:
		return "unauthorized"
	case Forbidden:
		return "forbidden"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	case BadRequest:
		return "bad_request"
	default:
		return "internal"
	}
}

// HTTPStatus maps the kind to its status-code equivalent.
func (k Kind) HTTPStatus() int {
	switch k {
	case Unauthorized:
		return fiber.StatusUnauthorized
	case Forbidden:
		return fiber.StatusForbidden
	case NotFound:
		return fiber.StatusNotFound
	case Conflict:
		return fiber.StatusConflict
	case BadRequest:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// Error is a kinded failure with a human-readable detail.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the wrapped cause for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// New builds a kinded error.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf builds a kinded error with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the kind from an error chain, defaulting to Internal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return Internal
}

// IsKind reports whether the error chain carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// MessageOf returns the human-readable detail, or a generic fallback for
// unclassified errors so internals never leak to callers.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "internal server error"
}
