package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a domain failure so transports can translate it without
// inspecting message text.
type Code string

const (
	// CodeNotFound signals a missing product or case.
	CodeNotFound Code = "not_found"
	// CodeConflict signals a duplicate identity on creation.
	CodeConflict Code = "conflict"
	// CodeBadRequest signals an immutable-field or payload validation failure.
	CodeBadRequest Code = "bad_request"
	// CodeIllegalTransition signals an action outside the legal-action set for
	// the case's current state.
	CodeIllegalTransition Code = "illegal_transition"
	// CodeDispatchRejected signals a product-specific dispatcher precondition
	// failure. The message carries the human-readable reason.
	CodeDispatchRejected Code = "dispatch_rejected"
	// CodeInvalidState signals a case record carrying a state outside the
	// closed enumeration. This is a data-integrity bug, not a caller mistake.
	CodeInvalidState Code = "invalid_state"
	// CodeUnauthorized signals a missing or invalid caller identity.
	CodeUnauthorized Code = "unauthorized"
	// CodeInternal is the fallback for unexpected failures.
	CodeInternal Code = "internal"
)

// Error is the domain error value surfaced to callers of the case service.
type Error struct {
	Code    Code
	Message string
	wrapped error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.wrapped }

// New builds a domain error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf builds a domain error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message while preserving the cause for errors.Is.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, wrapped: cause}
}

// CodeOf extracts the domain code from err, or CodeInternal when err is not a
// domain error.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// IsCode reports whether err carries the given domain code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// ToHTTPStatus maps a domain code to its HTTP status for the REST boundary.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeBadRequest, CodeIllegalTransition, CodeDispatchRejected:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeInvalidState, CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
