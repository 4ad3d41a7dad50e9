// Package domainerrors provides coded errors for the service layer.
//
// Stores and infrastructure return sentinel errors (pkg/platform/sentinel);
// services translate those facts into coded domain errors that carry a stable
// machine-usable code plus a human-readable detail. Transport maps codes to
// HTTP statuses (pkg/platform/httputil) and never exposes internal detail.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code is a stable, machine-usable error classification.
type Code string

const (
	// CodeValidation marks missing or malformed request fields.
	CodeValidation Code = "validation_error"
	// CodeInvalidInput marks values that fail domain parsing at trust boundaries.
	CodeInvalidInput Code = "invalid_input"
	// CodeBadRequest marks requests that are well-formed but not processable.
	CodeBadRequest Code = "bad_request"
	// CodeUnauthorized marks missing or unverifiable credentials.
	CodeUnauthorized Code = "unauthorized"
	// CodeForbidden marks authenticated callers without sufficient privilege.
	CodeForbidden Code = "forbidden"
	// CodeNotFound marks lookups that matched nothing.
	CodeNotFound Code = "not_found"
	// CodeConflict marks uniqueness or state conflicts.
	CodeConflict Code = "conflict"
	// CodeExpired marks tokens or records past their expiry.
	CodeExpired Code = "expired"
	// CodeInvariantViolation marks domain invariants broken by a transition.
	CodeInvariantViolation Code = "invariant_violation"
	// CodeInternal marks downstream or unexpected failures. Detail is never
	// returned to callers.
	CodeInternal Code = "internal_error"
)

// Error is a coded domain error. It optionally wraps a cause for logging while
// keeping the outward-facing message free of internal detail.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New constructs a coded error with a caller-facing message.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying cause. The cause is
// preserved for errors.Is/As chains and structured logs.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Is is a readability alias for HasCode.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// GetCode extracts the code from err, defaulting to CodeInternal for uncoded
// errors so transport never leaks an unclassified failure.
func GetCode(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// Detail extracts the caller-facing message from err. Uncoded errors yield an
// empty detail.
func Detail(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return ""
}
