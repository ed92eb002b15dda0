// Package errors provides coded domain errors shared by the store, services,
// CLI and HTTP layer.
//
// Every failure a caller may need to branch on carries a Code. Matching is by
// code, so a specific error such as DuplicateUser still satisfies
// errors.Is(err, errors.ErrAlreadyExists):
//
//	err := docs.Update(ctx, mutate)
//	switch {
//	case errors.Is(err, errors.ErrMalformedDocument):
//	    // a stored document no longer parses
//	case errors.Is(err, errors.ErrStorage):
//	    // the write never landed
//	}
//
// The HTTP layer maps codes to statuses with Code.HTTPStatus.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Re-export standard library functions for convenience.
var (
	Is   = errors.Is
	As   = errors.As
	Join = errors.Join
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the application.
const (
	CodeNotFound           Code = "NOT_FOUND"
	CodeAlreadyExists      Code = "ALREADY_EXISTS"
	CodeUnauthorized       Code = "UNAUTHORIZED"
	CodeForbidden          Code = "FORBIDDEN"
	CodeValidation         Code = "VALIDATION"
	CodeMalformedDocument  Code = "MALFORMED_DOCUMENT"
	CodeStorage            Code = "STORAGE"
	CodeInternal           Code = "INTERNAL"
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodeTooManyRequests    Code = "TOO_MANY_REQUESTS"
)

// HTTPStatus returns the appropriate HTTP status code for an error code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeAlreadyExists:
		return http.StatusConflict
	case CodeUnauthorized, CodeInvalidCredentials:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeValidation, CodeMalformedDocument:
		return http.StatusBadRequest
	case CodeTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error with a code, message, and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error  // unexported, for wrapping
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target matches this error.
// Matches if target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithDetails returns a new error with additional details.
func (e *Error) WithDetails(details any) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		cause:   e.cause,
	}
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		cause:   err,
	}
}

// Sentinel errors for use with errors.Is().
var (
	ErrNotFound           = &Error{Code: CodeNotFound, Message: "not found"}
	ErrAlreadyExists      = &Error{Code: CodeAlreadyExists, Message: "already exists"}
	ErrUnauthorized       = &Error{Code: CodeUnauthorized, Message: "unauthorized"}
	ErrForbidden          = &Error{Code: CodeForbidden, Message: "forbidden"}
	ErrValidation         = &Error{Code: CodeValidation, Message: "validation error"}
	ErrMalformedDocument  = &Error{Code: CodeMalformedDocument, Message: "malformed document"}
	ErrStorage            = &Error{Code: CodeStorage, Message: "storage error"}
	ErrInternal           = &Error{Code: CodeInternal, Message: "internal error"}
	ErrInvalidCredentials = &Error{Code: CodeInvalidCredentials, Message: "invalid credentials"}
	ErrTooManyRequests    = &Error{Code: CodeTooManyRequests, Message: "too many requests"}

	// ErrDuplicateUser is the username-collision flavour of ErrAlreadyExists.
	ErrDuplicateUser = ErrAlreadyExists
)

func newError(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

func newf(code Code, format string, args ...any) *Error {
	return newError(code, fmt.Sprintf(format, args...))
}

// NotFound creates a not found error.
func NotFound(msg string) *Error { return newError(CodeNotFound, msg) }

// NotFoundf creates a not found error with formatted message.
func NotFoundf(format string, args ...any) *Error { return newf(CodeNotFound, format, args...) }

// DuplicateUser reports a username collision under case folding.
func DuplicateUser(username string) *Error {
	return newf(CodeAlreadyExists, "username %q already exists", username)
}

func Unauthorized(msg string) *Error { return newError(CodeUnauthorized, msg) }
func Forbidden(msg string) *Error { return newError(CodeForbidden, msg) }
func InvalidCredentials(msg string) *Error { return newError(CodeInvalidCredentials, msg) }
func TooManyRequests(msg string) *Error { return newError(CodeTooManyRequests, msg) }
func Internal(msg string) *Error { return newError(CodeInternal, msg) }

// Internalf creates an internal error with formatted message.
func Internalf(format string, args ...any) *Error { return newf(CodeInternal, format, args...) }

// Validation creates a validation error.
func Validation(msg string) *Error { return newError(CodeValidation, msg) }

// Validationf creates a validation error with formatted message.
func Validationf(format string, args ...any) *Error { return newf(CodeValidation, format, args...) }

// ValidationWithDetails attaches per-field problems to a validation error.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// MalformedDocument reports a stored or uploaded document that does not
// parse as the expected record list.
func MalformedDocument(msg string, cause error) *Error {
	return Wrap(cause, CodeMalformedDocument, msg)
}

// Storage reports a failed write. Reads never produce it; unreadable
// documents degrade to empty instead.
func Storage(msg string, cause error) *Error {
	return Wrap(cause, CodeStorage, msg)
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}

// CodeOf returns the code of the first domain error in err's chain, or CodeInternal.
func CodeOf(err error) Code {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return CodeInternal
}
