// Package errors defines the coded errors the Kanine services return.
//
// Every Code maps to exactly one HTTP status. Handlers return these errors
// unchanged; the API layer renders them as error envelopes:
//
//	{"v":1,"success":false,"code":"NOT_FOUND","message":"book not found"}
//
// A resource owned by another user is reported with the same NOT_FOUND code
// as a missing one.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Standard library helpers, so callers need a single errors import.
var (
	Is  = errors.Is
	As  = errors.As
	New = errors.New
)

// Code is the machine-readable error code sent to clients.
type Code string

// Codes sent to clients.
const (
	CodeNotFound           Code = "NOT_FOUND"
	CodeAlreadyExists      Code = "ALREADY_EXISTS"
	CodeConflict           Code = "CONFLICT"
	CodeUnauthorized       Code = "UNAUTHORIZED"
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodeTokenExpired       Code = "TOKEN_EXPIRED"
	CodeForbidden          Code = "FORBIDDEN"
	CodeValidation         Code = "VALIDATION"
	CodeTooLarge           Code = "TOO_LARGE"
	CodeRateLimited        Code = "RATE_LIMITED"
	CodeInternal           Code = "INTERNAL"
)

var codeStatus = map[Code]int{
	CodeNotFound:           http.StatusNotFound,
	CodeAlreadyExists:      http.StatusConflict,
	CodeConflict:           http.StatusConflict,
	CodeUnauthorized:       http.StatusUnauthorized,
	CodeInvalidCredentials: http.StatusUnauthorized,
	CodeTokenExpired:       http.StatusUnauthorized,
	CodeForbidden:          http.StatusForbidden,
	CodeValidation:         http.StatusBadRequest,
	CodeTooLarge:           http.StatusRequestEntityTooLarge,
	CodeRateLimited:        http.StatusTooManyRequests,
}

// HTTPStatus returns the status for c. Unknown codes are 500.
func (c Code) HTTPStatus() int {
	if status, ok := codeStatus[c]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Error is a coded error. Details, when set, is rendered verbatim in the
// envelope; validation errors use a map of field name to problem.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error
}

func (e *Error) Error() string {
	if e.cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.cause)
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches any *Error carrying the same Code, so sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	return errors.As(target, &t) && t.Code == e.Code
}

// HTTPStatus returns the HTTP status for the error's code.
func (e *Error) HTTPStatus() int { return e.Code.HTTPStatus() }

// GetStatus satisfies huma.StatusError so handlers can return domain errors directly.
func (e *Error) GetStatus() int { return e.HTTPStatus() }

// WithDetails returns a copy of e carrying details.
func (e *Error) WithDetails(details any) *Error {
	c := *e
	c.Details = details
	return &c
}

// Sentinels for errors.Is. Only the Code is compared.
var (
	ErrNotFound      = &Error{Code: CodeNotFound, Message: "not found"}
	ErrAlreadyExists = &Error{Code: CodeAlreadyExists, Message: "already exists"}
	ErrUnauthorized  = &Error{Code: CodeUnauthorized, Message: "unauthorized"}
	ErrValidation    = &Error{Code: CodeValidation, Message: "validation error"}
)

func newError(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// NotFound reports a missing resource, or one the caller does not own.
func NotFound(msg string) *Error { return newError(CodeNotFound, msg) }

// AlreadyExists reports a uniqueness violation such as a duplicate category name.
func AlreadyExists(msg string) *Error { return newError(CodeAlreadyExists, msg) }

// Unauthorized reports a missing or invalid access token.
func Unauthorized(msg string) *Error { return newError(CodeUnauthorized, msg) }

// InvalidCredentials reports a failed login.
func InvalidCredentials(msg string) *Error { return newError(CodeInvalidCredentials, msg) }

// TokenExpired reports an access token past its expiry.
func TokenExpired(msg string) *Error { return newError(CodeTokenExpired, msg) }

// Forbidden reports an operation the server refuses for everyone, such as
// sign-up on a closed server.
func Forbidden(msg string) *Error { return newError(CodeForbidden, msg) }

// TooLarge reports a body over a size limit.
func TooLarge(msg string) *Error { return newError(CodeTooLarge, msg) }

// Validation reports bad input.
func Validation(msg string) *Error { return newError(CodeValidation, msg) }

// Validationf is Validation with a formatted message.
func Validationf(format string, args ...any) *Error {
	return newError(CodeValidation, fmt.Sprintf(format, args...))
}

// ValidationWithDetails reports bad input with per-field problems.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// Wrap attaches a code and client-facing message to err. The cause is kept
// for logging and errors.Is, and never rendered to clients.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}
