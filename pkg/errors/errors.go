// Package errors defines the error taxonomy shared by the HTTP and business
// layers. Only authentication, authorization, throttling and panics map to a
// non-2xx status; store failures are reported in-band by the handlers.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Machine-readable error codes.
const (
	CodeInvalidInput = "INVALID_INPUT"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeRateLimited  = "RATE_LIMITED"
	CodeInternal     = "INTERNAL_ERROR"
)

// Sentinels for errors.Is checks across layers.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrRateLimited  = errors.New("rate limited")
	ErrInternal     = errors.New("internal error")
)

// kind ties a sentinel to its code and status.
type kind struct {
	sentinel error
	code     string
	status   int
}

var kinds = []kind{
	{ErrInvalidInput, CodeInvalidInput, http.StatusBadRequest},
	{ErrUnauthorized, CodeUnauthorized, http.StatusUnauthorized},
	{ErrForbidden, CodeForbidden, http.StatusForbidden},
	{ErrRateLimited, CodeRateLimited, http.StatusTooManyRequests},
	{ErrInternal, CodeInternal, http.StatusInternalServerError},
}

// AppError is an error with a code and HTTP status attached.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func newAppError(sentinel error, message string) *AppError {
	k := lookup(sentinel)
	return &AppError{Code: k.code, Message: message, Status: k.status, Err: sentinel}
}

// InvalidInput creates a 400 error.
func InvalidInput(message string) *AppError {
	return newAppError(ErrInvalidInput, message)
}

// Unauthorized creates a 401 error for a missing or rejected identity token.
func Unauthorized(message string) *AppError {
	return newAppError(ErrUnauthorized, message)
}

// Forbidden creates a 403 error for a valid identity denied by policy.
func Forbidden(message string) *AppError {
	return newAppError(ErrForbidden, message)
}

// RateLimited creates a 429 error.
func RateLimited(message string) *AppError {
	return newAppError(ErrRateLimited, message)
}

// Internal creates a 500 error. The cause is kept for logging and never
// shown to the client.
func Internal(cause error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "an internal error occurred",
		Status:  http.StatusInternalServerError,
		Err:     cause,
	}
}

// lookup returns the kind err belongs to, defaulting to internal.
func lookup(err error) kind {
	for _, k := range kinds {
		if errors.Is(err, k.sentinel) {
			return k
		}
	}
	return kinds[len(kinds)-1]
}

// HTTPStatus returns the status code for err.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	return lookup(err).status
}

// Code returns the machine-readable code for err.
func Code(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return lookup(err).code
}
