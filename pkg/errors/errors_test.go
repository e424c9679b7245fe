package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_ErrorString(t *testing.T) {
	withCause := &AppError{Code: CodeInternal, Message: "store failed", Err: fmt.Errorf("server selection timeout")}
	assert.Equal(t, "INTERNAL_ERROR: store failed: server selection timeout", withCause.Error())

	bare := &AppError{Code: CodeForbidden, Message: "email mismatch"}
	assert.Equal(t, "FORBIDDEN: email mismatch", bare.Error())
}

func TestAppError_Unwrap(t *testing.T) {
	assert.True(t, errors.Is(Forbidden("x"), ErrForbidden))
	assert.Nil(t, (&AppError{Code: "X"}).Unwrap())
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		code     string
		status   int
		sentinel error
	}{
		{"invalid input", InvalidInput("bad page"), CodeInvalidInput, http.StatusBadRequest, ErrInvalidInput},
		{"unauthorized", Unauthorized("missing token"), CodeUnauthorized, http.StatusUnauthorized, ErrUnauthorized},
		{"forbidden", Forbidden("email mismatch"), CodeForbidden, http.StatusForbidden, ErrForbidden},
		{"rate limited", RateLimited("slow down"), CodeRateLimited, http.StatusTooManyRequests, ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotNil(t, tt.err)
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.Status)
			assert.ErrorIs(t, tt.err, tt.sentinel)
		})
	}
}

func TestInternal_HidesCause(t *testing.T) {
	cause := fmt.Errorf("connection reset")
	err := Internal(cause)
	assert.Equal(t, "an internal error occurred", err.Message)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.ErrorIs(t, err, cause)
}

func TestHTTPStatusAndCode(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"app error", Forbidden("x"), http.StatusForbidden, CodeForbidden},
		{"wrapped app error", fmt.Errorf("outer: %w", Unauthorized("x")), http.StatusUnauthorized, CodeUnauthorized},
		{"wrapped sentinel", fmt.Errorf("%w: parse token", ErrUnauthorized), http.StatusUnauthorized, CodeUnauthorized},
		{"invalid input sentinel", ErrInvalidInput, http.StatusBadRequest, CodeInvalidInput},
		{"rate limited sentinel", ErrRateLimited, http.StatusTooManyRequests, CodeRateLimited},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError, CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, HTTPStatus(tt.err))
			assert.Equal(t, tt.code, Code(tt.err))
		})
	}
}
