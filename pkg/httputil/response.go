package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/journalist-service/server/pkg/errors"
	"github.com/journalist-service/server/pkg/logger"
)

// Envelope is the in-band result shape for mutations and failed lookups.
// Failures are reported with HTTP 200 and Success=false; callers inspect
// Success rather than the status code.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	ID      string `json:"id,omitempty"`
}

// ErrorResponse is the body written for the non-2xx auth failures.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// FailureField selects which envelope key carries the failure text.
type FailureField int

const (
	// FieldMessage reports the failure under "message" (create, update).
	FieldMessage FailureField = iota
	// FieldError reports the failure under "error" (lookups, listings, delete).
	FieldError
)

// WriteJSON writes v as JSON with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteText writes a plain-text body.
func WriteText(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(text))
}

// WriteSuccess writes {success:true, message, id} with HTTP 200.
func WriteSuccess(w http.ResponseWriter, message, id string) {
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Message: message, ID: id})
}

// WriteFailure converts err into an in-band failure envelope with HTTP 200.
// The failure is logged at warn level with the request-scoped logger when
// present, otherwise with fallback.
func WriteFailure(w http.ResponseWriter, r *http.Request, err error, field FailureField, fallback *slog.Logger) {
	requestLogger(r, fallback).WarnContext(r.Context(), "request failed",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)

	env := Envelope{Success: false}
	if field == FieldError {
		env.Error = err.Error()
	} else {
		env.Message = err.Error()
	}
	WriteJSON(w, http.StatusOK, env)
}

// WriteError writes a status-coded error. It is reserved for failures that
// must not be reported in-band: authentication, authorization, throttling
// and panics. Internal causes are logged and replaced by a generic message.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	resp := ErrorResponse{
		Code:      apperrors.Code(err),
		RequestID: logger.CorrelationIDFromContext(r.Context()),
	}
	status := apperrors.HTTPStatus(err)

	var appErr *apperrors.AppError
	switch {
	case status == http.StatusInternalServerError:
		requestLogger(r, fallback).ErrorContext(r.Context(), "internal error",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
		resp.Message = "an internal error occurred"
	case errors.As(err, &appErr):
		resp.Message = appErr.Message
	default:
		resp.Message = err.Error()
	}

	WriteJSON(w, status, resp)
}

// requestLogger prefers the logger installed by the RequestLogger middleware.
func requestLogger(r *http.Request, fallback *slog.Logger) *slog.Logger {
	l := logger.FromContext(r.Context())
	if l == slog.Default() && fallback != nil {
		return fallback
	}
	return l
}
