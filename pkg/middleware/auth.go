package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	apperrors "github.com/journalist-service/server/pkg/errors"
	"github.com/journalist-service/server/pkg/httputil"
	"github.com/journalist-service/server/pkg/logger"
)

type contextKeyType string

const claimsKey contextKeyType = "claims"

// Claims is the verified identity extracted from a bearer token.
type Claims struct {
	Email string
	Raw   map[string]any
}

// TokenValidator verifies a raw token and returns its claims.
type TokenValidator func(token string) (*Claims, error)

// Auth rejects requests without a valid bearer token with 401 and stores the
// verified claims in the request context.
func Auth(validate TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := BearerToken(r)
			if err != nil {
				httputil.WriteError(w, r, err, nil)
				return
			}

			claims, err := validate(token)
			if err != nil {
				logger.FromContext(r.Context()).WarnContext(r.Context(), "token rejected",
					slog.String("path", r.URL.Path),
					slog.String("error", err.Error()),
				)
				httputil.WriteError(w, r, apperrors.Unauthorized("invalid or expired token"), nil)
				return
			}

			ctx := WithClaims(r.Context(), claims)
			if claims.Email != "" {
				ctx = logger.WithEmail(ctx, claims.Email)
				ctx = logger.NewContext(ctx, logger.FromContext(ctx).With(slog.String("email", claims.Email)))
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AuthWhen applies Auth only to requests for which required returns true;
// other requests pass through unauthenticated.
func AuthWhen(required func(*http.Request) bool, validate TokenValidator) func(http.Handler) http.Handler {
	auth := Auth(validate)
	return func(next http.Handler) http.Handler {
		authed := auth(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if required(r) {
				authed.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// BearerToken extracts the token from an `Authorization: Bearer <token>` header.
func BearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", apperrors.Unauthorized("missing authorization header")
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
		return "", apperrors.Unauthorized("invalid authorization header format")
	}
	return strings.TrimSpace(token), nil
}

// ClaimsFromContext returns the claims stored by Auth, or nil.
func ClaimsFromContext(ctx context.Context) *Claims {
	if c, ok := ctx.Value(claimsKey).(*Claims); ok {
		return c
	}
	return nil
}

// WithClaims stores claims in ctx the way Auth does.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}
