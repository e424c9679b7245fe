package auth

import (
	apperrors "github.com/journalist-service/server/pkg/errors"
	"github.com/journalist-service/server/pkg/middleware"
)

// Authorize allows the request only when the token was issued for
// requestedEmail. Comparison is exact.
func Authorize(claims *middleware.Claims, requestedEmail string) error {
	if claims == nil {
		return apperrors.Unauthorized("missing identity")
	}
	if claims.Email == "" || claims.Email != requestedEmail {
		return apperrors.Forbidden("token does not grant access to reviews of " + requestedEmail)
	}
	return nil
}
