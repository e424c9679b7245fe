// Package auth issues and verifies identity tokens and applies the
// same-email access policy.
package auth

import (
	"fmt"
	"maps"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/journalist-service/server/pkg/errors"
	"github.com/journalist-service/server/pkg/middleware"
)

// DefaultTokenTTL is the lifetime of every issued token.
const DefaultTokenTTL = time.Hour

// EmailClaim is the claim the access policy compares against.
const EmailClaim = "email"

// TokenManager signs and verifies HS256 tokens with a process-wide secret.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager creates a manager for secret. A non-positive ttl selects
// DefaultTokenTTL.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue signs claims with iat and exp added. The caller's claims are not
// validated; iat and exp in the input are overwritten.
func (m *TokenManager) Issue(claims map[string]any) (string, error) {
	now := m.now().UTC()

	mc := jwt.MapClaims{}
	maps.Copy(mc, claims)
	mc["iat"] = jwt.NewNumericDate(now)
	mc["exp"] = jwt.NewNumericDate(now.Add(m.ttl))

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, mc).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses token and checks its signature, algorithm and expiry. Every
// failure wraps apperrors.ErrUnauthorized.
func (m *TokenManager) Verify(token string) (*middleware.Claims, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: empty token", apperrors.ErrUnauthorized)
	}

	mc := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, mc, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: parse token: %w", apperrors.ErrUnauthorized, err)
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("%w: invalid token", apperrors.ErrUnauthorized)
	}

	email, _ := mc[EmailClaim].(string)
	return &middleware.Claims{Email: email, Raw: map[string]any(mc)}, nil
}

// Validator adapts Verify to the middleware's TokenValidator.
func (m *TokenManager) Validator() middleware.TokenValidator {
	return m.Verify
}
