package http

import (
	"log/slog"
	"net/http"

	"github.com/journalist-service/server/internal/auth"
	"github.com/journalist-service/server/pkg/httputil"
)

// TokenResponse is the body returned by POST /jwt.
type TokenResponse struct {
	Token string `json:"token"`
}

// TokenHandler issues identity tokens.
type TokenHandler struct {
	tokens *auth.TokenManager
	logger *slog.Logger
}

// NewTokenHandler creates a new token HTTP handler.
func NewTokenHandler(tokens *auth.TokenManager, logger *slog.Logger) *TokenHandler {
	return &TokenHandler{tokens: tokens, logger: logger}
}

// IssueToken handles POST /jwt. The submitted object becomes the token's
// claims as-is.
func (h *TokenHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	claims, err := decodeDocument(w, r)
	if err != nil {
		httputil.WriteFailure(w, r, err, httputil.FieldError, h.logger)
		return
	}

	token, err := h.tokens.Issue(claims)
	if err != nil {
		httputil.WriteFailure(w, r, err, httputil.FieldError, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, TokenResponse{Token: token})
}
