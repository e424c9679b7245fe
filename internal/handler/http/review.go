package http

import (
	"log/slog"
	"net/http"

	"github.com/journalist-service/server/internal/auth"
	"github.com/journalist-service/server/internal/domain"
	"github.com/journalist-service/server/internal/service"
	"github.com/journalist-service/server/pkg/httputil"
	"github.com/journalist-service/server/pkg/middleware"
)

// ReviewHandler handles HTTP requests for review documents.
type ReviewHandler struct {
	documentHandler
	reviews *service.ReviewService
}

// NewReviewHandler creates a new review HTTP handler.
func NewReviewHandler(svc *service.ReviewService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{
		documentHandler: documentHandler{svc: svc, entity: "Review", logger: logger},
		reviews:         svc,
	}
}

// requiresToken reports whether a review listing is filtered by owner email
// and therefore needs a verified bearer token.
func requiresToken(r *http.Request) bool {
	return r.URL.Query().Has(domain.ReviewEmailField)
}

// ListReviews handles GET /reviews. With ?email= the caller must hold a token
// for that email; with ?service= the listing is public; otherwise every
// review is returned.
func (h *ReviewHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ctx := r.Context()

	var (
		docs []domain.Document
		err  error
	)

	switch {
	case q.Has(domain.ReviewEmailField):
		email := q.Get(domain.ReviewEmailField)
		if authErr := auth.Authorize(middleware.ClaimsFromContext(ctx), email); authErr != nil {
			httputil.WriteError(w, r, authErr, h.logger)
			return
		}
		docs, err = h.reviews.ListByEmail(ctx, email)
	case q.Has(domain.ReviewServiceField):
		docs, err = h.reviews.ListByService(ctx, q.Get(domain.ReviewServiceField))
	default:
		docs, err = h.reviews.List(ctx, domain.Filter{})
	}

	if err != nil {
		httputil.WriteFailure(w, r, err, httputil.FieldError, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, docs)
}
