package service

import (
	"context"
	"log/slog"

	"github.com/journalist-service/server/internal/domain"
	"github.com/journalist-service/server/internal/event"
	"github.com/journalist-service/server/internal/repository"
	"github.com/journalist-service/server/pkg/pagination"
)

// ReviewService manages Review documents.
type ReviewService struct {
	*documentService
}

// NewReviewService creates a ReviewService over coll. A nil events
// publisher discards events.
func NewReviewService(coll repository.Collection, events event.Publisher, logger *slog.Logger) *ReviewService {
	return &ReviewService{documentService: newDocumentService(coll, events, event.AggregateReview, logger)}
}

// List returns the reviews matching filter; the zero filter lists all.
func (s *ReviewService) List(ctx context.Context, filter domain.Filter) ([]domain.Document, error) {
	return s.find(ctx, filter, pagination.All())
}

// ListByEmail returns the reviews written by email. Callers must have
// authorized the request first.
func (s *ReviewService) ListByEmail(ctx context.Context, email string) ([]domain.Document, error) {
	return s.List(ctx, domain.Eq(domain.ReviewEmailField, email))
}

// ListByService returns the reviews of the service with id serviceID.
func (s *ReviewService) ListByService(ctx context.Context, serviceID string) ([]domain.Document, error) {
	return s.List(ctx, domain.Eq(domain.ReviewServiceField, serviceID))
}
