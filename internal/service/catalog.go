package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/journalist-service/server/internal/domain"
	"github.com/journalist-service/server/internal/event"
	"github.com/journalist-service/server/internal/repository"
	"github.com/journalist-service/server/pkg/pagination"
)

// ServicePage is one page of the service listing. Count is the size of the
// whole collection, not of the page.
type ServicePage struct {
	Count    int64             `json:"count"`
	Services []domain.Document `json:"services"`
}

// CatalogService manages Service documents.
type CatalogService struct {
	*documentService
}

// NewCatalogService creates a CatalogService over coll. A nil events
// publisher discards events.
func NewCatalogService(coll repository.Collection, events event.Publisher, logger *slog.Logger) *CatalogService {
	return &CatalogService{documentService: newDocumentService(coll, events, event.AggregateService, logger)}
}

// List returns every service.
func (s *CatalogService) List(ctx context.Context) ([]domain.Document, error) {
	return s.find(ctx, domain.Filter{}, pagination.All())
}

// ListPage returns the services inside p's window together with the
// collection's estimated total.
func (s *CatalogService) ListPage(ctx context.Context, p pagination.Params) (*ServicePage, error) {
	docs, err := s.find(ctx, domain.Filter{}, p)
	if err != nil {
		return nil, err
	}

	count, err := s.coll.EstimatedCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("count services: %w", err)
	}

	return &ServicePage{Count: count, Services: docs}, nil
}
