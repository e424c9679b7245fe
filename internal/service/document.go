// Package service holds the business operations behind the HTTP handlers.
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

// documentService implements the operations shared by every collection.
// Events are published after the store call succeeds; a failed publish is
// logged and never fails the operation.
type documentService struct {
	coll      repository.Collection
	events    event.Publisher
	aggregate string
	logger    *slog.Logger
}

func newDocumentService(coll repository.Collection, events event.Publisher, aggregate string, logger *slog.Logger) *documentService {
	if events == nil {
		events = event.Discard{}
	}
	return &documentService{
		coll:      coll,
		events:    events,
		aggregate: aggregate,
		logger:    logger,
	}
}

// Create stores doc and returns its new id.
func (s *documentService) Create(ctx context.Context, doc domain.Document) (string, error) {
	if doc == nil {
		doc = domain.Document{}
	}

	id, err := s.coll.Insert(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", s.aggregate, err)
	}

	s.logger.InfoContext(ctx, s.aggregate+" created", slog.String("id", id))

	stored := doc.WithoutID()
	stored[domain.IDField] = id
	s.notify(ctx, "created", s.events.DocumentCreated(ctx, s.aggregate, stored))
	return id, nil
}

// Get returns the document with id, or nil when none exists.
func (s *documentService) Get(ctx context.Context, id string) (domain.Document, error) {
	doc, err := s.coll.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", s.aggregate, err)
	}
	return doc, nil
}

// Update merges fields into the document with id. A zero MatchedCount means
// no such document exists.
func (s *documentService) Update(ctx context.Context, id string, fields domain.Document) (domain.UpdateResult, error) {
	res, err := s.coll.UpdateByID(ctx, id, fields)
	if err != nil {
		return domain.UpdateResult{}, fmt.Errorf("update %s: %w", s.aggregate, err)
	}

	if res.ModifiedCount > 0 {
		s.logger.InfoContext(ctx, s.aggregate+" updated", slog.String("id", id))
		s.notify(ctx, "updated", s.events.DocumentUpdated(ctx, s.aggregate, id, fields.WithoutID()))
	}
	return res, nil
}

// Delete removes the document with id. Deleting an absent id succeeds with a
// zero DeletedCount.
func (s *documentService) Delete(ctx context.Context, id string) (domain.DeleteResult, error) {
	res, err := s.coll.DeleteByID(ctx, id)
	if err != nil {
		return domain.DeleteResult{}, fmt.Errorf("delete %s: %w", s.aggregate, err)
	}

	if res.DeletedCount > 0 {
		s.logger.InfoContext(ctx, s.aggregate+" deleted", slog.String("id", id))
		s.notify(ctx, "deleted", s.events.DocumentDeleted(ctx, s.aggregate, id))
	}
	return res, nil
}

func (s *documentService) find(ctx context.Context, filter domain.Filter, page pagination.Params) ([]domain.Document, error) {
	docs, err := s.coll.Find(ctx, filter, page)
	if err != nil {
		return nil, fmt.Errorf("list %ss: %w", s.aggregate, err)
	}
	return docs, nil
}

func (s *documentService) notify(ctx context.Context, action string, err error) {
	if err != nil {
		s.logger.WarnContext(ctx, "failed to publish "+s.aggregate+" "+action+" event",
			slog.String("error", err.Error()),
		)
	}
}
