package repository

import (
	"context"

	"github.com/journalist-service/server/internal/domain"
	"github.com/journalist-service/server/pkg/pagination"
)

// Collection is one named set of documents in the record store.
type Collection interface {
	// Insert stores doc under a new id and returns the id. Any _id in doc is
	// ignored.
	Insert(ctx context.Context, doc domain.Document) (string, error)

	// Find returns the documents matching filter inside the page window, in
	// the store's natural order.
	Find(ctx context.Context, filter domain.Filter, page pagination.Params) ([]domain.Document, error)

	// FindByID returns the document with id, or nil and no error when none
	// exists. A malformed id yields domain.ErrInvalidID.
	FindByID(ctx context.Context, id string) (domain.Document, error)

	// UpdateByID merges fields into the document with id. It never inserts
	// and never changes _id.
	UpdateByID(ctx context.Context, id string, fields domain.Document) (domain.UpdateResult, error)

	// DeleteByID removes the document with id, if any.
	DeleteByID(ctx context.Context, id string) (domain.DeleteResult, error)

	// EstimatedCount returns the size of the whole collection, ignoring any
	// filter.
	EstimatedCount(ctx context.Context) (int64, error)
}

// Store hands out collections and owns the underlying connection.
type Store interface {
	Collection(name string) Collection
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
