// Package memory is an in-process record store. It backs local development
// (STORE_DRIVER=memory) and the handler tests.
package memory

import (
	"context"
	"reflect"
	"sync"

	"github.com/journalist-service/server/internal/domain"
	"github.com/journalist-service/server/internal/repository"
	"github.com/journalist-service/server/pkg/database"
	"github.com/journalist-service/server/pkg/pagination"
)

// Store holds every collection in memory. The zero value is not usable; call
// NewStore.
type Store struct {
	mu          sync.Mutex
	collections map[string]*Collection
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{collections: make(map[string]*Collection)}
}

// Collection returns the named collection, creating it on first use.
func (s *Store) Collection(name string) repository.Collection {
	return s.collection(name)
}

func (s *Store) collection(name string) *Collection {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[name]
	if !ok {
		c = &Collection{name: name, docs: make(map[string]domain.Document)}
		s.collections[name] = c
	}
	return c
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close(context.Context) error { return nil }

// Collection keeps documents in insertion order.
type Collection struct {
	name  string
	mu    sync.RWMutex
	order []string
	docs  map[string]domain.Document
}

func (c *Collection) trace(ctx context.Context, op string) func(error) {
	_, end := database.TraceQuery(ctx, database.SystemMemory, c.name+"."+op, "")
	return end
}

func (c *Collection) Insert(ctx context.Context, doc domain.Document) (id string, err error) {
	defer c.trace(ctx, "insert")(nil)

	id = domain.NewID()
	stored := cloneDocument(doc.WithoutID())
	stored[domain.IDField] = id

	c.mu.Lock()
	c.docs[id] = stored
	c.order = append(c.order, id)
	c.mu.Unlock()

	return id, nil
}

func (c *Collection) Find(ctx context.Context, filter domain.Filter, page pagination.Params) ([]domain.Document, error) {
	defer c.trace(ctx, "find")(nil)

	c.mu.RLock()
	defer c.mu.RUnlock()

	matches := make([]domain.Document, 0, len(c.order))
	for _, id := range c.order {
		doc := c.docs[id]
		if filter.MatchAll() || matchesField(doc, filter) {
			matches = append(matches, doc)
		}
	}

	window := pagination.Window(matches, page)
	out := make([]domain.Document, len(window))
	for i, doc := range window {
		out[i] = cloneDocument(doc)
	}
	return out, nil
}

func (c *Collection) FindByID(ctx context.Context, id string) (doc domain.Document, err error) {
	end := c.trace(ctx, "find_by_id")
	defer func() { end(err) }()

	if _, err := domain.ParseID(id); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	stored, ok := c.docs[id]
	if !ok {
		return nil, nil
	}
	return cloneDocument(stored), nil
}

func (c *Collection) UpdateByID(ctx context.Context, id string, fields domain.Document) (res domain.UpdateResult, err error) {
	end := c.trace(ctx, "update")
	defer func() { end(err) }()

	if _, err := domain.ParseID(id); err != nil {
		return domain.UpdateResult{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	stored, ok := c.docs[id]
	if !ok {
		return domain.UpdateResult{}, nil
	}

	res.MatchedCount = 1
	for k, v := range fields.WithoutID() {
		if cur, exists := stored[k]; exists && reflect.DeepEqual(cur, v) {
			continue
		}
		stored[k] = cloneValue(v)
		res.ModifiedCount = 1
	}
	return res, nil
}

func (c *Collection) DeleteByID(ctx context.Context, id string) (res domain.DeleteResult, err error) {
	end := c.trace(ctx, "delete")
	defer func() { end(err) }()

	if _, err := domain.ParseID(id); err != nil {
		return domain.DeleteResult{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	res.Acknowledged = true
	if _, ok := c.docs[id]; !ok {
		return res, nil
	}
	delete(c.docs, id)
	for i, oid := range c.order {
		if oid == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	res.DeletedCount = 1
	return res, nil
}

func (c *Collection) EstimatedCount(ctx context.Context) (int64, error) {
	defer c.trace(ctx, "count")(nil)

	c.mu.RLock()
	defer c.mu.RUnlock()
	return int64(len(c.docs)), nil
}

func matchesField(doc domain.Document, f domain.Filter) bool {
	v, ok := doc[f.Field]
	return ok && reflect.DeepEqual(v, f.Value)
}

// cloneDocument deep-copies the maps and slices produced by encoding/json so
// callers never share state with the store.
func cloneDocument(doc domain.Document) domain.Document {
	out := make(domain.Document, len(doc))
	for k, v := range doc {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, inner := range t {
			m[k] = cloneValue(inner)
		}
		return m
	case domain.Document:
		return cloneDocument(t)
	case []any:
		s := make([]any, len(t))
		for i, inner := range t {
			s[i] = cloneValue(inner)
		}
		return s
	default:
		return v
	}
}
