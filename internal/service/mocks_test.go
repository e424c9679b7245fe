package service

import (
	"context"
	"io"
	"log/slog"

	"github.com/stretchr/testify/mock"

	"github.com/journalist-service/server/internal/domain"
	"github.com/journalist-service/server/pkg/pagination"
)

// --- Mock Collection ---

type mockCollection struct {
	mock.Mock
}

func (m *mockCollection) Insert(ctx context.Context, doc domain.Document) (string, error) {
	args := m.Called(ctx, doc)
	return args.String(0), args.Error(1)
}

func (m *mockCollection) Find(ctx context.Context, filter domain.Filter, page pagination.Params) ([]domain.Document, error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Document), args.Error(1)
}

func (m *mockCollection) FindByID(ctx context.Context, id string) (domain.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.Document), args.Error(1)
}

func (m *mockCollection) UpdateByID(ctx context.Context, id string, fields domain.Document) (domain.UpdateResult, error) {
	args := m.Called(ctx, id, fields)
	return args.Get(0).(domain.UpdateResult), args.Error(1)
}

func (m *mockCollection) DeleteByID(ctx context.Context, id string) (domain.DeleteResult, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.DeleteResult), args.Error(1)
}

func (m *mockCollection) EstimatedCount(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// --- Mock Publisher ---

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) DocumentCreated(ctx context.Context, aggregate string, doc domain.Document) error {
	return m.Called(ctx, aggregate, doc).Error(0)
}

func (m *mockPublisher) DocumentUpdated(ctx context.Context, aggregate, id string, fields domain.Document) error {
	return m.Called(ctx, aggregate, id, fields).Error(0)
}

func (m *mockPublisher) DocumentDeleted(ctx context.Context, aggregate, id string) error {
	return m.Called(ctx, aggregate, id).Error(0)
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const testID = "65f1a2b3c4d5e6f708192a3b"
