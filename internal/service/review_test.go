package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/journalist-service/server/internal/domain"
	"github.com/journalist-service/server/internal/event"
	"github.com/journalist-service/server/pkg/pagination"
)

func newTestReviewService() (*ReviewService, *mockCollection, *mockPublisher) {
	coll := new(mockCollection)
	pub := new(mockPublisher)
	return NewReviewService(coll, pub, newTestLogger()), coll, pub
}

func TestReviewCreate_PublishesEvent(t *testing.T) {
	svc, coll, pub := newTestReviewService()
	ctx := context.Background()

	doc := domain.Document{"email": "a@x.com", "service": "s1"}
	coll.On("Insert", ctx, doc).Return(testID, nil)
	pub.On("DocumentCreated", ctx, event.AggregateReview, domain.Document{
		"_id": testID, "email": "a@x.com", "service": "s1",
	}).Return(nil)

	id, err := svc.Create(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, testID, id)
	_, hasID := doc["_id"]
	assert.False(t, hasID, "input document must not be modified")

	coll.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestReviewCreate_NilDocument(t *testing.T) {
	svc, coll, pub := newTestReviewService()
	ctx := context.Background()

	coll.On("Insert", ctx, domain.Document{}).Return(testID, nil)
	pub.On("DocumentCreated", ctx, event.AggregateReview, mock.Anything).Return(nil)

	id, err := svc.Create(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, testID, id)
}

func TestReviewCreate_StoreError(t *testing.T) {
	svc, coll, pub := newTestReviewService()
	ctx := context.Background()

	storeErr := errors.New("connection refused")
	coll.On("Insert", ctx, mock.Anything).Return("", storeErr)

	id, err := svc.Create(ctx, domain.Document{"email": "a@x.com"})
	assert.Empty(t, id)
	assert.ErrorIs(t, err, storeErr)
	assert.Contains(t, err.Error(), "create review")
	pub.AssertNotCalled(t, "DocumentCreated", mock.Anything, mock.Anything, mock.Anything)
}

func TestReviewCreate_PublishFailureIgnored(t *testing.T) {
	svc, coll, pub := newTestReviewService()
	ctx := context.Background()

	coll.On("Insert", ctx, mock.Anything).Return(testID, nil)
	pub.On("DocumentCreated", ctx, event.AggregateReview, mock.Anything).Return(errors.New("broker down"))

	id, err := svc.Create(ctx, domain.Document{"email": "a@x.com"})
	require.NoError(t, err)
	assert.Equal(t, testID, id)
}

func TestReviewList_Filters(t *testing.T) {
	tests := []struct {
		name   string
		call   func(*ReviewService, context.Context) ([]domain.Document, error)
		filter domain.Filter
	}{
		{
			name: "all",
			call: func(s *ReviewService, ctx context.Context) ([]domain.Document, error) {
				return s.List(ctx, domain.Filter{})
			},
			filter: domain.Filter{},
		},
		{
			name: "by email",
			call: func(s *ReviewService, ctx context.Context) ([]domain.Document, error) {
				return s.ListByEmail(ctx, "a@x.com")
			},
			filter: domain.Eq("email", "a@x.com"),
		},
		{
			name: "by service",
			call: func(s *ReviewService, ctx context.Context) ([]domain.Document, error) {
				return s.ListByService(ctx, "s1")
			},
			filter: domain.Eq("service", "s1"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, coll, _ := newTestReviewService()
			ctx := context.Background()

			want := []domain.Document{{"_id": testID}}
			coll.On("Find", ctx, tt.filter, pagination.All()).Return(want, nil)

			got, err := tt.call(svc, ctx)
			require.NoError(t, err)
			assert.Equal(t, want, got)
			coll.AssertExpectations(t)
		})
	}
}

func TestReviewList_StoreError(t *testing.T) {
	svc, coll, _ := newTestReviewService()
	ctx := context.Background()

	coll.On("Find", ctx, mock.Anything, mock.Anything).Return(nil, errors.New("timeout"))

	docs, err := svc.List(ctx, domain.Filter{})
	assert.Nil(t, docs)
	assert.EqualError(t, err, "list reviews: timeout")
}

func TestReviewGet(t *testing.T) {
	svc, coll, _ := newTestReviewService()
	ctx := context.Background()

	coll.On("FindByID", ctx, testID).Return(domain.Document{"_id": testID}, nil)
	coll.On("FindByID", ctx, "65f1a2b3c4d5e6f708192a3c").Return(nil, nil)
	coll.On("FindByID", ctx, "bad").Return(nil, domain.ErrInvalidID)

	doc, err := svc.Get(ctx, testID)
	require.NoError(t, err)
	assert.Equal(t, testID, doc.ID())

	doc, err = svc.Get(ctx, "65f1a2b3c4d5e6f708192a3c")
	require.NoError(t, err)
	assert.Nil(t, doc)

	_, err = svc.Get(ctx, "bad")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestReviewUpdate(t *testing.T) {
	t.Run("modified publishes", func(t *testing.T) {
		svc, coll, pub := newTestReviewService()
		ctx := context.Background()

		fields := domain.Document{"rating": 5, "_id": "other"}
		coll.On("UpdateByID", ctx, testID, fields).Return(domain.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)
		pub.On("DocumentUpdated", ctx, event.AggregateReview, testID, domain.Document{"rating": 5}).Return(nil)

		res, err := svc.Update(ctx, testID, fields)
		require.NoError(t, err)
		assert.Equal(t, int64(1), res.MatchedCount)
		pub.AssertExpectations(t)
	})

	t.Run("unchanged does not publish", func(t *testing.T) {
		svc, coll, pub := newTestReviewService()
		ctx := context.Background()

		coll.On("UpdateByID", ctx, testID, mock.Anything).Return(domain.UpdateResult{MatchedCount: 1}, nil)

		res, err := svc.Update(ctx, testID, domain.Document{"rating": 5})
		require.NoError(t, err)
		assert.Equal(t, int64(0), res.ModifiedCount)
		pub.AssertNotCalled(t, "DocumentUpdated", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("absent", func(t *testing.T) {
		svc, coll, pub := newTestReviewService()
		ctx := context.Background()

		coll.On("UpdateByID", ctx, testID, mock.Anything).Return(domain.UpdateResult{}, nil)

		res, err := svc.Update(ctx, testID, domain.Document{"rating": 5})
		require.NoError(t, err)
		assert.Zero(t, res.MatchedCount)
		pub.AssertNotCalled(t, "DocumentUpdated", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("store error", func(t *testing.T) {
		svc, coll, _ := newTestReviewService()
		ctx := context.Background()

		coll.On("UpdateByID", ctx, "bad", mock.Anything).Return(domain.UpdateResult{}, domain.ErrInvalidID)

		_, err := svc.Update(ctx, "bad", domain.Document{})
		assert.ErrorIs(t, err, domain.ErrInvalidID)
	})
}

func TestReviewDelete(t *testing.T) {
	t.Run("deleted publishes", func(t *testing.T) {
		svc, coll, pub := newTestReviewService()
		ctx := context.Background()

		coll.On("DeleteByID", ctx, testID).Return(domain.DeleteResult{Acknowledged: true, DeletedCount: 1}, nil)
		pub.On("DocumentDeleted", ctx, event.AggregateReview, testID).Return(nil)

		res, err := svc.Delete(ctx, testID)
		require.NoError(t, err)
		assert.Equal(t, domain.DeleteResult{Acknowledged: true, DeletedCount: 1}, res)
		pub.AssertExpectations(t)
	})

	t.Run("absent id", func(t *testing.T) {
		svc, coll, pub := newTestReviewService()
		ctx := context.Background()

		coll.On("DeleteByID", ctx, testID).Return(domain.DeleteResult{Acknowledged: true}, nil)

		res, err := svc.Delete(ctx, testID)
		require.NoError(t, err)
		assert.Zero(t, res.DeletedCount)
		pub.AssertNotCalled(t, "DocumentDeleted", mock.Anything, mock.Anything, mock.Anything)
	})
}
