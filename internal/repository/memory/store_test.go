package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/journalist-service/server/internal/domain"
	"github.com/journalist-service/server/pkg/pagination"
)

func seedReviews(t *testing.T, n int) (*Collection, []string) {
	t.Helper()
	c := NewStore().collection(domain.CollectionReviews)
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		email := "a@x.com"
		if i%2 == 1 {
			email = "b@x.com"
		}
		id, err := c.Insert(context.Background(), domain.Document{"email": email, "n": float64(i)})
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return c, ids
}

func TestInsertThenFindByID(t *testing.T) {
	c := NewStore().Collection(domain.CollectionServices)
	ctx := context.Background()

	id, err := c.Insert(ctx, domain.Document{domain.IDField: "client-chosen", "name": "Fact check", "tags": []any{"a"}})
	require.NoError(t, err)
	assert.NotEqual(t, "client-chosen", id)

	doc, err := c.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, doc.ID())
	assert.Equal(t, "Fact check", doc["name"])

	doc["tags"].([]any)[0] = "mutated"
	again, err := c.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []any{"a"}, again["tags"])
}

func TestFindByID_AbsentAndMalformed(t *testing.T) {
	c := NewStore().Collection(domain.CollectionReviews)

	doc, err := c.FindByID(context.Background(), domain.NewID())
	assert.NoError(t, err)
	assert.Nil(t, doc)

	_, err = c.FindByID(context.Background(), "not-an-id")
	assert.True(t, errors.Is(err, domain.ErrInvalidID))
}

func TestFind_FilterAndWindow(t *testing.T) {
	c, ids := seedReviews(t, 5)
	ctx := context.Background()

	all, err := c.Find(ctx, domain.Filter{}, pagination.All())
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, ids[0], all[0].ID())

	byEmail, err := c.Find(ctx, domain.Eq("email", "a@x.com"), pagination.All())
	require.NoError(t, err)
	assert.Len(t, byEmail, 3)

	page, err := c.Find(ctx, domain.Filter{}, pagination.New(1, 2))
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, ids[2], page[0].ID())

	past, err := c.Find(ctx, domain.Filter{}, pagination.New(3, 2))
	require.NoError(t, err)
	assert.Empty(t, past)

	none, err := c.Find(ctx, domain.Eq("email", "nobody@x.com"), pagination.All())
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestUpdateByID_MergesFields(t *testing.T) {
	c, ids := seedReviews(t, 1)
	ctx := context.Background()

	res, err := c.UpdateByID(ctx, ids[0], domain.Document{"n": float64(9), domain.IDField: domain.NewID(), "title": "new"})
	require.NoError(t, err)
	assert.Equal(t, domain.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, res)

	doc, err := c.FindByID(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, ids[0], doc.ID())
	assert.Equal(t, "a@x.com", doc["email"])
	assert.Equal(t, float64(9), doc["n"])
	assert.Equal(t, "new", doc["title"])

	res, err = c.UpdateByID(ctx, ids[0], domain.Document{"n": float64(9)})
	require.NoError(t, err)
	assert.Equal(t, domain.UpdateResult{MatchedCount: 1, ModifiedCount: 0}, res)
}

func TestUpdateByID_AbsentNeverInserts(t *testing.T) {
	c, _ := seedReviews(t, 2)
	ctx := context.Background()

	res, err := c.UpdateByID(ctx, domain.NewID(), domain.Document{"x": 1})
	require.NoError(t, err)
	assert.Zero(t, res.MatchedCount)

	count, err := c.EstimatedCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestDeleteByID(t *testing.T) {
	c, ids := seedReviews(t, 3)
	ctx := context.Background()

	res, err := c.DeleteByID(ctx, ids[1])
	require.NoError(t, err)
	assert.Equal(t, domain.DeleteResult{Acknowledged: true, DeletedCount: 1}, res)

	doc, err := c.FindByID(ctx, ids[1])
	require.NoError(t, err)
	assert.Nil(t, doc)

	res, err = c.DeleteByID(ctx, ids[1])
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.DeletedCount)

	remaining, err := c.Find(ctx, domain.Filter{}, pagination.All())
	require.NoError(t, err)
	assert.Equal(t, []string{ids[0], ids[2]}, []string{remaining[0].ID(), remaining[1].ID()})

	_, err = c.DeleteByID(ctx, "bad")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestCollection_ConcurrentInserts(t *testing.T) {
	c := NewStore().Collection(domain.CollectionReviews)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := c.Insert(ctx, domain.Document{"n": fmt.Sprint(i)})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	count, err := c.EstimatedCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(50), count)
}

func TestStore_SameCollectionInstance(t *testing.T) {
	s := NewStore()
	assert.Same(t, s.Collection("reviews"), s.Collection("reviews"))
	assert.NoError(t, s.Ping(context.Background()))
	assert.NoError(t, s.Close(context.Background()))
}
