package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayfinder/listing_reviews/internal/domain"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisCache(client, 5*time.Minute), mr
}

func TestRedisCache_ReviewsListRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	listingID := uuid.New()
	reviews := []*domain.ReviewWithAuthor{
		{
			Review: domain.Review{
				ID:        uuid.New(),
				ListingID: listingID,
				AuthorID:  uuid.New(),
				Rating:    5,
				Comment:   "Spotless",
				CreatedAt: time.Now().UTC().Truncate(time.Second),
			},
			AuthorName: "John Doe",
		},
	}

	require.NoError(t, cache.SetReviewsList(ctx, listingID, reviews))

	got, err := cache.GetReviewsList(ctx, listingID)
	assert.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, reviews[0].ID, got[0].ID)
	assert.Equal(t, "John Doe", got[0].AuthorName)
	assert.Equal(t, 5, got[0].Rating)
}

func TestRedisCache_GetReviewsList_Miss(t *testing.T) {
	cache, _ := newTestCache(t)

	_, err := cache.GetReviewsList(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRedisCache_InvalidateReviewsList(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	listingID := uuid.New()
	require.NoError(t, cache.SetReviewsList(ctx, listingID, []*domain.ReviewWithAuthor{}))

	require.NoError(t, cache.InvalidateReviewsList(ctx, listingID))

	_, err := cache.GetReviewsList(ctx, listingID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRedisCache_InvalidateReviewsList_MissingKey(t *testing.T) {
	cache, _ := newTestCache(t)

	// Deleting a key that was never set is not an error
	assert.NoError(t, cache.InvalidateReviewsList(context.Background(), uuid.New()))
}

func TestRedisCache_EntryExpires(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	listingID := uuid.New()
	require.NoError(t, cache.SetReviewsList(ctx, listingID, []*domain.ReviewWithAuthor{}))

	mr.FastForward(6 * time.Minute)

	_, err := cache.GetReviewsList(ctx, listingID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
