package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/stayfinder/listing_reviews/internal/domain"
)

// RedisCache caches the enriched review list per listing. The aggregate is
// never stored on its own: readers recompute it from whichever list they
// return, so count and average always match the reviews in the response.
type RedisCache struct {
	client         *redis.Client
	reviewsListTTL time.Duration
}

// NewRedisCache creates a new Redis cache instance
func NewRedisCache(client *redis.Client, reviewsListTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:         client,
		reviewsListTTL: reviewsListTTL,
	}
}

func (c *RedisCache) reviewsListKey(listingID uuid.UUID) string {
	return fmt.Sprintf("listing:%s:reviews", listingID.String())
}

// GetReviewsList retrieves the cached review list for a listing
func (c *RedisCache) GetReviewsList(ctx context.Context, listingID uuid.UUID) ([]*domain.ReviewWithAuthor, error) {
	key := c.reviewsListKey(listingID)
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	var reviews []*domain.ReviewWithAuthor
	if err := json.Unmarshal([]byte(val), &reviews); err != nil {
		return nil, err
	}

	return reviews, nil
}

// SetReviewsList stores the review list for a listing
func (c *RedisCache) SetReviewsList(ctx context.Context, listingID uuid.UUID, reviews []*domain.ReviewWithAuthor) error {
	data, err := json.Marshal(reviews)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, c.reviewsListKey(listingID), data, c.reviewsListTTL).Err()
}

// InvalidateReviewsList removes the cached review list for a listing
func (c *RedisCache) InvalidateReviewsList(ctx context.Context, listingID uuid.UUID) error {
	err := c.client.Del(ctx, c.reviewsListKey(listingID)).Err()
	if err != nil && err != redis.Nil {
		return err
	}
	return nil
}
