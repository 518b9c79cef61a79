package investor

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	apperrors "startup-insights/internal/common/errors"
	"startup-insights/internal/models"

	"github.com/redis/go-redis/v9"
)

const listingCacheKey = "investor:startups"

// Cache stores the mapped listing between fetches.
type Cache interface {
	Get(ctx context.Context) ([]models.StartupListing, bool, error)
	Set(ctx context.Context, listings []models.StartupListing) error
	Invalidate(ctx context.Context) error
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Get reports false on a miss.
func (c *RedisCache) Get(ctx context.Context) ([]models.StartupListing, bool, error) {
	data, err := c.client.Get(ctx, listingCacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, apperrors.NewCacheUnavailableError(err)
	}

	var listings []models.StartupListing
	if err := json.Unmarshal(data, &listings); err != nil {
		return nil, false, nil
	}
	return listings, true, nil
}

func (c *RedisCache) Set(ctx context.Context, listings []models.StartupListing) error {
	data, err := json.Marshal(listings)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, listingCacheKey, data, c.ttl).Err(); err != nil {
		return apperrors.NewCacheUnavailableError(err)
	}
	return nil
}

func (c *RedisCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, listingCacheKey).Err(); err != nil {
		return apperrors.NewCacheUnavailableError(err)
	}
	return nil
}
