// Package cache stores generated shortlists so repeated reads skip the
// catalog round trip.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gatherly-api/models"

	"github.com/go-redis/redis/v8"
)

const keyPrefix = "gatherly:shortlist:"

// NewRedisClient builds a client from either a redis:// URL or a bare
// host:port address.
func NewRedisClient(url string) (*redis.Client, error) {
	if strings.HasPrefix(url, "redis://") || strings.HasPrefix(url, "rediss://") {
		opts, err := redis.ParseURL(url)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		return redis.NewClient(opts), nil
	}
	return redis.NewClient(&redis.Options{Addr: url, DB: 0}), nil
}

// RedisShortlistCache keeps one JSON shortlist per plan with a TTL.
type RedisShortlistCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisShortlistCache(client redis.Cmdable, ttl time.Duration) *RedisShortlistCache {
	return &RedisShortlistCache{client: client, ttl: ttl}
}

func Key(planID string) string {
	return keyPrefix + planID
}

func (c *RedisShortlistCache) Get(ctx context.Context, planID string) (*models.ShortlistResult, bool, error) {
	raw, err := c.client.Get(ctx, Key(planID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var result models.ShortlistResult
	if err := json.Unmarshal(raw, &result); err != nil {
		// A corrupt entry is a miss; the next Set overwrites it.
		return nil, false, nil
	}
	return &result, true, nil
}

func (c *RedisShortlistCache) Set(ctx context.Context, planID string, result *models.ShortlistResult) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, Key(planID), raw, c.ttl).Err()
}

func (c *RedisShortlistCache) Delete(ctx context.Context, planID string) error {
	return c.client.Del(ctx, Key(planID)).Err()
}

// NoopShortlistCache never stores anything. Used when REDIS_URL is unset.
type NoopShortlistCache struct{}

func (NoopShortlistCache) Get(context.Context, string) (*models.ShortlistResult, bool, error) {
	return nil, false, nil
}

func (NoopShortlistCache) Set(context.Context, string, *models.ShortlistResult) error { return nil }

func (NoopShortlistCache) Delete(context.Context, string) error { return nil }
