// Package cache keeps each user's last recommendations in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"wanderlust/pkg/model"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "recommendations:"

type Cache interface {
	// Get reports false on a miss.
	Get(ctx context.Context, userID string) ([]model.Recommendation, bool, error)
	Set(ctx context.Context, userID string, recs []model.Recommendation) error
	Invalidate(ctx context.Context, userID string) error
}

type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl}
}

func key(userID string) string {
	return keyPrefix + userID
}

func (c *RedisCache) Get(ctx context.Context, userID string) ([]model.Recommendation, bool, error) {
	data, err := c.rdb.Get(ctx, key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached recommendations: %w", err)
	}
	var recs []model.Recommendation
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached recommendations: %w", err)
	}
	return recs, true, nil
}

func (c *RedisCache) Set(ctx context.Context, userID string, recs []model.Recommendation) error {
	data, err := json.Marshal(recs)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key(userID), data, c.ttl).Err()
}

func (c *RedisCache) Invalidate(ctx context.Context, userID string) error {
	return c.rdb.Del(ctx, key(userID)).Err()
}

// Noop is used when Redis is not configured; every lookup misses.
type Noop struct{}

func (Noop) Get(context.Context, string) ([]model.Recommendation, bool, error) {
	return nil, false, nil
}

func (Noop) Set(context.Context, string, []model.Recommendation) error { return nil }

func (Noop) Invalidate(context.Context, string) error { return nil }
