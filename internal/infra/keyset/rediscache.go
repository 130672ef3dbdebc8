package keyset

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"provelope/internal/domain"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "provelope:keyset:"

// RedisCache shares fetched key sets across daemon replicas. A miss falls
// through to the inner fetcher and the result is written back with a TTL.
// Redis errors never fail a verification: the cache degrades to a plain
// fetch.
type RedisCache struct {
	client *redis.Client
	inner  Fetcher
	ttl    time.Duration
}

func NewRedisCache(addr, password string, db int, inner Fetcher, ttl time.Duration) (*RedisCache, error) {
	if addr == "" {
		return nil, errors.New("redis addr is required")
	}
	if inner == nil {
		return nil, errors.New("inner fetcher is required")
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisCache{client: client, inner: inner, ttl: ttl}, nil
}

func (c *RedisCache) FetchKeySet(ctx context.Context, url string) (*domain.KeySet, error) {
	cacheKey := redisKeyPrefix + url

	if payload, err := c.client.Get(ctx, cacheKey).Bytes(); err == nil {
		var ks domain.KeySet
		if err := json.Unmarshal(payload, &ks); err == nil && len(ks.Keys) > 0 {
			return &ks, nil
		}
	}

	ks, err := c.inner.FetchKeySet(ctx, url)
	if err != nil {
		return nil, err
	}
	if payload, err := json.Marshal(ks); err == nil {
		_ = c.client.Set(ctx, cacheKey, payload, c.ttl).Err()
	}
	return ks, nil
}
