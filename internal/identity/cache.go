package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is the minimal key-value surface the page cache needs. Redis backs
// it in production; tests use an in-memory fake.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RedisCache adapts a go-redis client to the Cache interface.
type RedisCache struct {
	client redis.Cmdable
}

func NewRedisCache(client redis.Cmdable) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get %q: %w", key, err)
	}
	return raw, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %q: %w", key, err)
	}
	return nil
}

// CachedSource wraps a Source with a per-page cache bounded by the upstream
// freshness window. Degraded pages are never cached, so a transient outage
// does not pin an empty page for the full TTL. Single-record lookups and the
// secondary fetches bypass the cache.
type CachedSource struct {
	source Source
	cache  Cache
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedSource(source Source, cache Cache, ttl time.Duration, logger *slog.Logger) *CachedSource {
	return &CachedSource{source: source, cache: cache, ttl: ttl, logger: logger}
}

func (s *CachedSource) List(ctx context.Context, page, limit int) (Page, error) {
	key := pageKey(page, limit)

	raw, hit, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.WarnContext(ctx, "identity page cache read failed", "key", key, "error", err)
	} else if hit {
		var cached Page
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
		s.logger.WarnContext(ctx, "identity page cache entry corrupt, refetching", "key", key)
	}

	result, err := s.source.List(ctx, page, limit)
	if err != nil {
		return result, err
	}
	if !result.Degraded {
		if raw, err := json.Marshal(result); err == nil {
			if err := s.cache.Set(ctx, key, raw, s.ttl); err != nil {
				s.logger.WarnContext(ctx, "identity page cache write failed", "key", key, "error", err)
			}
		}
	}
	return result, nil
}

func (s *CachedSource) GetByID(ctx context.Context, externalID string) (Record, error) {
	return s.source.GetByID(ctx, externalID)
}

func pageKey(page, limit int) string {
	return fmt.Sprintf("identity:users:p%d:l%d", page, limit)
}
