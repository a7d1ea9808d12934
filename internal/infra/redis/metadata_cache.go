package redis

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"celebrity-trivia/internal/tmdb"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// MetadataCache stores metadata responses in Redis so every instance shares them.
// Responses are stored as: SET tmdb:{kind}:{param} {body} EX ttl
// Redis failures degrade to a direct fetch. A ttl <= 0 disables caching.
type MetadataCache struct {
	client *redis.Client
	next   tmdb.Fetcher
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewMetadataCache(client *redis.Client, next tmdb.Fetcher, ttl time.Duration) *MetadataCache {
	return &MetadataCache{
		client: client,
		next:   next,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *MetadataCache) Fetch(ctx context.Context, kind tmdb.Kind, param string) ([]byte, error) {
	if !kind.Cacheable() || c.ttl <= 0 {
		return c.next.Fetch(ctx, kind, param)
	}
	key := c.key(kind, param)

	if body, ok := c.lookup(ctx, key); ok {
		return body, nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if body, ok := c.lookup(ctx, key); ok {
			return body, nil
		}
		body, err := c.next.Fetch(ctx, kind, param)
		if err != nil {
			return nil, err
		}
		if err := c.client.Set(ctx, key, body, c.ttlWithJitter()).Err(); err != nil {
			slog.Warn("metadata cache write failed", "key", key, "error", err)
		}
		return body, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

func (c *MetadataCache) lookup(ctx context.Context, key string) ([]byte, bool) {
	body, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("metadata cache read failed", "key", key, "error", err)
		}
		return nil, false
	}
	return body, true
}

func (c *MetadataCache) key(kind tmdb.Kind, param string) string {
	return "tmdb:" + kind.String() + ":" + param
}

func (c *MetadataCache) ttlWithJitter() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
