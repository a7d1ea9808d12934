package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"celebrity-trivia/internal/tmdb"
	"golang.org/x/sync/singleflight"
)

// MetadataCache keeps metadata responses in process memory with a TTL so repeated
// lookups within and across rounds skip the network. Images and errors are not cached.
// A ttl <= 0 disables caching.
type MetadataCache struct {
	next  tmdb.Fetcher
	ttl   time.Duration
	clock func() time.Time
	sf    singleflight.Group

	mu      sync.Mutex
	rnd     *rand.Rand
	entries map[string]cachedResponse
}

type cachedResponse struct {
	body      []byte
	expiresAt time.Time
}

func NewMetadataCache(next tmdb.Fetcher, ttl time.Duration) *MetadataCache {
	return &MetadataCache{
		next:    next,
		ttl:     ttl,
		clock:   time.Now,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
		entries: make(map[string]cachedResponse),
	}
}

func (c *MetadataCache) Fetch(ctx context.Context, kind tmdb.Kind, param string) ([]byte, error) {
	if !kind.Cacheable() || c.ttl <= 0 {
		return c.next.Fetch(ctx, kind, param)
	}
	key := kind.String() + ":" + param

	if body, ok := c.lookup(key); ok {
		return body, nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		if body, ok := c.lookup(key); ok {
			return body, nil
		}
		body, err := c.next.Fetch(ctx, kind, param)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entries[key] = cachedResponse{
			body:      body,
			expiresAt: c.clock().Add(c.ttlWithJitterLocked()),
		}
		c.mu.Unlock()
		return body, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

func (c *MetadataCache) lookup(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !entry.expiresAt.After(c.clock()) {
		delete(c.entries, key)
		return nil, false
	}
	return entry.body, true
}

func (c *MetadataCache) ttlWithJitterLocked() time.Duration {
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
