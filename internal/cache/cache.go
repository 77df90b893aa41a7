// Package cache stores completed analysis results so repeated requests for
// the same repository do not replay the whole GitHub pipeline. Entries live
// in memory with a TTL; when Redis is configured it acts as a shared layer
// in front of the local map.
package cache

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/0unveiled/github-analyzer/internal/types"
)

// item is a cached payload with its expiration
type item struct {
	data      []byte
	expiresAt time.Time
}

func (i *item) expired() bool {
	return time.Now().After(i.expiresAt)
}

// ResultCache is a thread-safe TTL cache for analysis results
type ResultCache struct {
	mu    sync.RWMutex
	items map[string]*item
	ttl   time.Duration
	redis *redis.Client

	hits   int64
	misses int64
}

// New creates a result cache. redisClient may be nil for memory-only
// operation.
func New(ttl time.Duration, redisClient *redis.Client) *ResultCache {
	c := &ResultCache{
		items: make(map[string]*item),
		ttl:   ttl,
		redis: redisClient,
	}

	go c.cleanup()

	return c
}

// Key builds the cache key for one analysis request
func Key(owner, repo string, maxFiles int) string {
	hash := md5.Sum(fmt.Appendf(nil, "%s/%s:%d", owner, repo, maxFiles))
	return fmt.Sprintf("analysis:%x", hash)
}

// Get returns a cached analysis, checking Redis before the local map
func (c *ResultCache) Get(ctx context.Context, key string) (*types.RepositoryAnalysis, bool) {
	if data, ok := c.getLocal(key); ok {
		c.recordHit(true)
		return decode(data)
	}

	if c.redis != nil {
		data, err := c.redis.Get(ctx, key).Bytes()
		if err == nil {
			c.setLocal(key, data)
			c.recordHit(true)
			return decode(data)
		}
		if err != redis.Nil {
			slog.Warn("Redis cache read failed", "key", key, "error", err)
		}
	}

	c.recordHit(false)
	return nil, false
}

// Set stores an analysis in both layers
func (c *ResultCache) Set(ctx context.Context, key string, analysis *types.RepositoryAnalysis) {
	data, err := json.Marshal(analysis)
	if err != nil {
		slog.Warn("Failed to encode analysis for cache", "key", key, "error", err)
		return
	}

	c.setLocal(key, data)

	if c.redis != nil {
		if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
			slog.Warn("Redis cache write failed", "key", key, "error", err)
		}
	}
}

// Delete removes an entry from both layers
func (c *ResultCache) Delete(ctx context.Context, key string) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()

	if c.redis != nil {
		if err := c.redis.Del(ctx, key).Err(); err != nil {
			slog.Warn("Redis cache delete failed", "key", key, "error", err)
		}
	}
}

// Size returns the number of local entries
func (c *ResultCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Stats returns cache statistics
func (c *ResultCache) Stats() map[string]interface{} {
	c.mu.RLock()
	total := len(c.items)
	expired := 0
	for _, it := range c.items {
		if it.expired() {
			expired++
		}
	}
	hits, misses := c.hits, c.misses
	c.mu.RUnlock()

	return map[string]interface{}{
		"total_items":   total,
		"expired_items": expired,
		"active_items":  total - expired,
		"hits":          hits,
		"misses":        misses,
		"ttl_seconds":   c.ttl.Seconds(),
		"redis_enabled": c.redis != nil,
	}
}

func (c *ResultCache) getLocal(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	it, exists := c.items[key]
	if !exists || it.expired() {
		return nil, false
	}
	return it.data, true
}

func (c *ResultCache) setLocal(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = &item{
		data:      data,
		expiresAt: time.Now().Add(c.ttl),
	}
}

func (c *ResultCache) recordHit(hit bool) {
	c.mu.Lock()
	if hit {
		c.hits++
	} else {
		c.misses++
	}
	c.mu.Unlock()
}

// cleanup removes expired local entries periodically
func (c *ResultCache) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()
		for key, it := range c.items {
			if it.expired() {
				delete(c.items, key)
			}
		}
		c.mu.Unlock()
	}
}

func decode(data []byte) (*types.RepositoryAnalysis, bool) {
	var analysis types.RepositoryAnalysis
	if err := json.Unmarshal(data, &analysis); err != nil {
		slog.Warn("Failed to decode cached analysis", "error", err)
		return nil, false
	}
	return &analysis, true
}
