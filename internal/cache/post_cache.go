// Package cache provides a Redis read-through cache for post listings.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"voxablog/internal/models"
)

// PostListCache stores List results per author filter. A nil Redis client
// turns every call into a miss so the service works without Redis.
//
// Entries are keyed by a generation number. Invalidate bumps the generation,
// so a Set that started before an invalidation writes a key nothing reads
// and simply expires with the TTL.
type PostListCache struct {
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

// NoGeneration is returned by Get when the generation could not be read.
// Set ignores it.
const NoGeneration int64 = -1

func NewPostListCache(rdb *redis.Client, ttl time.Duration, namespace string) *PostListCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if namespace == "" {
		namespace = "blogs"
	}
	return &PostListCache{rdb: rdb, ttl: ttl, namespace: namespace}
}

func (c *PostListCache) key(gen int64, authorEmail string) string {
	prefix := c.namespace + ":list:" + strconv.FormatInt(gen, 10)
	if authorEmail == "" {
		return prefix + ":all"
	}
	return prefix + ":author:" + authorEmail
}

func (c *PostListCache) generationKey() string {
	return c.namespace + ":list:gen"
}

func (c *PostListCache) generation(ctx context.Context) int64 {
	gen, err := c.rdb.Get(ctx, c.generationKey()).Int64()
	switch {
	case errors.Is(err, redis.Nil):
		return 0
	case err != nil:
		slog.Warn("failed to read post list generation", "error", err)
		return NoGeneration
	}
	return gen
}

// Get returns the cached listing and the generation it was looked up under.
// Callers pass that generation to Set after reading from the database.
func (c *PostListCache) Get(ctx context.Context, authorEmail string) ([]models.Post, int64, bool) {
	if c == nil || c.rdb == nil {
		return nil, NoGeneration, false
	}

	gen := c.generation(ctx)
	if gen == NoGeneration {
		return nil, NoGeneration, false
	}

	key := c.key(gen, authorEmail)
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return nil, gen, false
	}

	var posts []models.Post
	if err := json.Unmarshal(b, &posts); err != nil {
		_ = c.rdb.Del(ctx, key).Err()
		return nil, gen, false
	}
	return posts, gen, true
}

func (c *PostListCache) Set(ctx context.Context, gen int64, authorEmail string, posts []models.Post) {
	if c == nil || c.rdb == nil || gen == NoGeneration {
		return
	}

	b, err := json.Marshal(posts)
	if err != nil {
		return
	}

	key := c.key(gen, authorEmail)
	if err := c.rdb.Set(ctx, key, b, c.ttl).Err(); err != nil {
		slog.Warn("failed to cache post list", "key", key, "error", err)
	}
}

// Invalidate retires every cached listing by moving to a new generation.
// Failures are logged only; stale entries expire with the TTL.
func (c *PostListCache) Invalidate(ctx context.Context) {
	if c == nil || c.rdb == nil {
		return
	}

	if err := c.rdb.Incr(ctx, c.generationKey()).Err(); err != nil {
		slog.Warn("failed to invalidate post lists", "error", err)
	}
}
