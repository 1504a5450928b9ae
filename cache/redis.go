package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gamehub/monitoring"
	"gamehub/utils"

	"github.com/redis/go-redis/v9"
)

// ==================== CACHE KEYS ====================

const (
	GameCachePrefix    = "game:"         // game:123
	GamesCacheKey      = "games:all"     // unfiltered game list
	ReviewsCachePrefix = "reviews:game:" // reviews:game:123
	CatalogCachePrefix = "catalog:"      // catalog:genre
	StatsCacheKey      = "stats:dashboard"
	RateLimitPrefix    = "ratelimit:" // ratelimit:<client>
)

const (
	GameTTL    = time.Hour
	ListTTL    = 5 * time.Minute
	ReviewsTTL = 10 * time.Minute
	CatalogTTL = time.Hour
	StatsTTL   = time.Minute

	// RepeatInvalidationDelay is how long after a write the game keys are
	// dropped a second time, evicting entries a reader cached from the
	// pre-commit row.
	RepeatInvalidationDelay = 500 * time.Millisecond
)

var ErrMiss = errors.New("cache miss")

// Cache wraps a Redis client. A nil *Cache or nil client disables caching,
// so every call degrades to a miss or a no-op.
type Cache struct {
	client      *redis.Client
	repeatAfter time.Duration
}

// New connects to Redis and pings it. addr is host:port or a redis:// URL.
// On failure the error is returned together with a disabled cache so callers
// can keep running without Redis.
func New(addr, password string) (*Cache, error) {
	if addr == "" {
		return &Cache{}, nil
	}
	opts := &redis.Options{Addr: addr, Password: password}
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return &Cache{}, fmt.Errorf("invalid Redis URL: %w", err)
		}
		opts = parsed
		if password != "" {
			opts.Password = password
		}
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	opts.PoolSize = 10
	opts.MinIdleConns = 2
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return &Cache{}, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &Cache{client: client, repeatAfter: RepeatInvalidationDelay}, nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client) *Cache {
	return &Cache{client: client, repeatAfter: RepeatInvalidationDelay}
}

func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

func (c *Cache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}

// ==================== GENERIC CACHE OPERATIONS ====================

// Set stores any value as JSON with TTL
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !c.Enabled() {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}

// Get decodes the cached JSON at key into dest, returning ErrMiss when absent.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) error {
	if !c.Enabled() {
		return ErrMiss
	}
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		monitoring.CacheLookups.WithLabelValues("miss").Inc()
		return ErrMiss
	}
	if err != nil {
		return fmt.Errorf("failed to get value: %w", err)
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return fmt.Errorf("failed to unmarshal value: %w", err)
	}
	monitoring.CacheLookups.WithLabelValues("hit").Inc()
	return nil
}

// Remember returns the cached value at key, or calls load and caches its result.
// Redis errors are logged and never fail the request.
func Remember[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, load func() (T, error)) (T, error) {
	var cached T
	err := c.Get(ctx, key, &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, ErrMiss) {
		utils.LogWarn("Cache read failed", map[string]interface{}{"key": key, "error": err.Error()})
	}

	value, err := load()
	if err != nil {
		return value, err
	}
	if err := c.Set(ctx, key, value, ttl); err != nil {
		utils.LogWarn("Cache write failed", map[string]interface{}{"key": key, "error": err.Error()})
	}
	return value, nil
}

// Delete removes keys from cache
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if !c.Enabled() || len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// DeletePattern removes all keys matching pattern
func (c *Cache) DeletePattern(ctx context.Context, pattern string) error {
	if !c.Enabled() {
		return nil
	}
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// ==================== KEYS ====================

func GameKey(gameID uint) string {
	return fmt.Sprintf("%s%d", GameCachePrefix, gameID)
}

func ReviewsKey(gameID uint) string {
	return fmt.Sprintf("%s%d", ReviewsCachePrefix, gameID)
}

func CatalogKey(kind string) string {
	return CatalogCachePrefix + kind
}

// ==================== INVALIDATION ====================

// InvalidateGame drops everything derived from one game: its detail entry,
// the game list and its review list. The keys are dropped again after
// repeatAfter.
func (c *Cache) InvalidateGame(ctx context.Context, gameID uint) {
	keys := []string{GameKey(gameID), GamesCacheKey, ReviewsKey(gameID), StatsCacheKey}
	c.logErr(c.Delete(ctx, keys...), "invalidate game")
	c.repeat(func(ctx context.Context) error { return c.Delete(ctx, keys...) })
}

// InvalidateGames drops all cached game entries, used when shared catalog data changes.
func (c *Cache) InvalidateGames(ctx context.Context) {
	drop := func(ctx context.Context) error {
		if err := c.Delete(ctx, GamesCacheKey, StatsCacheKey); err != nil {
			return err
		}
		return c.DeletePattern(ctx, GameCachePrefix+"*")
	}
	c.logErr(drop(ctx), "invalidate games")
	c.repeat(drop)
}

// repeat runs drop once more after repeatAfter, detached from the request.
func (c *Cache) repeat(drop func(ctx context.Context) error) {
	if !c.Enabled() || c.repeatAfter <= 0 {
		return
	}
	time.AfterFunc(c.repeatAfter, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		c.logErr(drop(ctx), "repeat invalidation")
	})
}

func (c *Cache) InvalidateCatalog(ctx context.Context, kind string) {
	c.logErr(c.Delete(ctx, CatalogKey(kind)), "invalidate catalog")
}

func (c *Cache) logErr(err error, op string) {
	if err != nil {
		utils.LogWarn("Cache operation failed", map[string]interface{}{"op": op, "error": err.Error()})
	}
}

// ==================== RATE LIMITING ====================

// CheckRateLimit counts a request against a fixed window for key. It reports
// whether the request is allowed and how many remain in the window.
func (c *Cache) CheckRateLimit(ctx context.Context, key string, maxRequests int, window time.Duration) (bool, int, error) {
	if !c.Enabled() {
		return true, maxRequests, errors.New("redis not available")
	}
	fullKey := RateLimitPrefix + key

	pipe := c.client.TxPipeline()
	incr := pipe.Incr(ctx, fullKey)
	pipe.ExpireNX(ctx, fullKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return true, maxRequests, err
	}

	count := int(incr.Val())
	remaining := maxRequests - count
	if remaining < 0 {
		remaining = 0
	}
	return count <= maxRequests, remaining, nil
}

// ==================== CACHE STATISTICS ====================

// Stats returns the number of keys in the current Redis database.
func (c *Cache) Stats(ctx context.Context) (map[string]interface{}, error) {
	if !c.Enabled() {
		return map[string]interface{}{"enabled": false}, nil
	}
	dbSize, err := c.client.DBSize(ctx).Result()
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"enabled": true, "db_size": dbSize}, nil
}
