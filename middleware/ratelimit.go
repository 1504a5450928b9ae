package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"gamehub/cache"
	"gamehub/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const maxLocalClients = 10000

// RateLimiter counts requests per client in Redis. While Redis is disabled or
// failing it falls back to an in-process token bucket per client.
type RateLimiter struct {
	store *cache.Cache

	mu    sync.Mutex
	local map[string]*localLimiter
}

type localLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(store *cache.Cache) *RateLimiter {
	return &RateLimiter{store: store, local: make(map[string]*localLimiter)}
}

// Limit allows maxRequests per window for each client under scope. Clients
// are keyed by user id once authenticated, otherwise by IP.
func (rl *RateLimiter) Limit(scope string, maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxRequests <= 0 {
			c.Next()
			return
		}
		key := scope + ":" + clientKey(c)

		allowed, remaining, err := rl.store.CheckRateLimit(c.Request.Context(), key, maxRequests, window)
		if err != nil {
			if rl.store.Enabled() {
				utils.LogWarn("Rate limit store unavailable, using local limiter", map[string]interface{}{"error": err.Error()})
			}
			allowed, remaining = rl.allowLocal(key, maxRequests, window)
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Window", window.String())

		if !allowed {
			c.Header("Retry-After", strconv.Itoa(int(window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "Rate limit exceeded",
				"message": fmt.Sprintf("Too many requests. Retry after %v", window),
			})
			return
		}
		c.Next()
	}
}

func (rl *RateLimiter) allowLocal(key string, maxRequests int, window time.Duration) (bool, int) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	entry, ok := rl.local[key]
	if !ok {
		if len(rl.local) >= maxLocalClients {
			rl.prune(now.Add(-window))
		}
		entry = &localLimiter{
			limiter: rate.NewLimiter(rate.Every(window/time.Duration(maxRequests)), maxRequests),
		}
		rl.local[key] = entry
	}
	entry.lastSeen = now

	allowed := entry.limiter.AllowN(now, 1)
	remaining := int(entry.limiter.TokensAt(now))
	if remaining < 0 {
		remaining = 0
	}
	return allowed, remaining
}

// prune drops limiters idle since before cutoff. Callers hold rl.mu.
func (rl *RateLimiter) prune(cutoff time.Time) {
	for key, entry := range rl.local {
		if entry.lastSeen.Before(cutoff) {
			delete(rl.local, key)
		}
	}
}

func clientKey(c *gin.Context) string {
	if userID, ok := c.Get("user_id"); ok {
		return fmt.Sprintf("user:%v", userID)
	}
	return "ip:" + c.ClientIP()
}
