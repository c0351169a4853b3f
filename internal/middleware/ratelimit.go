package middleware

import (
	"context"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/curiohub/curiohub/internal/errors"
	"github.com/curiohub/curiohub/internal/logger"
	"github.com/curiohub/curiohub/internal/metrics"
	"github.com/curiohub/curiohub/internal/util"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimitConfig holds configuration for rate limiting
type RateLimitConfig struct {
	// Requests per window
	Limit int
	// Window duration
	Window time.Duration
	// KeyFunc picks the bucket for a request. Defaults to the client IP.
	KeyFunc func(c *gin.Context) string
}

// DefaultRateLimitConfig returns the general API limit.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Limit:  100,
		Window: time.Minute,
	}
}

// AuthRateLimitConfig returns stricter limits for auth endpoints
func AuthRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Limit:  10,
		Window: time.Minute,
	}
}

// KeyByUserOrIP buckets signed-in callers by user ID and everyone else by
// client IP.
func KeyByUserOrIP(c *gin.Context) string {
	if userID := c.GetString("user_id"); userID != "" {
		return "user:" + userID
	}
	return "ip:" + c.ClientIP()
}

// TokenBucket for rate limiting
type TokenBucket struct {
	mu         sync.Mutex
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
}

// NewTokenBucket creates a full bucket.
func NewTokenBucket(maxTokens float64, refillRate float64) *TokenBucket {
	return &TokenBucket{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

func (tb *TokenBucket) refill(now time.Time) {
	elapsed := now.Sub(tb.lastRefill).Seconds()
	tb.tokens = math.Min(tb.maxTokens, tb.tokens+elapsed*tb.refillRate)
	tb.lastRefill = now
}

// Allow takes one token if available.
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill(time.Now())
	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}
	return false
}

// RetryAfter returns whole seconds until one token is available.
func (tb *TokenBucket) RetryAfter() int {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	if tb.tokens >= 1 {
		return 0
	}
	return int((1-tb.tokens)/tb.refillRate) + 1
}

func (tb *TokenBucket) idleSince(cutoff time.Time) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return tb.lastRefill.Before(cutoff)
}

// RateLimiter keeps one token bucket per key in memory.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*TokenBucket
	config  RateLimitConfig
}

// NewRateLimiter builds a limiter. Call Middleware to use it and Sweep
// periodically to drop idle buckets.
func NewRateLimiter(config RateLimitConfig) *RateLimiter {
	if config.KeyFunc == nil {
		config.KeyFunc = func(c *gin.Context) string { return c.ClientIP() }
	}
	return &RateLimiter{
		buckets: make(map[string]*TokenBucket),
		config:  config,
	}
}

func (rl *RateLimiter) bucket(key string) *TokenBucket {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[key]
	if !ok {
		refillRate := float64(rl.config.Limit) / rl.config.Window.Seconds()
		b = NewTokenBucket(float64(rl.config.Limit), refillRate)
		rl.buckets[key] = b
	}
	return b
}

// Sweep removes buckets that have not been touched for a full window.
// A removed bucket would have refilled completely anyway.
func (rl *RateLimiter) Sweep() int {
	cutoff := time.Now().Add(-rl.config.Window)
	rl.mu.Lock()
	defer rl.mu.Unlock()

	removed := 0
	for key, b := range rl.buckets {
		if b.idleSince(cutoff) {
			delete(rl.buckets, key)
			removed++
		}
	}
	return removed
}

// SweepEvery calls Sweep on each tick until ctx is done.
func (rl *RateLimiter) SweepEvery(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := rl.Sweep(); n > 0 {
				logger.Log.Debug("Swept idle rate limit buckets", zap.Int("count", n))
			}
		}
	}
}

// Middleware returns the gin handler enforcing the limit.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		b := rl.bucket(rl.config.KeyFunc(c))
		if !b.Allow() {
			rejectRateLimited(c, rl.config.Limit, b.RetryAfter())
			return
		}
		c.Next()
	}
}

func rejectRateLimited(c *gin.Context, limit, retryAfter int) {
	metrics.RecordRateLimitExceeded(c.FullPath(), c.Request.Method)
	c.Header("Retry-After", strconv.Itoa(retryAfter))
	c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
	c.Header("X-RateLimit-Remaining", "0")
	util.RespondWithAPIError(c, errors.RateLimited(""))
}
