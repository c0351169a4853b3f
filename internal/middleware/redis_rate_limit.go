package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/curiohub/curiohub/internal/errors"
	"github.com/curiohub/curiohub/internal/logger"
	"github.com/curiohub/curiohub/internal/util"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WindowCounter is a fixed-window counter shared between instances.
type WindowCounter interface {
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
}

// RedisRateLimitMiddleware enforces config across every instance sharing
// counter. When the counter is unreachable the request is rejected with
// 503 rather than let through unmetered.
func RedisRateLimitMiddleware(counter WindowCounter, config RateLimitConfig) gin.HandlerFunc {
	if config.KeyFunc == nil {
		config.KeyFunc = KeyByUserOrIP
	}
	return func(c *gin.Context) {
		windowStart := time.Now().Truncate(config.Window).Unix()
		key := fmt.Sprintf("rate_limit:%s:%d", config.KeyFunc(c), windowStart)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		count, err := counter.Incr(ctx, key)
		if err != nil {
			logger.Log.Error("Rate limit check failed", logger.WithIP(c.ClientIP()), zap.Error(err))
			util.RespondWithAPIError(c, errors.ServiceUnavailable("rate limiting"))
			return
		}
		if count == 1 {
			if err := counter.Expire(ctx, key, config.Window); err != nil {
				logger.Log.Warn("Failed to set rate limit expiration", zap.String("key", key), zap.Error(err))
			}
		}

		if count > int64(config.Limit) {
			logger.Log.Warn("Rate limit exceeded",
				logger.WithIP(c.ClientIP()),
				zap.Int("limit", config.Limit),
				zap.Int64("count", count),
			)
			retryAfter := int(time.Until(time.Unix(windowStart, 0).Add(config.Window)).Seconds()) + 1
			rejectRateLimited(c, config.Limit, retryAfter)
			return
		}
		c.Next()
	}
}
