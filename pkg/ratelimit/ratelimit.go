// Package ratelimit throttles requests per client IP with a fixed one-minute
// window kept in redis.
package ratelimit

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"memoria/pkg/utils"
)

const window = time.Minute

// Counter increments the hit count for key and reports the count and the
// time left in the current window.
type Counter interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

type RedisCounter struct {
	client *redis.Client
}

func NewRedisCounter(client *redis.Client) *RedisCounter {
	return &RedisCounter{client: client}
}

func (r *RedisCounter) Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, 0, err
	}
	// Re-arm the window whenever the key has no expiry.
	ttl, ttlErr := r.client.TTL(ctx, key).Result()
	if count == 1 || (ttlErr == nil && ttl < 0) {
		if err := r.client.Expire(ctx, key, window).Err(); err != nil {
			return count, 0, err
		}
		return count, window, nil
	}
	if ttlErr != nil || ttl <= 0 {
		ttl = window
	}
	return count, ttl, nil
}

// Middleware limits each client IP to limit requests per minute on the
// route it is attached to. A nil counter disables limiting, and counter
// errors let the request pass.
func Middleware(counter Counter, scope string, limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if counter == nil || limit <= 0 {
			c.Next()
			return
		}

		key := "rate:" + scope + ":" + c.ClientIP()
		count, ttl, err := counter.Hit(c.Request.Context(), key, window)
		if err != nil {
			zap.L().Warn("rate limit counter failed", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}

		remaining := limit - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.FormatInt(limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.Itoa(int(ttl.Seconds())))

		if count > limit {
			utils.RespondError(c, http.StatusTooManyRequests, "Rate limit exceeded. Try again later.")
			c.Abort()
			return
		}
		c.Next()
	}
}
