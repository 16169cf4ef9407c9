package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimiter throttles expensive endpoints per user with a fixed
// one-minute window in Redis. Matching requests fan out AI calls, so
// they get a low budget.
type RateLimiter struct {
	redis  *redis.Client
	logger *zap.Logger
}

func NewRateLimiter(client *redis.Client, logger *zap.Logger) *RateLimiter {
	return &RateLimiter{redis: client, logger: logger}
}

// Limit allows up to perMinute requests per user for the named action.
// When Redis is down the request is allowed through: rate limiting is
// protective, not correctness-critical.
func (rl *RateLimiter) Limit(action string, perMinute int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.redis == nil || perMinute <= 0 {
			c.Next()
			return
		}
		userID, ok := UserID(c)
		if !ok {
			c.Next()
			return
		}

		key := fmt.Sprintf("ratelimit:%s:%s", action, userID)
		ctx := c.Request.Context()

		count, err := rl.redis.Incr(ctx, key).Result()
		if err != nil {
			rl.logger.Warn("rate limit check failed, allowing request",
				zap.String("action", action),
				zap.Error(err),
			)
			c.Next()
			return
		}
		if count == 1 {
			rl.redis.Expire(ctx, key, time.Minute)
		}
		if count > int64(perMinute) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded, try again in a minute",
			})
			return
		}

		c.Next()
	}
}
