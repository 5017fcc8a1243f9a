package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/waypost/backend/internal/cache"
)

// ActionRateLimit throttles a named write action per user with the Redis
// token bucket. The in-memory limiter stays on as the per-IP outer layer;
// this one survives restarts and is shared across instances.
func ActionRateLimit(redis *cache.RedisClient, action string, rate, burst int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if redis == nil {
			c.Next()
			return
		}

		userID, exists := c.Get("user_id")
		if !exists {
			c.Next()
			return
		}

		allowed, err := redis.AllowAction(userID.(uuid.UUID), action, rate, burst)
		if err != nil {
			// Fail open on Redis errors
			log.Printf("Action rate limiter error for %s: %v", action, err)
			c.Next()
			return
		}
		if !allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests. Please slow down."})
			c.Abort()
			return
		}

		c.Next()
	}
}
