package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/syriashof/shof/internal/cache"
)

// RateLimit limits requests per (clientIP, path) within a fixed window,
// backed by the shared cache so multi-instance deployments share
// counters when Redis is configured. A broken cache fails open.
func RateLimit(store cache.Store, maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store == nil || maxRequests <= 0 || window <= 0 {
			c.Next()
			return
		}

		key := "ratelimit:" + c.ClientIP() + "|" + c.FullPath()
		count, remaining, err := store.IncrementWithTTL(c.Request.Context(), key, window)
		if err != nil {
			c.Next()
			return
		}

		left := int64(maxRequests) - count
		if left < 0 {
			left = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(left, 10))
		c.Header("X-RateLimit-Reset", strconv.Itoa(int(remaining.Seconds())))

		if count > int64(maxRequests) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests, please slow down",
			})
			return
		}

		c.Next()
	}
}
