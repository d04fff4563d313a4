package transport

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	limiter "github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// RateLimitMiddleware throttles the command endpoint per remote address:
// the one thing a thin transport must defend against before a command
// reaches the single-threaded matching core.
func RateLimitMiddleware(ratePerSecond int64) gin.HandlerFunc {
	rate := limiter.Rate{
		Period: time.Second,
		Limit:  ratePerSecond,
	}
	store := memory.NewStore()
	instance := limiter.New(store, rate)

	return func(c *gin.Context) {
		ctx, err := instance.Get(context.Background(), c.ClientIP())
		if err != nil {
			c.Next()
			return
		}
		if ctx.Reached {
			c.JSON(429, gin.H{"error": "rate limit exceeded"})
			c.Abort()
			return
		}
		c.Next()
	}
}
