package middleware

import (
	"context"
	"errors"

	"github.com/inkwell/blog/internal/utils"
	"github.com/inkwell/blog/pkg/redis_limiter"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SlotLimiter hands out concurrency slots per key
type SlotLimiter interface {
	Acquire(ctx context.Context, key string) error
	Release(ctx context.Context, key string) error
}

// UploadLimit caps concurrent uploads per client IP. Limiter outages let requests through.
func UploadLimit(limiter SlotLimiter, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		ctx := c.Request.Context()

		if err := limiter.Acquire(ctx, key); err != nil {
			if errors.Is(err, redis_limiter.ErrLimitReached) {
				utils.TooManyRequests(c, "too many concurrent uploads")
				c.Abort()
				return
			}
			logger.WithError(err).Warn("upload limiter unavailable")
			c.Next()
			return
		}

		defer func() {
			if err := limiter.Release(context.Background(), key); err != nil {
				logger.WithError(err).Warn("release upload slot failed")
			}
		}()

		c.Next()
	}
}
