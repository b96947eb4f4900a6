package middleware

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type rateWindow struct {
	count int64
	ttl   time.Duration
}

// hitWindow counts a request against key. A counter left without an expiry
// (first hit, or an earlier EXPIRE that never landed) gets one here.
func hitWindow(c *gin.Context, rdb *redis.Client, key string, window time.Duration) (rateWindow, error) {
	ctx := c.Request.Context()

	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	if _, err := rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, key)
		ttl = p.TTL(ctx, key)
		return nil
	}); err != nil {
		return rateWindow{}, err
	}

	w := rateWindow{count: incr.Val(), ttl: ttl.Val()}
	if w.ttl < 0 {
		if err := rdb.Expire(ctx, key, window).Err(); err != nil {
			return rateWindow{}, err
		}
		w.ttl = window
	}
	return w, nil
}

// RateLimiterMiddleware allows limit requests per client IP in each fixed
// window. Redis failures let the request through.
func RateLimiterMiddleware(rdb *redis.Client, limit int, window time.Duration) gin.HandlerFunc {
	max64 := int64(limit)

	return func(c *gin.Context) {
		key := "rate_limit:" + c.ClientIP()

		w, err := hitWindow(c, rdb, key, window)
		if err != nil {
			log.Printf("[RATELIMIT] redis error, request allowed: %v", err)
			c.Next()
			return
		}

		retryIn := int(w.ttl.Round(time.Second) / time.Second)
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(max(0, max64-w.count), 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(w.ttl).Unix(), 10))

		if w.count > max64 {
			c.Header("Retry-After", strconv.Itoa(retryIn))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":      "too many requests, slow down",
				"retry_in_s": retryIn,
			})
			return
		}

		c.Next()
	}
}
