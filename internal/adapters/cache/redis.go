package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/comitanigiacomo/goalmate-engine/internal/config"
)

const pingTimeout = 5 * time.Second

// NewRedisClient opens a pooled client and pings it once. A nil client and
// nil error are returned when Redis is disabled.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  10 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr(), err)
	}

	return rdb, nil
}

// Status reports the client state for health checks.
func Status(ctx context.Context, rdb *redis.Client) string {
	if rdb == nil {
		return "disabled"
	}
	if err := rdb.Ping(ctx).Err(); err != nil {
		return "unreachable"
	}
	return "connected"
}
