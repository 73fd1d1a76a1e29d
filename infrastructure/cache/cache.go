package cache

import (
	"context"
	"time"

	"tube-pulse/infrastructure/logger"

	"github.com/redis/go-redis/v9"
)

// NewCache creates a Redis client and verifies connectivity. A nil client is
// returned when Redis is unreachable; callers degrade to computing results
// instead of failing.
func NewCache(ctx context.Context, addr, username, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Username: username,
		Password: password,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.GetLogger().WithField("error", err).Warn("Redis not reachable - rollup caching disabled")
		return nil, err
	}
	return client, nil
}
