package cache

import (
	"context"
	"encoding/json"
	"time"

	"tube-pulse/domain/dto"

	"github.com/redis/go-redis/v9"
)

// rollupKey is the single well-known key holding the current channel rollup
// document.
const rollupKey = "tracker:channel_rollups"

// DefaultRollupTTL bounds how long a computed rollup may serve reads without
// being recomputed. Writes invalidate the key explicitly before that.
const DefaultRollupTTL = time.Hour

// RollupCache stores the channel rollup aggregate in Redis with a TTL.
// A nil client turns every operation into a no-op miss.
type RollupCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRollupCache(client *redis.Client, ttl time.Duration) *RollupCache {
	if ttl <= 0 {
		ttl = DefaultRollupTTL
	}
	return &RollupCache{client: client, ttl: ttl}
}

// Get returns the cached rollup payload, or nil on a miss.
func (c *RollupCache) Get(ctx context.Context) (*dto.ChannelRollupsPayload, error) {
	if c.client == nil {
		return nil, nil
	}
	raw, err := c.client.Get(ctx, rollupKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	payload := &dto.ChannelRollupsPayload{}
	if err := json.Unmarshal(raw, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// Set stores the rollup payload with the configured TTL.
func (c *RollupCache) Set(ctx context.Context, payload *dto.ChannelRollupsPayload) error {
	if c.client == nil {
		return nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, rollupKey, raw, c.ttl).Err()
}

// Invalidate deletes the cached rollup so the next read recomputes it.
func (c *RollupCache) Invalidate(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, rollupKey).Err()
}
