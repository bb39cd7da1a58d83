// Package cache holds computed stats snapshots between writes.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/erazemk/skinledger/internal/model"
)

const keyPrefix = "skinledger:stats:"

// RedisStats caches stats per owner in Redis. Each owner has a generation
// counter that every write bumps. Snapshots are keyed by generation, so one
// computed before a write can never be read after it.
type RedisStats struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStats returns a cache backed by client. Snapshots live for at most ttl.
func NewRedisStats(client *redis.Client, ttl time.Duration) *RedisStats {
	return &RedisStats{client: client, ttl: ttl}
}

// Key returns the Redis key for an owner's snapshot at generation gen.
func Key(ownerID string, gen int64) string {
	return keyPrefix + ownerID + ":" + strconv.FormatInt(gen, 10)
}

func generationKey(ownerID string) string {
	return keyPrefix + ownerID + ":gen"
}

// Get returns the owner's current generation and the snapshot cached for it, if any.
func (c *RedisStats) Get(ctx context.Context, ownerID string) (*model.Stats, int64, bool, error) {
	gen, err := c.client.Get(ctx, generationKey(ownerID)).Int64()
	if errors.Is(err, redis.Nil) {
		gen, err = 0, nil
	}
	if err != nil {
		return nil, 0, false, fmt.Errorf("reading stats generation: %w", err)
	}

	data, err := c.client.Get(ctx, Key(ownerID, gen)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, gen, false, nil
	}
	if err != nil {
		return nil, gen, false, fmt.Errorf("reading cached stats: %w", err)
	}

	var s model.Stats
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, gen, false, fmt.Errorf("decoding cached stats: %w", err)
	}
	return &s, gen, true, nil
}

// Set stores a snapshot computed at generation gen. It expires after the
// configured ttl or maxAge, whichever is sooner.
func (c *RedisStats) Set(ctx context.Context, ownerID string, gen int64, s *model.Stats, maxAge time.Duration) error {
	ttl := expiry(c.ttl, maxAge)
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding stats: %w", err)
	}
	if err := c.client.Set(ctx, Key(ownerID, gen), data, ttl).Err(); err != nil {
		return fmt.Errorf("caching stats: %w", err)
	}
	return nil
}

// Invalidate moves the owner to a new generation.
func (c *RedisStats) Invalidate(ctx context.Context, ownerID string) error {
	if err := c.client.Incr(ctx, generationKey(ownerID)).Err(); err != nil {
		return fmt.Errorf("invalidating stats: %w", err)
	}
	return nil
}

func expiry(ttl, maxAge time.Duration) time.Duration {
	if maxAge < ttl {
		return maxAge
	}
	return ttl
}

// Nop never caches anything.
type Nop struct{}

func (Nop) Get(context.Context, string) (*model.Stats, int64, bool, error) {
	return nil, 0, false, nil
}

func (Nop) Set(context.Context, string, int64, *model.Stats, time.Duration) error { return nil }

func (Nop) Invalidate(context.Context, string) error { return nil }
