package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const dedupeKeyPrefix = "notify:dedupe:"

// RedisDedupe keeps dedupe windows in Redis so they survive process
// restarts and are shared when several monitor instances post to the
// same channel. Expiry is delegated to the key TTL.
type RedisDedupe struct {
	redis *redis.Client
}

func NewRedisDedupe(client *redis.Client) *RedisDedupe {
	return &RedisDedupe{redis: client}
}

func (r *RedisDedupe) Seen(ctx context.Context, key string) (bool, error) {
	if r.redis == nil {
		return false, fmt.Errorf("redis client is nil")
	}

	_, err := r.redis.Get(ctx, dedupeKeyPrefix+key).Result()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("failed to check dedupe key: %w", err)
	}
	return true, nil
}

func (r *RedisDedupe) Mark(ctx context.Context, key string, window time.Duration) error {
	if r.redis == nil {
		return fmt.Errorf("redis client is nil")
	}

	if err := r.redis.Set(ctx, dedupeKeyPrefix+key, "1", window).Err(); err != nil {
		return fmt.Errorf("failed to store dedupe key: %w", err)
	}
	return nil
}
