// Package cache stores short-lived values: OAuth state and the explore feed.
package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Pull reads and removes key in one step.
	Pull(ctx context.Context, key string) (string, bool, error)
	Incr(ctx context.Context, key string) (int64, error)
}

// New returns a Redis backed cache, or an in-memory one when client is nil.
func New(client *redis.Client) Cache {
	if client == nil {
		return NewMemory()
	}
	return NewRedis(client)
}
