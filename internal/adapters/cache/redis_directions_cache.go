package cache

import (
	"context"
	"errors"
	"fmt"
	"route-generation-service/internal/platform/obs"
	"route-generation-service/internal/ports"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisDirectionsCache shares directions results between service instances.
// Entries expire after ttl; a zero ttl keeps them forever.
type RedisDirectionsCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisDirectionsCache(client *redis.Client, ttl time.Duration) *RedisDirectionsCache {
	return &RedisDirectionsCache{Client: client, TTL: ttl}
}

func (r *RedisDirectionsCache) Get(ctx context.Context, key string) (_ ports.DirectionsResult, _ bool, err error) {
	defer obs.Time(ctx, "directions.cache.redis.Get")(&err)

	if r.Client == nil {
		return ports.DirectionsResult{}, false, errors.New("directions cache: redis client is nil")
	}

	b, err := r.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ports.DirectionsResult{}, false, nil
	}
	if err != nil {
		return ports.DirectionsResult{}, false, fmt.Errorf("get directions cache %q: %w", key, err)
	}

	res, err := decodeResult(b)
	if err != nil {
		return ports.DirectionsResult{}, false, err
	}
	return res, true, nil
}

func (r *RedisDirectionsCache) Put(ctx context.Context, key string, result ports.DirectionsResult) error {
	if r.Client == nil {
		return errors.New("directions cache: redis client is nil")
	}

	b, err := encodeResult(result)
	if err != nil {
		return err
	}
	if err := r.Client.Set(ctx, key, b, r.TTL).Err(); err != nil {
		return fmt.Errorf("put directions cache %q: %w", key, err)
	}
	return nil
}
