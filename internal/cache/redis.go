package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "causelist:"

func init() {
	Register("redis", newRedisCache)
}

// redisCache stores each entry as a plain string key with a PX expiry.
// Capacity is bounded by the server's maxmemory policy rather than by Size,
// so OnEvict is never invoked.
type redisCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
	logger Logger
}

func newRedisCache(cfg ProviderConfig) (Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	prefix := cfg.RedisPrefix
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &redisCache{client: client, ttl: cfg.TTL, prefix: prefix, logger: cfg.Logger}, nil
}

func (r *redisCache) logError(msg string, err error) {
	if r.logger != nil {
		r.logger.Error(msg, err)
	}
}

func opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 2*time.Second)
}

func (r *redisCache) Get(key string) ([]byte, bool) {
	ctx, cancel := opContext()
	defer cancel()

	val, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logError("redis cache Get failed", err)
		}
		return nil, false
	}
	return val, true
}

func (r *redisCache) Set(key string, value []byte) {
	ctx, cancel := opContext()
	defer cancel()

	if err := r.client.Set(ctx, r.prefix+key, value, r.ttl).Err(); err != nil {
		r.logError("redis cache Set failed", err)
	}
}

func (r *redisCache) Contains(key string) bool {
	ctx, cancel := opContext()
	defer cancel()

	n, err := r.client.Exists(ctx, r.prefix+key).Result()
	if err != nil {
		r.logError("redis cache Contains failed", err)
		return false
	}
	return n > 0
}

// Len counts keys under the prefix with SCAN; it is meant for metric scrapes.
func (r *redisCache) Len() int {
	ctx, cancel := opContext()
	defer cancel()

	count := 0
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 256).Iterator()
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		r.logError("redis cache Len failed", err)
		return 0
	}
	return count
}

func (r *redisCache) Close() error {
	return r.client.Close()
}
