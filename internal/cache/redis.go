package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisSet keeps "already seen" markers in Redis so restarts and multiple
// instances share them.
type RedisSet struct {
	client *redis.Client
	prefix string
}

func NewRedisSet(url, prefix string) (*RedisSet, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return newRedisSet(client, prefix), nil
}

func newRedisSet(client *redis.Client, prefix string) *RedisSet {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &RedisSet{client: client, prefix: prefix}
}

func (r *RedisSet) Close() error {
	return r.client.Close()
}

func (r *RedisSet) IsProcessed(ctx context.Context, key string) (bool, error) {
	exists, err := r.client.Exists(ctx, r.prefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists error: %w", err)
	}
	return exists > 0, nil
}

func (r *RedisSet) MarkProcessed(ctx context.Context, key string, ttl time.Duration) error {
	return r.client.Set(ctx, r.prefix+key, "1", ttl).Err()
}
