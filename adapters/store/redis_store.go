package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/SNE-Labs/SNE-Radar/ports"
)

// RedisStore is a Redis implementation of the KVStore interface
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a new Redis store
func NewRedisStore(client *redis.Client) ports.KVStore {
	return &RedisStore{
		client: client,
		prefix: "radar:",
	}
}

// Get retrieves a value by key
func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, s.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ports.ErrNotFound
		}
		return "", fmt.Errorf("redis get: %w", err)
	}
	return val, nil
}

// Set stores a value with a TTL
func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.prefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete removes a key
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// GetDelete atomically retrieves and removes a value. GETDEL is a single
// command, so concurrent consumers of the same key cannot both succeed.
func (s *RedisStore) GetDelete(ctx context.Context, key string) (string, error) {
	val, err := s.client.GetDel(ctx, s.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ports.ErrNotFound
		}
		return "", fmt.Errorf("redis getdel: %w", err)
	}
	return val, nil
}

// Increment bumps a fixed-window counter. EXPIRE NX runs on every increment:
// it only arms a TTL where none is set, so the window never slides, and a
// transient arm failure is retried on the next increment instead of leaving
// an immortal counter.
func (s *RedisStore) Increment(ctx context.Context, key string, window time.Duration) (int64, error) {
	count, err := s.client.Incr(ctx, s.prefix+key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis incr: %w", err)
	}
	if err := s.client.ExpireNX(ctx, s.prefix+key, window).Err(); err != nil {
		return count, fmt.Errorf("redis expire: %w", err)
	}
	return count, nil
}
