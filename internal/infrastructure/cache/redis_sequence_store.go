package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wms/backend/internal/infrastructure/config"
)

const defaultSequencePrefix = "wms:seq:"

// RedisSequenceStore implements SequenceStore with INCR, so every server
// instance draws from the same counter
type RedisSequenceStore struct {
	client    redis.UniversalClient
	keyPrefix string
}

// NewRedisSequenceStore connects to Redis and verifies the connection
func NewRedisSequenceStore(ctx context.Context, cfg config.RedisConfig) (*RedisSequenceStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Addr(), err)
	}

	return NewRedisSequenceStoreWithClient(client, ""), nil
}

// NewRedisSequenceStoreWithClient wraps an existing client
func NewRedisSequenceStoreWithClient(client redis.UniversalClient, keyPrefix string) *RedisSequenceStore {
	if keyPrefix == "" {
		keyPrefix = defaultSequencePrefix
	}
	return &RedisSequenceStore{client: client, keyPrefix: keyPrefix}
}

// Next increments key and refreshes its TTL in one MULTI/EXEC
func (s *RedisSequenceStore) Next(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	fullKey := s.keyPrefix + key

	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, fullKey)
		pipe.Expire(ctx, fullKey, ttl)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to increment sequence %s: %w", key, err)
	}
	return incr.Val(), nil
}

// Close closes the Redis client
func (s *RedisSequenceStore) Close() error {
	return s.client.Close()
}

// Ping reports whether Redis is reachable
func (s *RedisSequenceStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

var _ SequenceStore = (*RedisSequenceStore)(nil)
