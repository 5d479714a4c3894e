package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wms/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// SequenceStoreFactory picks the sequence store for the configured Redis
type SequenceStoreFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// SequenceStoreFactoryOption is a functional option for configuring the factory
type SequenceStoreFactoryOption func(*SequenceStoreFactory)

// WithLogger sets the logger for the factory and the stores it builds
func WithLogger(logger *zap.Logger) SequenceStoreFactoryOption {
	return func(f *SequenceStoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis degrades to the
// in-memory store. Default is true.
func WithInMemoryFallback(allow bool) SequenceStoreFactoryOption {
	return func(f *SequenceStoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewSequenceStoreFactory creates a new factory
func NewSequenceStoreFactory(cfg config.RedisConfig, opts ...SequenceStoreFactoryOption) *SequenceStoreFactory {
	f := &SequenceStoreFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateStore returns a Redis-backed store that fails over to memory per
// call, or a plain in-memory store when Redis is disabled or unreachable
func (f *SequenceStoreFactory) CreateStore(ctx context.Context) (SequenceStore, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("Redis disabled, using in-memory sequence store")
		return NewInMemorySequenceStore(), nil
	}

	redisStore, err := NewRedisSequenceStore(ctx, f.redisConfig)
	if err == nil {
		f.logger.Info("Using Redis sequence store", zap.String("addr", f.redisConfig.Addr()))
		return NewFailoverSequenceStore(redisStore, NewInMemorySequenceStore(), f.logger), nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for identifier sequences but unavailable: %w", err)
	}
	f.logger.Warn("Redis unavailable, falling back to in-memory sequence store; "+
		"identifier collisions across instances are resolved by retry",
		zap.Error(err),
	)
	return NewInMemorySequenceStore(), nil
}

// FailoverSequenceStore draws from primary and, when a call fails, from
// fallback for that call
type FailoverSequenceStore struct {
	primary  SequenceStore
	fallback SequenceStore
	logger   *zap.Logger
}

// NewFailoverSequenceStore creates a FailoverSequenceStore
func NewFailoverSequenceStore(primary, fallback SequenceStore, logger *zap.Logger) *FailoverSequenceStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FailoverSequenceStore{primary: primary, fallback: fallback, logger: logger}
}

// Next implements SequenceStore
func (s *FailoverSequenceStore) Next(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	v, err := s.primary.Next(ctx, key, ttl)
	if err == nil {
		return v, nil
	}
	if ctx.Err() != nil {
		return 0, err
	}
	s.logger.Warn("Sequence store failed, using fallback", zap.String("key", key), zap.Error(err))
	return s.fallback.Next(ctx, key, ttl)
}

// Close closes both stores
func (s *FailoverSequenceStore) Close() error {
	return errors.Join(s.primary.Close(), s.fallback.Close())
}

var _ SequenceStore = (*FailoverSequenceStore)(nil)
