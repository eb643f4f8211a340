package sessionstore

import (
	"context"
	"fmt"

	"github.com/pawnfin/console/internal/domain/session"
	"github.com/pawnfin/console/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Store kinds accepted by session.store
const (
	KindRedis  = "redis"
	KindMemory = "memory"
	KindAuto   = "auto"
)

// Pinger is implemented by stores that can report readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Factory builds the configured session store.
type Factory struct {
	session config.SessionConfig
	redis   config.RedisConfig
	logger  *zap.Logger
}

// NewFactory creates a Factory
func NewFactory(sessionCfg config.SessionConfig, redisCfg config.RedisConfig, logger *zap.Logger) *Factory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Factory{session: sessionCfg, redis: redisCfg, logger: logger}
}

// CreateRedisStore connects to the configured Redis.
func (f *Factory) CreateRedisStore(ctx context.Context) (*RedisStore, error) {
	return NewRedisStore(ctx, &redis.Options{
		Addr:     f.redis.Addr(),
		Password: f.redis.Password,
		DB:       f.redis.DB,
	}, f.session.KeyPrefix, f.session.IdleTTL)
}

// CreateMemoryStore starts an in-process store
func (f *Factory) CreateMemoryStore() *MemoryStore {
	return NewMemoryStore(f.session.IdleTTL, f.session.JanitorPeriod)
}

// CreateStore returns the store named by session.store. "auto" tries Redis
// and falls back to memory with a warning.
func (f *Factory) CreateStore(ctx context.Context) (session.Store, error) {
	switch f.session.Store {
	case KindMemory:
		f.logger.Info("using in-memory session store")
		return f.CreateMemoryStore(), nil
	case KindRedis:
		store, err := f.CreateRedisStore(ctx)
		if err != nil {
			return nil, fmt.Errorf("Redis required for sessions but unavailable: %w", err)
		}
		f.logger.Info("using Redis session store", zap.String("addr", f.redis.Addr()))
		return store, nil
	}

	store, err := f.CreateRedisStore(ctx)
	if err == nil {
		f.logger.Info("using Redis session store", zap.String("addr", f.redis.Addr()))
		return store, nil
	}
	f.logger.Warn("Redis unavailable, falling back to in-memory session store. "+
		"Sessions will be lost on restart and not shared between instances.",
		zap.Error(err),
	)
	return f.CreateMemoryStore(), nil
}
