package cache

import (
	"github.com/comercia/backend/internal/domain/shared"
	"github.com/comercia/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewIdempotencyStore builds the idempotency store from configuration.
// When Redis is enabled it is preferred; if the connection fails the
// engine falls back to the in-memory store so payment and transfer
// endpoints keep working on a single instance.
func NewIdempotencyStore(cfg config.RedisConfig, logger *zap.Logger) shared.IdempotencyStore {
	if !cfg.Enabled {
		logger.Info("idempotency store: in-memory (redis disabled)")
		return NewInMemoryIdempotencyStore()
	}

	store, err := NewRedisIdempotencyStore(RedisConfig{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err != nil {
		logger.Warn("idempotency store: redis unavailable, falling back to in-memory",
			zap.String("addr", cfg.Addr()),
			zap.Error(err),
		)
		return NewInMemoryIdempotencyStore()
	}

	logger.Info("idempotency store: redis", zap.String("addr", cfg.Addr()))
	return store
}
