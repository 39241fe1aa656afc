package persistence

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/jira-digest/internal/config"
)

// Redis holds the client behind the display-name cache and the digest slot
// publisher. Without an address it is empty and both features are off.
type Redis struct {
	client *redis.Client
}

// NewRedis creates the client. An unreachable server is only logged: the
// cache falls through to Jira and publish failures are reported per digest.
func NewRedis(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) *Redis {
	if cfg.Addr == "" {
		logger.Info("REDIS_ADDR not provided; display-name cache and redis publishing disabled")
		return &Redis{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.String("addr", cfg.Addr), zap.Error(err))
	} else {
		logger.Info("connected to redis", zap.String("addr", cfg.Addr), zap.Int("db", cfg.DB))
	}
	return &Redis{client: client}
}

// Client returns the go-redis client, or nil when disabled.
func (r *Redis) Client() *redis.Client {
	if r == nil {
		return nil
	}
	return r.client
}

// Close closes the client.
func (r *Redis) Close() {
	if client := r.Client(); client != nil {
		_ = client.Close()
	}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	client := r.Client()
	if client == nil {
		return ErrNotConfigured
	}
	return client.Ping(ctx).Err()
}
