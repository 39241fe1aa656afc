package jira

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/jira-digest/internal/digest"
	"github.com/spec-kit/jira-digest/internal/domain"
)

// UserCache keeps resolved display names in Redis so repeated builds skip
// user lookups. Ticket calls pass straight through.
type UserCache struct {
	digest.Gateway
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

// NewUserCache wraps next with a display-name cache scoped to namespace
// (normally the site URL). It returns next unchanged when rdb is nil or ttl
// is not positive.
func NewUserCache(next digest.Gateway, rdb *redis.Client, namespace string, ttl time.Duration, logger *zap.Logger) digest.Gateway {
	if rdb == nil || ttl <= 0 {
		return next
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserCache{
		Gateway: next,
		rdb:     rdb,
		prefix:  "jira-digest:user:" + namespace + ":",
		ttl:     ttl,
		logger:  logger,
	}
}

func (c *UserCache) key(id domain.Identity) string {
	return c.prefix + string(id)
}

// GetUser serves the display name from cache when present.
func (c *UserCache) GetUser(ctx context.Context, id domain.Identity) (*domain.User, error) {
	name, err := c.rdb.Get(ctx, c.key(id)).Result()
	switch {
	case err == nil:
		return &domain.User{AccountID: string(id), DisplayName: name}, nil
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("user cache read failed", zap.String("identity", string(id)), zap.Error(err))
	}

	user, err := c.Gateway.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	c.store(ctx, map[domain.Identity]string{id: user.DisplayName})
	return user, nil
}

// GetUsersBulk serves cached names and fetches the rest in a single call.
// When that call fails the cached users are returned along with the error.
func (c *UserCache) GetUsersBulk(ctx context.Context, ids []domain.Identity) ([]domain.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = c.key(id)
	}

	cached, err := c.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		c.logger.Warn("user cache read failed", zap.Int("ids", len(ids)), zap.Error(err))
		cached = make([]any, len(ids))
	}

	users := make([]domain.User, 0, len(ids))
	var misses []domain.Identity
	for i, id := range ids {
		if name, ok := cached[i].(string); ok && name != "" {
			users = append(users, domain.User{AccountID: string(id), DisplayName: name})
			continue
		}
		misses = append(misses, id)
	}
	if len(misses) == 0 {
		return users, nil
	}

	fetched, err := c.Gateway.GetUsersBulk(ctx, misses)
	if err != nil {
		c.logger.Warn("user lookup for cache misses failed", zap.Int("misses", len(misses)), zap.Error(err))
		return users, err
	}
	names := make(map[domain.Identity]string, len(fetched))
	for _, u := range fetched {
		names[domain.Identity(u.AccountID)] = u.DisplayName
	}
	c.store(ctx, names)
	return append(users, fetched...), nil
}

func (c *UserCache) store(ctx context.Context, names map[domain.Identity]string) {
	pipe := c.rdb.Pipeline()
	queued := 0
	for id, name := range names {
		if id == "" || name == "" {
			continue
		}
		pipe.Set(ctx, c.key(id), name, c.ttl)
		queued++
	}
	if queued == 0 {
		return
	}
	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.Warn("user cache write failed", zap.Error(err))
	}
}
