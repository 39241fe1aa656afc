package jira

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/jira-digest/internal/domain"
)

type countingUsers struct {
	*Client
	names     map[domain.Identity]string
	userCalls int
	bulkCalls [][]domain.Identity
	bulkErr   error
}

func (c *countingUsers) GetUser(_ context.Context, id domain.Identity) (*domain.User, error) {
	c.userCalls++
	return &domain.User{AccountID: string(id), DisplayName: c.names[id]}, nil
}

func (c *countingUsers) GetUsersBulk(_ context.Context, ids []domain.Identity) ([]domain.User, error) {
	c.bulkCalls = append(c.bulkCalls, ids)
	if c.bulkErr != nil {
		return nil, c.bulkErr
	}
	var out []domain.User
	for _, id := range ids {
		if name, ok := c.names[id]; ok {
			out = append(out, domain.User{AccountID: string(id), DisplayName: name})
		}
	}
	return out, nil
}

func TestNewUserCachePassthrough(t *testing.T) {
	next := &countingUsers{}
	assert.Same(t, next, NewUserCache(next, nil, "site", time.Minute, nil))

	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer rdb.Close()
	assert.Same(t, next, NewUserCache(next, rdb, "site", 0, nil))
}

func TestUserCacheAgainstRedis(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()

	next := &countingUsers{names: map[domain.Identity]string{"a": "Ann", "b": "Ben"}}
	cache := NewUserCache(next, rdb, uuid.NewString(), time.Minute, nil)
	ctx := context.Background()

	users, err := cache.GetUsersBulk(ctx, []domain.Identity{"a", "b", "c"})
	require.NoError(t, err)
	assert.Len(t, users, 2)

	users, err = cache.GetUsersBulk(ctx, []domain.Identity{"a", "c"})
	require.NoError(t, err)
	assert.Len(t, users, 1)
	require.Len(t, next.bulkCalls, 2)
	assert.Equal(t, []domain.Identity{"c"}, next.bulkCalls[1])

	user, err := cache.GetUser(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "Ben", user.DisplayName)
	assert.Zero(t, next.userCalls)
}

func TestUserCacheKeepsHitsWhenMissLookupFails(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()

	next := &countingUsers{names: map[domain.Identity]string{"a": "Ann"}}
	cache := NewUserCache(next, rdb, uuid.NewString(), time.Minute, nil)
	ctx := context.Background()

	_, err := cache.GetUsersBulk(ctx, []domain.Identity{"a"})
	require.NoError(t, err)

	lookupErr := errors.New("jira down")
	next.bulkErr = lookupErr
	users, err := cache.GetUsersBulk(ctx, []domain.Identity{"a", "b"})
	assert.ErrorIs(t, err, lookupErr)
	require.Len(t, users, 1)
	assert.Equal(t, "a", users[0].AccountID)
	assert.Equal(t, "Ann", users[0].DisplayName)
	assert.Equal(t, []domain.Identity{"b"}, next.bulkCalls[1])
}
