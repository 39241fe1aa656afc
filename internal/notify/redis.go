package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// State is the JSON stored in the named slot.
type State struct {
	State       string    `json:"state"`
	Summary     string    `json:"Summary"`
	DigestID    string    `json:"digest_id"`
	GeneratedAt time.Time `json:"generated_at"`
}

// RedisPublisher writes the latest digest into a named key and optionally
// announces it on a pub/sub channel.
type RedisPublisher struct {
	rdb     *redis.Client
	key     string
	channel string
}

// NewRedisPublisher constructs a RedisPublisher. Scheduled digests with a
// name are stored under "<key>.<name>".
func NewRedisPublisher(rdb *redis.Client, key, channel string) *RedisPublisher {
	return &RedisPublisher{rdb: rdb, key: key, channel: channel}
}

func (p *RedisPublisher) Name() string { return "redis" }

// SlotKey returns the key a message is stored under.
func (p *RedisPublisher) SlotKey(msg Message) string {
	if msg.Name == "" {
		return p.key
	}
	return p.key + "." + msg.Name
}

// Publish stores the digest and publishes its text.
func (p *RedisPublisher) Publish(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(State{
		State:       "on",
		Summary:     msg.Text,
		DigestID:    msg.DigestID,
		GeneratedAt: msg.GeneratedAt,
	})
	if err != nil {
		return fmt.Errorf("redis publish: encode: %w", err)
	}
	if err := p.rdb.Set(ctx, p.SlotKey(msg), payload, 0).Err(); err != nil {
		return fmt.Errorf("redis publish: set %s: %w", p.SlotKey(msg), err)
	}
	if p.channel == "" {
		return nil
	}
	if err := p.rdb.Publish(ctx, p.channel, msg.Text).Err(); err != nil {
		return fmt.Errorf("redis publish: channel %s: %w", p.channel, err)
	}
	return nil
}
