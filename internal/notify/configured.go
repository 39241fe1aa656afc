package notify

import (
	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/jira-digest/internal/config"
)

// Configured returns the publishers enabled by cfg. The Redis slot needs a
// client; Slack needs both a token and a channel.
func Configured(cfg config.NotificationConfig, rdb *redis.Client) []Publisher {
	var publishers []Publisher
	if rdb != nil && cfg.RedisKey != "" {
		publishers = append(publishers, NewRedisPublisher(rdb, cfg.RedisKey, cfg.RedisChannel))
	}
	if cfg.SlackToken != "" && cfg.SlackChannel != "" {
		publishers = append(publishers, NewSlackPublisher(cfg.SlackToken, cfg.SlackChannel, cfg.SlackAPIURL))
	}
	return publishers
}
