package service

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/jira-digest/internal/config"
	"github.com/spec-kit/jira-digest/internal/digest"
	"github.com/spec-kit/jira-digest/internal/jira"
)

// JiraGateways returns a factory of REST clients wrapped in the display-name
// cache. rdb may be nil.
func JiraGateways(cfg config.Config, rdb *redis.Client, logger *zap.Logger) GatewayFactory {
	return func(creds jira.Credentials) digest.Gateway {
		client := jira.NewClient(creds, cfg.Jira.RequestTimeout(), logger)
		return jira.NewUserCache(client, rdb, creds.BaseURL, cfg.Digest.UserCacheTTL(), logger)
	}
}

// JiraVerifier checks credentials with a fresh REST client.
func JiraVerifier(cfg config.Config, logger *zap.Logger) Verifier {
	return func(ctx context.Context, creds jira.Credentials) error {
		return jira.NewClient(creds, cfg.Jira.RequestTimeout(), logger).VerifyConnection(ctx)
	}
}
