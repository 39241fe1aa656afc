package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/jira-digest/internal/config"
	"github.com/spec-kit/jira-digest/internal/digest"
	"github.com/spec-kit/jira-digest/internal/domain"
	"github.com/spec-kit/jira-digest/internal/events"
	"github.com/spec-kit/jira-digest/internal/jira"
	"github.com/spec-kit/jira-digest/internal/observability"
	apperrors "github.com/spec-kit/jira-digest/pkg/util/errorutil"
)

// GatewayFactory returns the remote API for a set of credentials.
type GatewayFactory func(creds jira.Credentials) digest.Gateway

// DigestService builds digests and announces them.
type DigestService struct {
	defaults    config.DigestConfig
	jira        config.JiraConfig
	connections *ConnectionService
	gateways    GatewayFactory
	dispatcher  events.Dispatcher
	metrics     *observability.Metrics
	logger      *zap.Logger
}

// DigestDependencies bundles collaborators for the digest service.
type DigestDependencies struct {
	Connections *ConnectionService
	Gateways    GatewayFactory
	Dispatcher  events.Dispatcher
	Metrics     *observability.Metrics
	Logger      *zap.Logger
}

// BuildInput describes one build. Nil fields take the configured defaults;
// a non-nil empty AccountIDs forces self mode.
type BuildInput struct {
	LookbackDays  *int
	AccountIDs    []string
	CommentLength *int
	ConnectionID  string
	Trigger       string
	Schedule      string
}

// NewDigestService constructs the service.
func NewDigestService(cfg config.Config, deps DigestDependencies) *DigestService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DigestService{
		defaults:    cfg.Digest,
		jira:        cfg.Jira,
		connections: deps.Connections,
		gateways:    deps.Gateways,
		dispatcher:  deps.Dispatcher,
		metrics:     deps.Metrics,
		logger:      logger,
	}
}

// Build runs one digest build. A failed self-mode search is reported as an
// upstream error; every other failure is carried on the digest's warnings.
func (s *DigestService) Build(ctx context.Context, in BuildInput) (*domain.Digest, error) {
	req, err := s.request(in)
	if err != nil {
		return nil, err
	}
	creds, err := s.credentials(ctx, in.ConnectionID)
	if err != nil {
		return nil, err
	}

	builder := digest.NewBuilder(s.gateways(creds), digest.Options{
		BaseURL:     creds.BaseURL,
		Self:        domain.Identity(creds.Username),
		Concurrency: s.defaults.Concurrency,
	}, s.logger)

	start := time.Now()
	result, err := builder.Build(ctx, req)
	if err != nil {
		s.metrics.RecordBuild("failed", 0, time.Since(start))
		return nil, apperrors.NewUpstreamError("ticket search failed", err)
	}
	s.metrics.RecordBuild("ok", len(result.Warnings), time.Since(start))

	s.announce(ctx, in, result)
	return result, nil
}

func (s *DigestService) request(in BuildInput) (domain.DigestRequest, error) {
	req := domain.DigestRequest{
		LookbackDays:  s.defaults.LookbackDays,
		CommentLength: s.defaults.CommentLength,
	}
	if in.LookbackDays != nil {
		req.LookbackDays = *in.LookbackDays
	}
	if in.CommentLength != nil {
		req.CommentLength = *in.CommentLength
	}
	if req.LookbackDays <= 0 {
		return req, apperrors.NewValidationError("lookback_days must be positive", map[string]any{"lookback_days": req.LookbackDays})
	}
	if req.CommentLength < 0 {
		return req, apperrors.NewValidationError("comment_length must not be negative", map[string]any{"comment_length": req.CommentLength})
	}

	roster := s.defaults.AccountIDs
	if in.AccountIDs != nil {
		roster = in.AccountIDs
	}
	for _, id := range roster {
		if id == "" {
			return req, apperrors.NewValidationError("account_ids must not contain blanks", nil)
		}
		req.Identities = append(req.Identities, domain.Identity(id))
	}
	return req, nil
}

func (s *DigestService) credentials(ctx context.Context, connectionID string) (jira.Credentials, error) {
	if connectionID != "" {
		return s.connections.Credentials(ctx, connectionID)
	}
	if !s.jira.Configured() {
		return jira.Credentials{}, apperrors.NewNotConfigured("JIRA_BASE_URL, JIRA_USERNAME and JIRA_API_TOKEN are required")
	}
	return jira.Credentials{
		BaseURL:  s.jira.BaseURL,
		Username: s.jira.Username,
		APIToken: s.jira.APIToken,
	}, nil
}

func (s *DigestService) announce(ctx context.Context, in BuildInput, result *domain.Digest) {
	if s.dispatcher == nil {
		return
	}
	trigger := in.Trigger
	if trigger == "" {
		trigger = "api"
	}
	event := events.Event{
		ID:   uuid.NewString(),
		Type: events.EventDigestBuilt,
		Source: events.Source{
			Trigger:      trigger,
			ConnectionID: in.ConnectionID,
			Schedule:     in.Schedule,
		},
		Timestamp: result.GeneratedAt,
		Payload: events.DigestBuiltPayload{
			DigestID:    result.ID,
			Text:        result.Text,
			Mode:        result.Mode.String(),
			TicketCount: result.TicketCount,
			Warnings:    result.Warnings,
		},
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("digest_built handlers failed", zap.String("digest_id", result.ID), zap.Error(err))
	}
}
