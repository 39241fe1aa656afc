package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/jira-digest/internal/domain"
	"github.com/spec-kit/jira-digest/internal/events"
	"github.com/spec-kit/jira-digest/internal/jira"
	"github.com/spec-kit/jira-digest/internal/repository"
	"github.com/spec-kit/jira-digest/internal/secret"
	apperrors "github.com/spec-kit/jira-digest/pkg/util/errorutil"
)

// Verifier checks that credentials are accepted by the remote site.
type Verifier func(ctx context.Context, creds jira.Credentials) error

// ConnectionService implements the configuration flow for stored Jira sites.
type ConnectionService struct {
	repo       repository.ConnectionRepository
	sealer     *secret.Sealer
	verify     Verifier
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// ConnectionDependencies bundles collaborators for the connection service.
type ConnectionDependencies struct {
	Repo       repository.ConnectionRepository
	Sealer     *secret.Sealer
	Verify     Verifier
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// ConnectionInput is the form submitted to add a site.
type ConnectionInput struct {
	BaseURL  string
	Username string
	APIToken string
}

// NewConnectionService constructs the service. Without a repository or a
// sealer every operation reports NOT_CONFIGURED.
func NewConnectionService(deps ConnectionDependencies) *ConnectionService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConnectionService{
		repo:       deps.Repo,
		sealer:     deps.Sealer,
		verify:     deps.Verify,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

func (s *ConnectionService) enabled() error {
	if s == nil || s.repo == nil || s.sealer == nil {
		return apperrors.NewNotConfigured("stored connections require POSTGRES_DSN and SECRET_KEY")
	}
	return nil
}

// Create validates the input, verifies connectivity, rejects a second entry
// for the same username and stores the connection with a sealed token.
func (s *ConnectionService) Create(ctx context.Context, in ConnectionInput) (*domain.Connection, error) {
	if err := s.enabled(); err != nil {
		return nil, err
	}
	in.BaseURL = strings.TrimRight(strings.TrimSpace(in.BaseURL), "/")
	in.Username = strings.TrimSpace(in.Username)
	if err := validateConnectionInput(in); err != nil {
		return nil, err
	}

	uniqueID := strings.ToLower(in.Username)
	if _, err := s.repo.GetByUniqueID(ctx, uniqueID); err == nil {
		return nil, apperrors.NewConflict("connection already configured", map[string]any{"username": in.Username})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	creds := jira.Credentials{BaseURL: in.BaseURL, Username: in.Username, APIToken: in.APIToken}
	if s.verify != nil {
		if err := s.verify(ctx, creds); err != nil {
			s.logger.Warn("jira connection check failed", zap.String("base_url", in.BaseURL), zap.Error(err))
			return nil, apperrors.NewUpstreamError("cannot connect to jira", err)
		}
	}

	sealed, err := s.sealer.Seal([]byte(in.APIToken))
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	conn := &domain.Connection{
		ID:          uuid.NewString(),
		UniqueID:    uniqueID,
		Title:       in.Username + " : " + in.BaseURL,
		BaseURL:     in.BaseURL,
		Username:    in.Username,
		SealedToken: sealed,
	}
	if err := s.repo.Create(ctx, conn); err != nil {
		if errors.Is(err, repository.ErrDuplicateConnection) {
			return nil, apperrors.NewConflict("connection already configured", map[string]any{"username": in.Username})
		}
		return nil, apperrors.MapError(err)
	}

	s.emit(ctx, events.EventConnectionCreated, conn)
	return conn, nil
}

// List returns every stored connection.
func (s *ConnectionService) List(ctx context.Context) ([]domain.Connection, error) {
	if err := s.enabled(); err != nil {
		return nil, err
	}
	conns, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return conns, nil
}

// Get returns one stored connection.
func (s *ConnectionService) Get(ctx context.Context, id string) (*domain.Connection, error) {
	if err := s.enabled(); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.NewNotFound("connection", map[string]any{"id": id})
	}
	conn, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("connection", map[string]any{"id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return conn, nil
}

// Delete removes a stored connection.
func (s *ConnectionService) Delete(ctx context.Context, id string) error {
	conn, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, conn.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("connection", map[string]any{"id": id})
		}
		return apperrors.MapError(err)
	}
	s.emit(ctx, events.EventConnectionDeleted, conn)
	return nil
}

// Credentials returns the unsealed credentials of a stored connection.
func (s *ConnectionService) Credentials(ctx context.Context, id string) (jira.Credentials, error) {
	conn, err := s.Get(ctx, id)
	if err != nil {
		return jira.Credentials{}, err
	}
	token, err := s.sealer.Open(conn.SealedToken)
	if err != nil {
		s.logger.Error("stored api token cannot be opened", zap.String("connection_id", id), zap.Error(err))
		return jira.Credentials{}, apperrors.NewInternalError(err)
	}
	return jira.Credentials{BaseURL: conn.BaseURL, Username: conn.Username, APIToken: string(token)}, nil
}

func (s *ConnectionService) emit(ctx context.Context, eventType events.EventType, conn *domain.Connection) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    events.Source{Trigger: "api", ConnectionID: conn.ID},
		Timestamp: time.Now().UTC(),
		Payload:   events.ConnectionPayload{ConnectionID: conn.ID, Title: conn.Title},
	})
}

func validateConnectionInput(in ConnectionInput) error {
	missing := []string{}
	if in.BaseURL == "" {
		missing = append(missing, "base_url")
	}
	if in.Username == "" {
		missing = append(missing, "username")
	}
	if in.APIToken == "" {
		missing = append(missing, "api_token")
	}
	if len(missing) > 0 {
		return apperrors.NewValidationError("base_url, username, api_token required", map[string]any{"missing": missing})
	}
	u, err := url.Parse(in.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return apperrors.NewValidationError("base_url must be an http(s) URL", map[string]any{"base_url": in.BaseURL})
	}
	return nil
}
