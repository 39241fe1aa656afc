package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/jira-digest/internal/events"
	"github.com/spec-kit/jira-digest/internal/jira"
	"github.com/spec-kit/jira-digest/internal/secret"
)

const testKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func newConnectionService(t *testing.T, verify Verifier) *ConnectionService {
	t.Helper()
	sealer, err := secret.NewSealer(testKey)
	require.NoError(t, err)
	return NewConnectionService(ConnectionDependencies{
		Repo:   newMemoryConnections(),
		Sealer: sealer,
		Verify: verify,
		Logger: zap.NewNop(),
	})
}

func TestConnectionCreate(t *testing.T) {
	var verified jira.Credentials
	svc := newConnectionService(t, func(_ context.Context, creds jira.Credentials) error {
		verified = creds
		return nil
	})

	conn, err := svc.Create(context.Background(), ConnectionInput{
		BaseURL:  " https://acme.atlassian.net/ ",
		Username: "Alice@Acme.com",
		APIToken: "secret-token",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://acme.atlassian.net", verified.BaseURL)
	assert.Equal(t, "alice@acme.com", conn.UniqueID)
	assert.Equal(t, "Alice@Acme.com : https://acme.atlassian.net", conn.Title)
	assert.NotContains(t, string(conn.SealedToken), "secret-token")
	_, err = uuid.Parse(conn.ID)
	assert.NoError(t, err)

	creds, err := svc.Credentials(context.Background(), conn.ID)
	require.NoError(t, err)
	assert.Equal(t, "secret-token", creds.APIToken)
	assert.Equal(t, "Alice@Acme.com", creds.Username)
}

func TestConnectionCreateValidation(t *testing.T) {
	svc := newConnectionService(t, nil)

	_, err := svc.Create(context.Background(), ConnectionInput{BaseURL: "https://x"})
	assert.Equal(t, "VALIDATION_FAILED", codeOf(t, err))

	_, err = svc.Create(context.Background(), ConnectionInput{BaseURL: "ftp://x", Username: "u", APIToken: "t"})
	assert.Equal(t, "VALIDATION_FAILED", codeOf(t, err))
}

func TestConnectionCreateRejectsSameUsername(t *testing.T) {
	svc := newConnectionService(t, nil)
	in := ConnectionInput{BaseURL: "https://a.example.com", Username: "bob", APIToken: "t"}

	_, err := svc.Create(context.Background(), in)
	require.NoError(t, err)

	in.Username = "BOB"
	in.BaseURL = "https://b.example.com"
	_, err = svc.Create(context.Background(), in)
	assert.Equal(t, "CONFLICT", codeOf(t, err))
}

func TestConnectionCreateVerifyFailure(t *testing.T) {
	cause := errors.New("401")
	svc := newConnectionService(t, func(context.Context, jira.Credentials) error { return cause })

	_, err := svc.Create(context.Background(), ConnectionInput{BaseURL: "https://a.example.com", Username: "bob", APIToken: "bad"})
	assert.Equal(t, "UPSTREAM_FAILED", codeOf(t, err))
	assert.ErrorIs(t, err, cause)

	conns, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, conns)
}

func TestConnectionGetAndDelete(t *testing.T) {
	svc := newConnectionService(t, nil)
	dispatcher := events.NewInMemoryDispatcher()
	svc.dispatcher = dispatcher

	var mu sync.Mutex
	var types []events.EventType
	record := func(_ context.Context, e events.Event) error {
		mu.Lock()
		defer mu.Unlock()
		types = append(types, e.Type)
		return nil
	}
	dispatcher.Subscribe(events.EventConnectionCreated, record)
	dispatcher.Subscribe(events.EventConnectionDeleted, record)

	conn, err := svc.Create(context.Background(), ConnectionInput{BaseURL: "https://a.example.com", Username: "bob", APIToken: "t"})
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), conn.ID)
	require.NoError(t, err)
	assert.Equal(t, conn.Title, got.Title)

	require.NoError(t, svc.Delete(context.Background(), conn.ID))

	_, err = svc.Get(context.Background(), conn.ID)
	assert.Equal(t, "NOT_FOUND", codeOf(t, err))

	err = svc.Delete(context.Background(), "not-a-uuid")
	assert.Equal(t, "NOT_FOUND", codeOf(t, err))

	assert.Equal(t, []events.EventType{events.EventConnectionCreated, events.EventConnectionDeleted}, types)
}

func TestConnectionServiceNotConfigured(t *testing.T) {
	svc := NewConnectionService(ConnectionDependencies{})

	_, err := svc.List(context.Background())
	assert.Equal(t, "NOT_CONFIGURED", codeOf(t, err))

	_, err = svc.Credentials(context.Background(), uuid.NewString())
	assert.Equal(t, "NOT_CONFIGURED", codeOf(t, err))

	var nilSvc *ConnectionService
	_, err = nilSvc.Credentials(context.Background(), uuid.NewString())
	assert.True(t, strings.Contains(err.Error(), "POSTGRES_DSN"))
}
