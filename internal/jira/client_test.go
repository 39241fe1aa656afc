package jira

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/jira-digest/internal/domain"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, token, ok := r.BasicAuth()
		if !ok || user != "me@example.com" || token != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return NewClient(Credentials{BaseURL: srv.URL + "/", Username: "me@example.com", APIToken: "secret"}, 5*time.Second, nil)
}

func TestSearchJQL(t *testing.T) {
	assert.Equal(t, "assignee was currentuser() AND updated >= -1d ORDER BY updated DESC", SearchJQL("", 1))
	assert.Equal(t, `assignee was "557058:abc" AND updated >= -3d ORDER BY updated DESC`, SearchJQL("557058:abc", 3))
}

func TestSearchTickets(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/api/2/search", r.URL.Path)
		assert.Equal(t, SearchJQL("u1", 2), r.URL.Query().Get("jql"))
		_, _ = w.Write([]byte(`{"issues":[
			{"key":"PROJ-1","fields":{"summary":"Fix bug","status":{"name":"Open"},"statuscategorychangedate":"2024-03-05T14:30:00.000+0000"}},
			{"key":"PROJ-2","fields":{"summary":"Other","status":{"name":"Done"}}}
		]}`))
	})

	tickets, err := client.SearchTickets(context.Background(), "u1", 2)
	require.NoError(t, err)
	require.Len(t, tickets, 2)
	assert.Equal(t, domain.Ticket{Key: "PROJ-1", Status: "Open", Summary: "Fix bug", StatusChangedAt: "2024-03-05T14:30:00.000+0000"}, tickets[0])
	assert.Equal(t, "PROJ-2", tickets[1].Key)
}

func TestGetTicket(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/api/2/issue/PROJ-1", r.URL.Path)
		_, _ = w.Write([]byte(`{"key":"PROJ-1","fields":{"summary":"Fix bug","status":{"name":"Open"},
			"comment":{"comments":[
				{"id":"10","author":{"accountId":"u1","displayName":"Ann","emailAddress":"ann@example.com"},"body":"hi","created":"2024-03-05T10:00:00.000+0000"},
				{"id":"11","author":{"accountId":"u2","displayName":"Ben"},"body":"yo","created":"2024-03-05T11:00:00.000+0000"}
			]}}}`))
	})

	ticket, err := client.GetTicket(context.Background(), "PROJ-1")
	require.NoError(t, err)
	require.Len(t, ticket.Comments, 2)
	require.NotNil(t, ticket.Comments[0].Author.EmailAddress)
	assert.Equal(t, "ann@example.com", *ticket.Comments[0].Author.EmailAddress)
	assert.Nil(t, ticket.Comments[1].Author.EmailAddress)
	assert.Equal(t, "u2", ticket.Comments[1].Author.AccountID)
}

func TestGetTicketWithoutCommentField(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"key":"PROJ-1","fields":{"summary":"Fix bug"}}`))
	})

	_, err := client.GetTicket(context.Background(), "PROJ-1")
	assert.ErrorIs(t, err, ErrUnexpectedShape)
}

func TestGetUsersBulk(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/api/2/user/bulk", r.URL.Path)
		assert.Equal(t, []string{"a", "b"}, r.URL.Query()["accountId"])
		assert.Equal(t, "2", r.URL.Query().Get("maxResults"))
		_, _ = w.Write([]byte(`{"values":[{"accountId":"a","displayName":"Ann"}]}`))
	})

	users, err := client.GetUsersBulk(context.Background(), []domain.Identity{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, []domain.User{{AccountID: "a", DisplayName: "Ann"}}, users)
}

func TestGetUser(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/api/2/user", r.URL.Path)
		assert.Equal(t, "a", r.URL.Query().Get("accountId"))
		_, _ = w.Write([]byte(`{"accountId":"a","displayName":"Ann"}`))
	})

	user, err := client.GetUser(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "Ann", user.DisplayName)
}

func TestNonOKStatusIsFailure(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.GetUser(context.Background(), "a")
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	assert.Equal(t, "user", statusErr.Op)
}

func TestVerifyConnection(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/api/2/mypreferences/locale", r.URL.Path)
		_, _ = w.Write([]byte(`{"locale":"en_US"}`))
	})
	require.NoError(t, client.VerifyConnection(context.Background()))

	bad := NewClient(Credentials{BaseURL: client.BaseURL(), Username: "me@example.com", APIToken: "wrong"}, time.Second, nil)
	assert.Error(t, bad.VerifyConnection(context.Background()))
}

func TestCanceledContextSkipsRequest(t *testing.T) {
	client := NewClient(Credentials{BaseURL: "http://127.0.0.1:1"}, time.Second, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.SearchTickets(ctx, "", 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRequestTimeoutFollowsDeadline(t *testing.T) {
	c := NewClient(Credentials{BaseURL: "https://jira.example.com"}, 30*time.Second, nil)
	assert.Equal(t, 30*time.Second, c.requestTimeout(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	got := c.requestTimeout(ctx)
	assert.LessOrEqual(t, got, 2*time.Second)
	assert.Greater(t, got, time.Duration(0))
}
