package jira

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/jira-digest/internal/domain"
)

// ErrUnexpectedShape is returned when a response decodes but lacks a
// required field.
var ErrUnexpectedShape = errors.New("unexpected response shape")

// StatusError reports a non-200 response.
type StatusError struct {
	Op         string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("jira %s: unexpected status %d", e.Op, e.StatusCode)
}

// Credentials identify a Jira site and the account used to read it.
type Credentials struct {
	BaseURL  string
	Username string
	APIToken string
}

// Client talks to the Jira REST API v2 with basic auth.
type Client struct {
	creds   Credentials
	timeout time.Duration
	logger  *zap.Logger
}

// NewClient constructs a Client.
func NewClient(creds Credentials, timeout time.Duration, logger *zap.Logger) *Client {
	creds.BaseURL = strings.TrimRight(creds.BaseURL, "/")
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{creds: creds, timeout: timeout, logger: logger}
}

// BaseURL returns the site root without a trailing slash.
func (c *Client) BaseURL() string {
	return c.creds.BaseURL
}

type issue struct {
	Key    string `json:"key"`
	Fields struct {
		Summary string `json:"summary"`
		Status  struct {
			Name string `json:"name"`
		} `json:"status"`
		StatusCategoryChangeDate string `json:"statuscategorychangedate"`
		Comment                  *struct {
			Comments []domain.Comment `json:"comments"`
		} `json:"comment"`
	} `json:"fields"`
}

func (i issue) toTicket() domain.Ticket {
	t := domain.Ticket{
		Key:             i.Key,
		Status:          i.Fields.Status.Name,
		Summary:         i.Fields.Summary,
		StatusChangedAt: i.Fields.StatusCategoryChangeDate,
	}
	if i.Fields.Comment != nil {
		t.Comments = i.Fields.Comment.Comments
	}
	return t
}

type searchResponse struct {
	Issues []issue `json:"issues"`
}

type user struct {
	AccountID    string `json:"accountId"`
	DisplayName  string `json:"displayName"`
	EmailAddress string `json:"emailAddress"`
}

func (u user) toDomain() domain.User {
	return domain.User{AccountID: u.AccountID, DisplayName: u.DisplayName, EmailAddress: u.EmailAddress}
}

type bulkResponse struct {
	Values []user `json:"values"`
}

// SearchJQL builds the query for tickets assigned to assignee (or the
// current user when empty) updated within lookbackDays.
func SearchJQL(assignee domain.Identity, lookbackDays int) string {
	who := "currentuser()"
	if assignee != "" {
		who = strconv.Quote(string(assignee))
	}
	return fmt.Sprintf("assignee was %s AND updated >= -%dd ORDER BY updated DESC", who, lookbackDays)
}

// SearchTickets runs the assignee search.
func (c *Client) SearchTickets(ctx context.Context, assignee domain.Identity, lookbackDays int) ([]domain.Ticket, error) {
	query := url.Values{"jql": {SearchJQL(assignee, lookbackDays)}}
	var resp searchResponse
	if err := c.get(ctx, "search", "/rest/api/2/search?"+query.Encode(), &resp); err != nil {
		return nil, err
	}
	tickets := make([]domain.Ticket, 0, len(resp.Issues))
	for _, is := range resp.Issues {
		if is.Key == "" {
			return nil, fmt.Errorf("jira search: issue without key: %w", ErrUnexpectedShape)
		}
		tickets = append(tickets, is.toTicket())
	}
	return tickets, nil
}

// GetTicket fetches the full record of one ticket including its comments.
func (c *Client) GetTicket(ctx context.Context, key string) (*domain.Ticket, error) {
	var resp issue
	if err := c.get(ctx, "issue", "/rest/api/2/issue/"+url.PathEscape(key), &resp); err != nil {
		return nil, err
	}
	if resp.Fields.Comment == nil {
		return nil, fmt.Errorf("jira issue %s: no comment field: %w", key, ErrUnexpectedShape)
	}
	ticket := resp.toTicket()
	return &ticket, nil
}

// GetUser fetches a single user record.
func (c *Client) GetUser(ctx context.Context, id domain.Identity) (*domain.User, error) {
	query := url.Values{"accountId": {string(id)}}
	var resp user
	if err := c.get(ctx, "user", "/rest/api/2/user?"+query.Encode(), &resp); err != nil {
		return nil, err
	}
	u := resp.toDomain()
	return &u, nil
}

// GetUsersBulk fetches the records of several users in one call.
func (c *Client) GetUsersBulk(ctx context.Context, ids []domain.Identity) ([]domain.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := url.Values{}
	for _, id := range ids {
		query.Add("accountId", string(id))
	}
	query.Set("maxResults", strconv.Itoa(len(ids)))

	var resp bulkResponse
	if err := c.get(ctx, "user bulk", "/rest/api/2/user/bulk?"+query.Encode(), &resp); err != nil {
		return nil, err
	}
	users := make([]domain.User, 0, len(resp.Values))
	for _, u := range resp.Values {
		users = append(users, u.toDomain())
	}
	return users, nil
}

// VerifyConnection checks that the credentials are accepted.
func (c *Client) VerifyConnection(ctx context.Context) error {
	return c.get(ctx, "verify", "/rest/api/2/mypreferences/locale", nil)
}

// requestTimeout is the configured timeout, shortened to the context
// deadline when that comes first.
func (c *Client) requestTimeout(ctx context.Context) time.Duration {
	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); timeout <= 0 || remaining < timeout {
			timeout = remaining
		}
	}
	return timeout
}

func (c *Client) get(ctx context.Context, op, path string, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	agent := fiber.Get(c.creds.BaseURL + path).
		BasicAuth(c.creds.Username, c.creds.APIToken).
		Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	if timeout := c.requestTimeout(ctx); timeout > 0 {
		agent = agent.Timeout(timeout)
	}

	start := time.Now()
	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		c.logger.Warn("jira request failed", zap.String("op", op), zap.Error(errs[0]))
		return fmt.Errorf("jira %s: %w", op, errors.Join(errs...))
	}
	c.logger.Debug("jira request",
		zap.String("op", op),
		zap.Int("status", code),
		zap.Duration("latency", time.Since(start)),
	)
	if code != fiber.StatusOK {
		return &StatusError{Op: op, StatusCode: code}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("jira %s: decode: %w", op, err)
	}
	return nil
}
