package digest

import (
	"context"

	"github.com/spec-kit/jira-digest/internal/domain"
)

// Gateway is the remote ticketing API as seen by the digest.
type Gateway interface {
	// SearchTickets returns tickets assigned to assignee and updated within
	// lookbackDays, most recently updated first. An empty assignee means the
	// authenticated caller.
	SearchTickets(ctx context.Context, assignee domain.Identity, lookbackDays int) ([]domain.Ticket, error)
	GetTicket(ctx context.Context, key string) (*domain.Ticket, error)
	GetUser(ctx context.Context, id domain.Identity) (*domain.User, error)
	GetUsersBulk(ctx context.Context, ids []domain.Identity) ([]domain.User, error)
}
