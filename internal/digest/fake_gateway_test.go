package digest

import (
	"context"
	"errors"
	"sync"

	"github.com/spec-kit/jira-digest/internal/domain"
)

var errUnavailable = errors.New("service unavailable")

type fakeGateway struct {
	mu sync.Mutex

	searches     map[domain.Identity][]domain.Ticket
	searchErrors map[domain.Identity]error
	details      map[string]*domain.Ticket
	detailErrors map[string]error
	users        map[domain.Identity]*domain.User
	bulkErr      error

	searchCalls []domain.Identity
	bulkCalls   [][]domain.Identity
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		searches:     map[domain.Identity][]domain.Ticket{},
		searchErrors: map[domain.Identity]error{},
		details:      map[string]*domain.Ticket{},
		detailErrors: map[string]error{},
		users:        map[domain.Identity]*domain.User{},
	}
}

func (f *fakeGateway) SearchTickets(_ context.Context, assignee domain.Identity, _ int) ([]domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchCalls = append(f.searchCalls, assignee)
	if err := f.searchErrors[assignee]; err != nil {
		return nil, err
	}
	// copy so tagging never leaks between calls
	return append([]domain.Ticket(nil), f.searches[assignee]...), nil
}

func (f *fakeGateway) GetTicket(_ context.Context, key string) (*domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.detailErrors[key]; err != nil {
		return nil, err
	}
	detail, ok := f.details[key]
	if !ok {
		return nil, errors.New("not found")
	}
	return detail, nil
}

func (f *fakeGateway) GetUser(_ context.Context, id domain.Identity) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, errUnavailable
	}
	return user, nil
}

func (f *fakeGateway) GetUsersBulk(_ context.Context, ids []domain.Identity) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bulkCalls = append(f.bulkCalls, ids)
	var out []domain.User
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out = append(out, *u)
		}
	}
	// a failing lookup may still carry the users it already had
	return out, f.bulkErr
}

func email(s string) *string { return &s }
