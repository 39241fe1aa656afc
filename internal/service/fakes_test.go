package service

import (
	"context"
	"errors"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/jira-digest/internal/domain"
	"github.com/spec-kit/jira-digest/internal/notify"
	"github.com/spec-kit/jira-digest/internal/repository"
)

type memoryConnections struct {
	mu    sync.Mutex
	items map[string]domain.Connection
	order []string
}

func newMemoryConnections() *memoryConnections {
	return &memoryConnections{items: map[string]domain.Connection{}}
}

func (m *memoryConnections) Create(_ context.Context, conn *domain.Connection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.items {
		if existing.UniqueID == conn.UniqueID {
			return repository.ErrDuplicateConnection
		}
	}
	m.items[conn.ID] = *conn
	m.order = append(m.order, conn.ID)
	return nil
}

func (m *memoryConnections) GetByID(_ context.Context, id string) (*domain.Connection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	conn, ok := m.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &conn, nil
}

func (m *memoryConnections) GetByUniqueID(_ context.Context, uniqueID string) (*domain.Connection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, conn := range m.items {
		if conn.UniqueID == uniqueID {
			c := conn
			return &c, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memoryConnections) List(_ context.Context) ([]domain.Connection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Connection, 0, len(m.order))
	for _, id := range m.order {
		if conn, ok := m.items[id]; ok {
			out = append(out, conn)
		}
	}
	return out, nil
}

func (m *memoryConnections) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.items, id)
	return nil
}

var errSearchDown = errors.New("search down")

type stubGateway struct {
	tickets   map[domain.Identity][]domain.Ticket
	details   map[string]*domain.Ticket
	searchErr error
}

func (g *stubGateway) SearchTickets(_ context.Context, assignee domain.Identity, _ int) ([]domain.Ticket, error) {
	if g.searchErr != nil {
		return nil, g.searchErr
	}
	return append([]domain.Ticket(nil), g.tickets[assignee]...), nil
}

func (g *stubGateway) GetTicket(_ context.Context, key string) (*domain.Ticket, error) {
	if detail, ok := g.details[key]; ok {
		return detail, nil
	}
	return nil, errors.New("missing")
}

func (g *stubGateway) GetUser(_ context.Context, id domain.Identity) (*domain.User, error) {
	return &domain.User{AccountID: string(id), DisplayName: "User " + string(id)}, nil
}

func (g *stubGateway) GetUsersBulk(_ context.Context, ids []domain.Identity) ([]domain.User, error) {
	out := make([]domain.User, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.User{AccountID: string(id), DisplayName: "User " + string(id)})
	}
	return out, nil
}

type recordingPublisher struct {
	mu       sync.Mutex
	name     string
	err      error
	messages []notify.Message
}

func (p *recordingPublisher) Name() string { return p.name }

func (p *recordingPublisher) Publish(_ context.Context, msg notify.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, msg)
	return p.err
}
