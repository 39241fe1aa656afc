package events

import (
	"time"

	"github.com/spec-kit/jira-digest/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventDigestBuilt       EventType = "digest_built"
	EventConnectionCreated EventType = "connection_created"
	EventConnectionDeleted EventType = "connection_deleted"
)

// Source describes what triggered the event.
type Source struct {
	Trigger      string `json:"trigger"`
	ConnectionID string `json:"connection_id,omitempty"`
	Schedule     string `json:"schedule,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Source    Source      `json:"source"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// DigestBuiltPayload payload.
type DigestBuiltPayload struct {
	DigestID    string           `json:"digest_id"`
	Text        string           `json:"text"`
	Mode        string           `json:"mode"`
	TicketCount int              `json:"ticket_count"`
	Warnings    []domain.Warning `json:"warnings,omitempty"`
}

// ConnectionPayload payload.
type ConnectionPayload struct {
	ConnectionID string `json:"connection_id"`
	Title        string `json:"title"`
}
