// Package notify publishes built digests to the places that display them.
package notify

import (
	"context"
	"time"
)

// Message is what gets published for one digest.
type Message struct {
	DigestID    string
	Name        string
	Text        string
	GeneratedAt time.Time
}

// Publisher delivers a digest to one destination.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, msg Message) error
}
