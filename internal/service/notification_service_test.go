package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/jira-digest/internal/events"
)

func TestNotificationServicePublishesDigest(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	failing := &recordingPublisher{name: "slack", err: errors.New("channel_not_found")}
	ok := &recordingPublisher{name: "redis"}

	svc := NewNotificationService(dispatcher, zap.NewNop(), failing, ok)
	svc.RegisterHandlers()
	assert.Equal(t, []string{"slack", "redis"}, svc.Publishers())

	at := time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)
	err := dispatcher.Publish(context.Background(), events.Event{
		ID:        "evt-1",
		Type:      events.EventDigestBuilt,
		Source:    events.Source{Trigger: "schedule", Schedule: "morning"},
		Timestamp: at,
		Payload:   events.DigestBuiltPayload{DigestID: "d-1", Text: "body\n"},
	})
	require.NoError(t, err)

	require.Len(t, failing.messages, 1)
	require.Len(t, ok.messages, 1)
	msg := ok.messages[0]
	assert.Equal(t, "d-1", msg.DigestID)
	assert.Equal(t, "morning", msg.Name)
	assert.Equal(t, "body\n", msg.Text)
	assert.Equal(t, at, msg.GeneratedAt)
}

func TestNotificationServiceIgnoresForeignPayload(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	pub := &recordingPublisher{name: "redis"}
	NewNotificationService(dispatcher, zap.NewNop(), pub).RegisterHandlers()

	err := dispatcher.Publish(context.Background(), events.Event{Type: events.EventDigestBuilt, Payload: "text"})
	require.NoError(t, err)
	assert.Empty(t, pub.messages)
}
