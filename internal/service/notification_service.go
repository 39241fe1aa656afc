package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/jira-digest/internal/events"
	"github.com/spec-kit/jira-digest/internal/notify"
)

// NotificationService forwards built digests to the configured publishers.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	publishers []notify.Publisher
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, publishers ...notify.Publisher) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		publishers: publishers,
	}
}

// RegisterHandlers subscribes delivery and logging synchronously: Publish
// returns once every publisher has run.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventDigestBuilt, n.Deliver)
	n.dispatcher.Subscribe(events.EventConnectionCreated, n.LogEvent)
	n.dispatcher.Subscribe(events.EventConnectionDeleted, n.LogEvent)
}

// Publishers returns the names of the active publishers.
func (n *NotificationService) Publishers() []string {
	names := make([]string, 0, len(n.publishers))
	for _, p := range n.publishers {
		names = append(names, p.Name())
	}
	return names
}

// Deliver sends a digest_built event to every publisher. Publisher failures
// are logged and never returned.
func (n *NotificationService) Deliver(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.DigestBuiltPayload)
	if !ok {
		n.logger.Warn("digest_built event without digest payload", zap.String("event_id", event.ID))
		return nil
	}
	msg := notify.Message{
		DigestID:    payload.DigestID,
		Name:        event.Source.Schedule,
		Text:        payload.Text,
		GeneratedAt: event.Timestamp,
	}
	for _, p := range n.publishers {
		if err := p.Publish(ctx, msg); err != nil {
			n.logger.Warn("digest publish failed",
				zap.String("publisher", p.Name()),
				zap.String("digest_id", payload.DigestID),
				zap.Error(err))
			continue
		}
		n.logger.Debug("digest published",
			zap.String("publisher", p.Name()),
			zap.String("digest_id", payload.DigestID))
	}
	return nil
}

// LogEvent records connection lifecycle events.
func (n *NotificationService) LogEvent(_ context.Context, event events.Event) error {
	n.logger.Info(string(event.Type), zap.String("event_id", event.ID), zap.Any("payload", event.Payload))
	return nil
}
