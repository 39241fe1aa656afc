package worker

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/jira-digest/internal/events"
	"github.com/spec-kit/jira-digest/internal/service"
)

const drainTimeout = 10 * time.Second

// ErrQueueFull is returned to the dispatcher when a digest cannot be queued.
var ErrQueueFull = errors.New("notification queue full")

// NotificationWorker delivers built digests to the publishers in the
// background, so a slow Slack or Redis call never holds up an HTTP response.
type NotificationWorker struct {
	service *service.NotificationService
	queue   chan events.Event
	logger  *zap.Logger
}

// NewNotificationWorker creates a worker with a bounded queue.
func NewNotificationWorker(notificationService *service.NotificationService, buffer int, logger *zap.Logger) *NotificationWorker {
	if buffer <= 0 {
		buffer = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationWorker{
		service: notificationService,
		queue:   make(chan events.Event, buffer),
		logger:  logger,
	}
}

// Subscribe queues digest_built events and logs connection events inline.
func (w *NotificationWorker) Subscribe(dispatcher events.Dispatcher) {
	dispatcher.Subscribe(events.EventDigestBuilt, w.enqueue)
	dispatcher.Subscribe(events.EventConnectionCreated, w.service.LogEvent)
	dispatcher.Subscribe(events.EventConnectionDeleted, w.service.LogEvent)
}

func (w *NotificationWorker) enqueue(_ context.Context, event events.Event) error {
	select {
	case w.queue <- event:
		return nil
	default:
		w.logger.Warn("dropping digest notification", zap.String("event_id", event.ID))
		return ErrQueueFull
	}
}

// Start delivers queued events until ctx is cancelled, then drains what is
// left with a bounded deadline.
func (w *NotificationWorker) Start(ctx context.Context) error {
	w.logger.Info("notification worker started", zap.Strings("publishers", w.service.Publishers()))
	for {
		select {
		case event := <-w.queue:
			_ = w.service.Deliver(ctx, event)
		case <-ctx.Done():
			w.drain()
			w.logger.Info("notification worker stopped")
			return ctx.Err()
		}
	}
}

func (w *NotificationWorker) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	for {
		select {
		case event := <-w.queue:
			_ = w.service.Deliver(ctx, event)
		default:
			return
		}
	}
}
