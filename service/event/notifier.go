package event

import (
	"context"
	"errors"
	"log/slog"

	"github.com/viant/gridstore/service/messaging"
)

// Notifier receives lifecycle events after the change has been applied and
// persisted. Implementations must not block.
type Notifier interface {
	Notify(ctx context.Context, event *Event[Change]) error
}

// QueueNotifier publishes events to a queue; events that do not fit are
// dropped with a warning.
type QueueNotifier struct {
	publisher *Publisher[Change]
	logger    *slog.Logger
}

// NewQueueNotifier creates a notifier over queue.
func NewQueueNotifier(queue messaging.Queue[Event[Change]], logger *slog.Logger) *QueueNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &QueueNotifier{publisher: NewPublisher(queue), logger: logger}
}

// Publisher returns the publisher consumers read from.
func (n *QueueNotifier) Publisher() *Publisher[Change] {
	return n.publisher
}

func (n *QueueNotifier) Notify(ctx context.Context, event *Event[Change]) error {
	err := n.publisher.Publish(ctx, event)
	if errors.Is(err, messaging.ErrQueueFull) {
		n.logger.Warn("event dropped",
			"type", event.Context.Type,
			"contextId", event.Context.ContextID,
			"taskId", event.Context.TaskID,
			"hostName", event.Context.HostName)
		return nil
	}
	return err
}

// Nop discards every event.
type Nop struct{}

func (Nop) Notify(context.Context, *Event[Change]) error { return nil }
