package event

import (
	"context"
	"errors"
	"log/slog"
)

// Listener hands consumed events to a handler. It runs on the caller's
// goroutine.
type Listener[T any] struct {
	publisher *Publisher[T]
	handler   func(*Event[T])
	logger    *slog.Logger
}

func NewListener[T any](publisher *Publisher[T], handler func(*Event[T])) *Listener[T] {
	return &Listener[T]{
		publisher: publisher,
		handler:   handler,
		logger:    slog.Default(),
	}
}

// Run consumes events until ctx is done.
func (l *Listener[T]) Run(ctx context.Context) error {
	for {
		event, err := l.publisher.Consume(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			l.logger.Error("failed to consume event", "error", err)
			return err
		}
		if event != nil {
			l.handler(event)
		}
	}
}
