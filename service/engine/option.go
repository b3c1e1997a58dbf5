package engine

import (
	"log/slog"

	"github.com/viant/gridstore/model/entry"
	"github.com/viant/gridstore/service/event"
	"github.com/viant/gridstore/service/rescue"
)

// Option configures an Engine.
type Option func(e *Engine)

// WithWriter sets the rescue writer persisting every accepted mutation.
func WithWriter(writer rescue.Writer) Option {
	return func(e *Engine) {
		e.writer = writer
	}
}

// WithNotifier sets the event notifier.
func WithNotifier(notifier event.Notifier) Option {
	return func(e *Engine) {
		if notifier != nil {
			e.notifier = notifier
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMaxFinishedTasks sets the retention cap applied to contexts opened
// without one.
func WithMaxFinishedTasks(limit int) Option {
	return func(e *Engine) {
		if limit >= entry.Unbounded {
			e.maxFinishedTasks = limit
		}
	}
}
