package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/viant/gridstore/model/entry"
	"github.com/viant/gridstore/service/dao"
	"github.com/viant/gridstore/service/event"
	"github.com/viant/gridstore/service/rescue"
	"github.com/viant/gridstore/service/store"
	"github.com/viant/gridstore/tracing"
)

// Engine is the task lifecycle engine.
type Engine struct {
	mu               sync.Mutex
	store            *store.Store
	writer           rescue.Writer
	notifier         event.Notifier
	logger           *slog.Logger
	maxFinishedTasks int
}

// New creates an empty engine.
func New(options ...Option) *Engine {
	ret := &Engine{
		store:            store.New(),
		notifier:         event.Nop{},
		logger:           slog.Default(),
		maxFinishedTasks: entry.Unbounded,
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// step is one rescue write of a mutation with its compensating write.
type step struct {
	apply  func(ctx context.Context, w rescue.Writer) error
	revert func(ctx context.Context, w rescue.Writer) error
}

// commit applies the steps in order. On the first failure the already
// applied steps are reverted in reverse order, undo restores the store and
// the error is returned wrapped with dao.ErrPersistence.
func (e *Engine) commit(ctx context.Context, undo func(), steps ...step) error {
	if e.writer == nil {
		return nil
	}
	for i, s := range steps {
		err := s.apply(ctx, e.writer)
		if err == nil {
			continue
		}
		for j := i - 1; j >= 0; j-- {
			if steps[j].revert == nil {
				continue
			}
			if rErr := steps[j].revert(ctx, e.writer); rErr != nil {
				e.logger.Error("failed to revert rescue write", "error", rErr)
			}
		}
		if undo != nil {
			undo()
		}
		return fmt.Errorf("%w: %w", dao.ErrPersistence, err)
	}
	return nil
}

func putTask(task *entry.Task) step {
	return step{apply: func(ctx context.Context, w rescue.Writer) error { return w.PutTask(ctx, task) }}
}

func putContext(c *entry.Context) step {
	return step{apply: func(ctx context.Context, w rescue.Writer) error { return w.PutContext(ctx, c) }}
}

func putHostRuntime(host *entry.HostRuntime) step {
	return step{apply: func(ctx context.Context, w rescue.Writer) error { return w.PutHostRuntime(ctx, host) }}
}

func (e *Engine) notify(ctx context.Context, evt *event.Event[event.Change]) {
	if err := e.notifier.Notify(ctx, evt); err != nil {
		e.logger.Warn("failed to notify",
			"type", evt.Context.Type,
			"contextId", evt.Context.ContextID,
			"taskId", evt.Context.TaskID,
			"error", err)
	}
}

func startSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, *tracing.Span) {
	ctx, span := tracing.StartSpan(ctx, "engine."+name)
	return ctx, span.WithAttributes(attrs)
}
