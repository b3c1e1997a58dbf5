package engine

import (
	"context"

	"github.com/viant/gridstore/internal/clock"
	"github.com/viant/gridstore/model/entry"
	"github.com/viant/gridstore/service/dao"
	"github.com/viant/gridstore/service/event"
	"github.com/viant/gridstore/service/rescue"
	"github.com/viant/gridstore/tracing"
)

// OpenContext registers a new open context and returns the stored copy.
// A zero MaxFinishedTasks takes the engine default.
func (e *Engine) OpenContext(ctx context.Context, c *entry.Context) (result *entry.Context, err error) {
	if c == nil {
		return nil, dao.NewError(dao.ErrValidation, entry.EntityContext, "", "nil context")
	}
	ctx, span := startSpan(ctx, "OpenContext", map[string]string{"contextId": c.ContextID})
	defer func() { tracing.EndSpan(span, err) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	opened := c.Clone()
	if opened.MaxFinishedTasks == 0 {
		opened.MaxFinishedTasks = e.maxFinishedTasks
	}
	if err = opened.Validate(); err != nil {
		return nil, err
	}
	now := clock.Millis()
	opened.Open = true
	opened.TimeCreated = now
	opened.TimeUpdated = now
	if err = e.store.AddContext(opened); err != nil {
		return nil, err
	}
	undo := func() { _, _ = e.store.RemoveContext(opened.ContextID) }
	if err = e.commit(ctx, undo, putContext(opened)); err != nil {
		return nil, err
	}
	e.logger.Debug("context opened", "contextId", opened.ContextID, "maxFinishedTasks", opened.MaxFinishedTasks)
	return opened.Clone(), nil
}

// CloseContext closes an open context; tasks can no longer be submitted to it.
func (e *Engine) CloseContext(ctx context.Context, contextID string) (err error) {
	ctx, span := startSpan(ctx, "CloseContext", map[string]string{"contextId": contextID})
	defer func() { tracing.EndSpan(span, err) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	c, err := e.store.Context(contextID)
	if err != nil {
		return err
	}
	prev := c.Clone()
	if err = c.Close(clock.Millis()); err != nil {
		return err
	}
	e.store.ReplaceContext(c)
	if err = e.commit(ctx, func() { e.store.ReplaceContext(prev) }, putContext(c)); err != nil {
		return err
	}
	e.logger.Debug("context closed", "contextId", contextID)
	return nil
}

// DeleteContext removes a context. A context that still holds tasks is only
// removed when force is set, in which case its tasks, their check points and
// host links go with it. Host reservations held by the context are released.
func (e *Engine) DeleteContext(ctx context.Context, contextID string, force bool) (err error) {
	ctx, span := startSpan(ctx, "DeleteContext", map[string]string{"contextId": contextID})
	defer func() { tracing.EndSpan(span, err) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err = e.store.Context(contextID); err != nil {
		return err
	}
	tasks := e.store.TasksByContext(contextID)
	if len(tasks) > 0 && !force {
		return dao.NewError(dao.ErrContextNotEmpty, entry.EntityContext, contextID, "%d task(s)", len(tasks))
	}

	type removal struct {
		task        *entry.Task
		checkPoints []*entry.CheckPoint
	}
	var removed []removal
	for _, candidate := range tasks {
		task, checkPoints, rErr := e.store.RemoveTask(candidate.Key())
		if rErr != nil {
			return rErr
		}
		removed = append(removed, removal{task: task, checkPoints: checkPoints})
	}
	c, err := e.store.RemoveContext(contextID)
	if err != nil {
		return err
	}
	var reserved []*entry.HostRuntime
	var steps []step
	for _, prev := range e.store.HostRuntimes() {
		if prev.Reservation != contextID {
			continue
		}
		host := prev.Clone()
		host.Reservation = ""
		e.store.ReplaceHostRuntime(host)
		reserved = append(reserved, prev)
		steps = append(steps, step{
			apply:  func(ctx context.Context, w rescue.Writer) error { return w.PutHostRuntime(ctx, host) },
			revert: func(ctx context.Context, w rescue.Writer) error { return w.PutHostRuntime(ctx, prev) },
		})
	}
	undo := func() {
		_ = e.store.AddContext(c)
		for _, r := range removed {
			_ = e.store.AddTask(r.task)
			e.store.RestoreCheckPoints(r.checkPoints)
		}
		for _, prev := range reserved {
			e.store.ReplaceHostRuntime(prev)
		}
	}
	steps = append(steps, step{apply: func(ctx context.Context, w rescue.Writer) error { return w.DeleteContext(ctx, contextID) }})
	if err = e.commit(ctx, undo, steps...); err != nil {
		return err
	}
	for _, r := range removed {
		e.notify(ctx, event.TaskRemoved(r.task))
	}
	e.logger.Debug("context deleted", "contextId", contextID, "tasks", len(removed), "released", len(reserved))
	return nil
}
