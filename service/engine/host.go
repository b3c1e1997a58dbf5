package engine

import (
	"context"

	"github.com/viant/gridstore/internal/clock"
	"github.com/viant/gridstore/model/entry"
	"github.com/viant/gridstore/service/event"
	"github.com/viant/gridstore/service/rescue"
	"github.com/viant/gridstore/tracing"
)

// RegisterHost registers a host runtime; registering a known host returns
// the existing one.
func (e *Engine) RegisterHost(ctx context.Context, hostName string) (result *entry.HostRuntime, err error) {
	ctx, span := startSpan(ctx, "RegisterHost", map[string]string{"hostName": hostName})
	defer func() { tracing.EndSpan(span, err) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	if err = entry.ValidateHostName(hostName); err != nil {
		return nil, err
	}
	if existing, lErr := e.store.HostRuntime(hostName); lErr == nil {
		return existing, nil
	}
	host := &entry.HostRuntime{HostName: hostName, TimeRegistered: clock.Millis()}
	if err = e.store.AddHostRuntime(host); err != nil {
		return nil, err
	}
	undo := func() { _, _, _ = e.store.RemoveHostRuntime(hostName) }
	if err = e.commit(ctx, undo, putHostRuntime(host)); err != nil {
		return nil, err
	}
	e.logger.Debug("host registered", "hostName", hostName)
	return host.Clone(), nil
}

// DeregisterHost removes a host runtime after unlinking every task linked to
// it. Task states are left unchanged. It returns the unlinked task keys.
func (e *Engine) DeregisterHost(ctx context.Context, hostName string) (result []entry.TaskKey, err error) {
	ctx, span := startSpan(ctx, "DeregisterHost", map[string]string{"hostName": hostName})
	defer func() { tracing.EndSpan(span, err) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	host, unlinked, err := e.store.RemoveHostRuntime(hostName)
	if err != nil {
		return nil, err
	}
	var previous []*entry.Task
	var steps []step
	for _, key := range unlinked {
		prev, _ := e.store.Task(key)
		prev.HostName = hostName
		previous = append(previous, prev)
		task := e.touchTask(key)
		steps = append(steps, step{
			apply:  func(ctx context.Context, w rescue.Writer) error { return w.PutTask(ctx, task) },
			revert: func(ctx context.Context, w rescue.Writer) error { return w.PutTask(ctx, prev) },
		})
	}
	steps = append(steps, step{apply: func(ctx context.Context, w rescue.Writer) error {
		return w.DeleteHostRuntime(ctx, hostName)
	}})
	undo := func() {
		_ = e.store.AddHostRuntime(host)
		for _, prev := range previous {
			_ = e.store.Link(prev.Key(), hostName)
			e.store.ReplaceTask(prev)
		}
	}
	if err = e.commit(ctx, undo, steps...); err != nil {
		return nil, err
	}
	e.notify(ctx, event.HostDeregistered(hostName, unlinked))
	e.logger.Debug("host deregistered", "hostName", hostName, "unlinked", len(unlinked))
	return unlinked, nil
}

// Reserve sets the reservation of a host runtime to a context, or clears it
// for an empty contextID. A host reserved by another context fails with
// dao.ErrReservationConflict.
func (e *Engine) Reserve(ctx context.Context, hostName, contextID string) (result *entry.HostRuntime, err error) {
	ctx, span := startSpan(ctx, "Reserve", map[string]string{"hostName": hostName, "contextId": contextID})
	defer func() { tracing.EndSpan(span, err) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	host, err := e.store.HostRuntime(hostName)
	if err != nil {
		return nil, err
	}
	if contextID != "" {
		if err = entry.ValidateContextID(contextID); err != nil {
			return nil, err
		}
		if _, err = e.store.Context(contextID); err != nil {
			return nil, err
		}
	}
	prev := host.Clone()
	changed, err := host.Reserve(contextID)
	if err != nil {
		return nil, err
	}
	if !changed {
		return host, nil
	}
	e.store.ReplaceHostRuntime(host)
	if err = e.commit(ctx, func() { e.store.ReplaceHostRuntime(prev) }, putHostRuntime(host)); err != nil {
		return nil, err
	}
	e.logger.Debug("host reserved", "hostName", hostName, "contextId", contextID)
	return host, nil
}
