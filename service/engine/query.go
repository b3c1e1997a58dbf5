package engine

import (
	"context"

	"github.com/viant/gridstore/model/entry"
	"github.com/viant/gridstore/service/dao"
)

// Task returns a copy of a task.
func (e *Engine) Task(ctx context.Context, key entry.TaskKey) (*entry.Task, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Task(key)
}

// Tasks returns tasks matching all parameters.
func (e *Engine) Tasks(ctx context.Context, parameters ...*dao.Parameter) []*entry.Task {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Tasks(parameters...)
}

func (e *Engine) TasksByContext(ctx context.Context, contextID string) []*entry.Task {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.TasksByContext(contextID)
}

func (e *Engine) TasksByHost(ctx context.Context, hostName string) []*entry.Task {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.TasksByHost(hostName)
}

func (e *Engine) TasksByState(ctx context.Context, state entry.State) []*entry.Task {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.TasksByState(state)
}

// TasksByTreePath returns tasks whose tree address matches a doublestar
// pattern such as "suite/**/server".
func (e *Engine) TasksByTreePath(ctx context.Context, pattern string) ([]*entry.Task, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.TasksByTreePath(pattern)
}

func (e *Engine) Context(ctx context.Context, contextID string) (*entry.Context, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Context(contextID)
}

func (e *Engine) Contexts(ctx context.Context) []*entry.Context {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Contexts()
}

// CheckPoints returns check points matching the optional Name, TaskID and
// ContextID terms, in insertion order.
func (e *Engine) CheckPoints(ctx context.Context, parameters ...*dao.Parameter) []*entry.CheckPoint {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.CheckPoints(parameters...)
}

func (e *Engine) HostRuntime(ctx context.Context, hostName string) (*entry.HostRuntime, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.HostRuntime(hostName)
}

func (e *Engine) HostRuntimes(ctx context.Context) []*entry.HostRuntime {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.HostRuntimes()
}

// LinkedTasks returns the keys of tasks linked to a host runtime.
func (e *Engine) LinkedTasks(ctx context.Context, hostName string) []entry.TaskKey {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.LinkedTasks(hostName)
}

// Stats returns task counts per state.
func (e *Engine) Stats(ctx context.Context) map[entry.State]int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Stats()
}
