// Package registry exposes the host runtime operations of the lifecycle
// engine to host agents.
package registry

import (
	"context"

	"github.com/viant/gridstore/model/entry"
	"github.com/viant/gridstore/service/engine"
)

// Registry tracks the host runtimes known to the control plane.
type Registry struct {
	engine *engine.Engine
}

// New creates a registry over engine.
func New(e *engine.Engine) *Registry {
	return &Registry{engine: e}
}

// Register registers a host runtime; registering a known host is a no-op.
func (r *Registry) Register(ctx context.Context, hostName string) (*entry.HostRuntime, error) {
	return r.engine.RegisterHost(ctx, hostName)
}

// Deregister removes a host runtime and unlinks its tasks, returning their keys.
func (r *Registry) Deregister(ctx context.Context, hostName string) ([]entry.TaskKey, error) {
	return r.engine.DeregisterHost(ctx, hostName)
}

// Lookup returns a host runtime with the keys of the tasks linked to it.
func (r *Registry) Lookup(ctx context.Context, hostName string) (*entry.HostRuntime, []entry.TaskKey, error) {
	host, err := r.engine.HostRuntime(ctx, hostName)
	if err != nil {
		return nil, nil, err
	}
	return host, r.engine.LinkedTasks(ctx, hostName), nil
}

// List returns all host runtimes ordered by name.
func (r *Registry) List(ctx context.Context) []*entry.HostRuntime {
	return r.engine.HostRuntimes(ctx)
}

// Reserved returns the host runtimes reserved for a context.
func (r *Registry) Reserved(ctx context.Context, contextID string) []*entry.HostRuntime {
	var result []*entry.HostRuntime
	for _, host := range r.engine.HostRuntimes(ctx) {
		if host.Reservation == contextID {
			result = append(result, host)
		}
	}
	return result
}

// Reserve reserves a host runtime for a context.
func (r *Registry) Reserve(ctx context.Context, hostName, contextID string) (*entry.HostRuntime, error) {
	return r.engine.Reserve(ctx, hostName, contextID)
}

// Release clears the reservation of a host runtime.
func (r *Registry) Release(ctx context.Context, hostName string) (*entry.HostRuntime, error) {
	return r.engine.Reserve(ctx, hostName, "")
}
