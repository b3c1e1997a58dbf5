package engine

import (
	"context"
	"path"

	"github.com/viant/gridstore/internal/clock"
	"github.com/viant/gridstore/service/dao"
	"github.com/viant/gridstore/service/rescue"
	"github.com/viant/gridstore/tracing"
)

// Restore builds an engine from a rescue image. Entries are replayed in
// dependency order: host runtimes, contexts, tasks with their host links,
// then check points. Business timestamps are kept as recorded; bookkeeping
// stamps are set to the recovery time. An entry referring to a missing
// parent fails with a *dao.CorruptionError naming its record.
func Restore(ctx context.Context, image *rescue.Image, options ...Option) (ret *Engine, err error) {
	_, span := startSpan(ctx, "Restore", nil)
	defer func() { tracing.EndSpan(span, err) }()

	ret = New(options...)
	if image == nil {
		return ret, nil
	}
	now := clock.Millis()
	for _, source := range image.HostRuntimes {
		host := source.Clone()
		host.TimeRegistered = now
		if err = restored(host.Validate(), ret.store.AddHostRuntime(host), rescue.HostRuntimesFolder, host.HostName); err != nil {
			return nil, err
		}
	}
	for _, source := range image.Contexts {
		c := source.Clone()
		c.TimeUpdated = now
		if err = restored(c.Validate(), ret.store.AddContext(c), rescue.ContextsFolder, c.ContextID); err != nil {
			return nil, err
		}
	}
	for _, source := range image.Tasks {
		task := source.Clone()
		task.TimeUpdated = now
		if err = restored(task.Validate(), ret.store.AddTask(task), rescue.TasksFolder, task.ContextID, task.TaskID); err != nil {
			return nil, err
		}
	}
	for _, cp := range image.CheckPoints {
		_, addErr := ret.store.AddCheckPoint(cp)
		if err = restored(cp.Validate(), addErr, rescue.CheckPointsFolder, cp.ContextID, cp.TaskID, cp.Name, cp.ID); err != nil {
			return nil, err
		}
	}
	ret.logger.Info("store restored",
		"hostRuntimes", len(image.HostRuntimes),
		"contexts", len(image.Contexts),
		"tasks", len(image.Tasks),
		"checkPoints", len(image.CheckPoints))
	return ret, nil
}

// restored reports the first of the validation and insertion errors as
// corruption of the entry's record.
func restored(validation, insertion error, elements ...string) error {
	err := validation
	if err == nil {
		err = insertion
	}
	if err == nil {
		return nil
	}
	return &dao.CorruptionError{Path: path.Join(append(elements, rescue.RecordFile)...), Err: err}
}

// Image returns a copy of every entry in dependency order.
func (e *Engine) Image(ctx context.Context) *rescue.Image {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.image()
}

func (e *Engine) image() *rescue.Image {
	return &rescue.Image{
		HostRuntimes: e.store.HostRuntimes(),
		Contexts:     e.store.Contexts(),
		Tasks:        e.store.Tasks(),
		CheckPoints:  e.store.CheckPoints(),
	}
}

// Snapshot writes every entry to writer, typically a fresh rescue directory.
func (e *Engine) Snapshot(ctx context.Context, writer rescue.Writer) (err error) {
	ctx, span := startSpan(ctx, "Snapshot", nil)
	defer func() { tracing.EndSpan(span, err) }()

	e.mu.Lock()
	image := e.image()
	e.mu.Unlock()

	return rescue.Dump(ctx, writer, image)
}
