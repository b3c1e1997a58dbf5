package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/viant/gridstore/internal/clock"
	"github.com/viant/gridstore/model/entry"
	"github.com/viant/gridstore/service/dao"
	"github.com/viant/gridstore/service/rescue"
	"github.com/viant/gridstore/tracing"
)

// AddCheckPoint records a check point raised by an existing task and returns
// the stored copy with its record id and sequence.
func (e *Engine) AddCheckPoint(ctx context.Context, cp *entry.CheckPoint) (result *entry.CheckPoint, err error) {
	if cp == nil {
		return nil, dao.NewError(dao.ErrValidation, entry.EntityCheckPoint, "", "nil check point")
	}
	ctx, span := startSpan(ctx, "AddCheckPoint", map[string]string{"checkPoint": cp.Key().String()})
	defer func() { tracing.EndSpan(span, err) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	candidate, err := newCheckPoint(cp)
	if err != nil {
		return nil, err
	}
	stored, err := e.store.AddCheckPoint(candidate)
	if err != nil {
		return nil, err
	}
	undo := func() { _, _ = e.store.RemoveCheckPoint(stored.Key().TaskKey(), stored.ID) }
	if err = e.commit(ctx, undo, putCheckPoint(stored)); err != nil {
		return nil, err
	}
	e.logger.Debug("check point added", "checkPoint", stored.Key().String(), "id", stored.ID)
	return stored, nil
}

// CheckPointOver replaces every check point sharing the triple of cp with cp.
func (e *Engine) CheckPointOver(ctx context.Context, cp *entry.CheckPoint) (result *entry.CheckPoint, err error) {
	if cp == nil {
		return nil, dao.NewError(dao.ErrValidation, entry.EntityCheckPoint, "", "nil check point")
	}
	ctx, span := startSpan(ctx, "CheckPointOver", map[string]string{"checkPoint": cp.Key().String()})
	defer func() { tracing.EndSpan(span, err) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	candidate, err := newCheckPoint(cp)
	if err != nil {
		return nil, err
	}
	taskKey := candidate.Key().TaskKey()
	if !e.store.HasTask(taskKey) {
		return nil, dao.NotFound(entry.EntityTask, taskKey.String())
	}
	removed := e.store.RemoveCheckPoints(
		dao.WithName(candidate.Name),
		dao.WithTaskID(candidate.TaskID),
		dao.WithContextID(candidate.ContextID))
	stored, err := e.store.AddCheckPoint(candidate)
	if err != nil {
		e.store.RestoreCheckPoints(removed)
		return nil, err
	}
	undo := func() {
		_, _ = e.store.RemoveCheckPoint(taskKey, stored.ID)
		e.store.RestoreCheckPoints(removed)
	}
	steps := []step{putCheckPoint(stored)}
	steps = append(steps, deleteCheckPoints(removed)...)
	if err = e.commit(ctx, undo, steps...); err != nil {
		return nil, err
	}
	e.logger.Debug("check point replaced", "checkPoint", stored.Key().String(), "id", stored.ID, "replaced", len(removed))
	return stored, nil
}

// RemoveCheckPoints removes the check points matching the optional Name,
// TaskID and ContextID terms and returns them; no match fails with
// dao.ErrNotFound.
func (e *Engine) RemoveCheckPoints(ctx context.Context, parameters ...*dao.Parameter) (result []*entry.CheckPoint, err error) {
	ctx, span := startSpan(ctx, "RemoveCheckPoints", map[string]string{"filter": describe(parameters)})
	defer func() { tracing.EndSpan(span, err) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	removed := e.store.RemoveCheckPoints(parameters...)
	if len(removed) == 0 {
		return nil, dao.NotFound(entry.EntityCheckPoint, describe(parameters))
	}
	undo := func() { e.store.RestoreCheckPoints(removed) }
	if err = e.commit(ctx, undo, deleteCheckPoints(removed)...); err != nil {
		return nil, err
	}
	e.logger.Debug("check points removed", "filter", describe(parameters), "count", len(removed))
	return removed, nil
}

// newCheckPoint validates a caller supplied check point and stamps it; the
// record id and sequence are assigned by the store.
func newCheckPoint(cp *entry.CheckPoint) (*entry.CheckPoint, error) {
	candidate := cp.Clone()
	if err := candidate.Validate(); err != nil {
		return nil, err
	}
	candidate.ID = ""
	candidate.Seq = 0
	candidate.TimeReached = clock.Millis()
	return candidate, nil
}

func putCheckPoint(cp *entry.CheckPoint) step {
	return step{
		apply:  func(ctx context.Context, w rescue.Writer) error { return w.PutCheckPoint(ctx, cp) },
		revert: func(ctx context.Context, w rescue.Writer) error { return w.DeleteCheckPoint(ctx, cp) },
	}
}

func deleteCheckPoints(list []*entry.CheckPoint) []step {
	steps := make([]step, 0, len(list))
	for _, cp := range list {
		cp := cp
		steps = append(steps, step{
			apply:  func(ctx context.Context, w rescue.Writer) error { return w.DeleteCheckPoint(ctx, cp) },
			revert: func(ctx context.Context, w rescue.Writer) error { return w.PutCheckPoint(ctx, cp) },
		})
	}
	return steps
}

func describe(parameters []*dao.Parameter) string {
	var terms []string
	for _, parameter := range parameters {
		if parameter == nil {
			continue
		}
		terms = append(terms, fmt.Sprintf("%s=%v", parameter.Name, parameter.Value))
	}
	if len(terms) == 0 {
		return "*"
	}
	return strings.Join(terms, " ")
}
