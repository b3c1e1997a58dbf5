package engine

import (
	"context"
	"sort"

	"github.com/viant/gridstore/internal/clock"
	"github.com/viant/gridstore/model/entry"
	"github.com/viant/gridstore/service/dao"
	"github.com/viant/gridstore/service/event"
	"github.com/viant/gridstore/service/rescue"
	"github.com/viant/gridstore/tracing"
)

// SubmitTask adds a task to an open context in state SUBMITTED and returns
// the stored copy. Lifecycle stamps and counters supplied by the caller are
// reset; the host link is established later with Link.
func (e *Engine) SubmitTask(ctx context.Context, task *entry.Task) (result *entry.Task, err error) {
	if task == nil {
		return nil, dao.NewError(dao.ErrValidation, entry.EntityTask, "", "nil task")
	}
	ctx, span := startSpan(ctx, "SubmitTask", map[string]string{"taskKey": task.Key().String()})
	defer func() { tracing.EndSpan(span, err) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	submitted := task.Clone()
	if err = submitted.Validate(); err != nil {
		return nil, err
	}
	key := submitted.Key()
	if submitted.HostName != "" {
		return nil, dao.NewError(dao.ErrValidation, entry.EntityTask, key.String(), "hostName must be empty at submission")
	}
	c, err := e.store.Context(submitted.ContextID)
	if err != nil {
		return nil, err
	}
	if !c.Open {
		return nil, dao.NewError(dao.ErrContextClosed, entry.EntityContext, c.ContextID, "cannot submit %s", key)
	}
	now := clock.Millis()
	submitted.Exclusivity = entry.ParseExclusivity(string(submitted.Exclusivity))
	submitted.State = entry.StateSubmitted
	submitted.TimeSubmitted = now
	submitted.TimeScheduled = 0
	submitted.TimeStarted = 0
	submitted.TimeFinished = 0
	submitted.RestartCount = 0
	submitted.TimeUpdated = now
	if err = e.store.AddTask(submitted); err != nil {
		return nil, err
	}
	undo := func() { _, _, _ = e.store.RemoveTask(key) }
	if err = e.commit(ctx, undo, putTask(submitted)); err != nil {
		return nil, err
	}
	e.notify(ctx, event.TaskSubmitted(submitted.Clone()))
	e.logger.Debug("task submitted", "taskKey", key.String(), "treeAddress", submitted.TreeAddress)
	return submitted.Clone(), nil
}

// DeleteTask removes a task with its check points and host link.
func (e *Engine) DeleteTask(ctx context.Context, key entry.TaskKey) (err error) {
	ctx, span := startSpan(ctx, "DeleteTask", map[string]string{"taskKey": key.String()})
	defer func() { tracing.EndSpan(span, err) }()

	e.mu.Lock()
	defer e.mu.Unlock()
	_, err = e.deleteTask(ctx, key)
	return err
}

func (e *Engine) deleteTask(ctx context.Context, key entry.TaskKey) (*entry.Task, error) {
	task, checkPoints, err := e.store.RemoveTask(key)
	if err != nil {
		return nil, err
	}
	undo := func() {
		_ = e.store.AddTask(task)
		e.store.RestoreCheckPoints(checkPoints)
	}
	deleteStep := step{apply: func(ctx context.Context, w rescue.Writer) error { return w.DeleteTask(ctx, key) }}
	if err = e.commit(ctx, undo, deleteStep); err != nil {
		return nil, err
	}
	e.notify(ctx, event.TaskRemoved(task))
	e.logger.Debug("task deleted", "taskKey", key.String(), "checkPoints", len(checkPoints))
	return task, nil
}

// Transition moves a task to another lifecycle state and returns the stored
// copy. The accepted no-op FINISHED -> ABORTED returns the task unchanged.
// Reaching FINISHED or ABORTED applies the context's retention cap.
func (e *Engine) Transition(ctx context.Context, key entry.TaskKey, to entry.State) (result *entry.Task, err error) {
	ctx, span := startSpan(ctx, "Transition", map[string]string{"taskKey": key.String(), "state": string(to)})
	defer func() { tracing.EndSpan(span, err) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	state := entry.ParseState(string(to))
	if state == "" {
		return nil, dao.Invalid(entry.EntityTask, key.String(), "state", to)
	}
	task, err := e.store.Task(key)
	if err != nil {
		return nil, err
	}
	prev := task.Clone()
	changed, err := task.Transition(state, clock.Millis())
	if err != nil {
		return nil, err
	}
	if !changed {
		return task, nil
	}
	e.store.ReplaceTask(task)
	if err = e.commit(ctx, func() { e.store.ReplaceTask(prev) }, putTask(task)); err != nil {
		return nil, err
	}
	e.notify(ctx, event.TaskTransitioned(task.Clone(), prev.State))
	e.logger.Debug("task transitioned", "taskKey", key.String(), "from", prev.State, "to", task.State)
	if task.State.IsFinal() {
		e.applyRetention(ctx, task.ContextID)
	}
	return task, nil
}

// applyRetention prunes the oldest finished tasks of a context above its
// cap. A prune that cannot be persisted is rolled back and logged.
func (e *Engine) applyRetention(ctx context.Context, contextID string) {
	c, err := e.store.Context(contextID)
	if err != nil || c.MaxFinishedTasks == entry.Unbounded {
		return
	}
	var finished []*entry.Task
	for _, task := range e.store.TasksByContext(contextID) {
		if task.State.IsFinal() {
			finished = append(finished, task)
		}
	}
	excess := len(finished) - c.MaxFinishedTasks
	if excess <= 0 {
		return
	}
	sort.SliceStable(finished, func(i, j int) bool {
		if finished[i].TimeFinished != finished[j].TimeFinished {
			return finished[i].TimeFinished < finished[j].TimeFinished
		}
		return finished[i].TaskID < finished[j].TaskID
	})
	for _, task := range finished[:excess] {
		if _, err := e.deleteTask(ctx, task.Key()); err != nil {
			e.logger.Warn("failed to prune finished task", "taskKey", task.Key().String(), "error", err)
		}
	}
}

// IncrementRestart increments the restart counter. A task whose counter has
// reached a non-zero RestartMax fails with dao.ErrRestartLimit.
func (e *Engine) IncrementRestart(ctx context.Context, key entry.TaskKey) (result *entry.Task, err error) {
	ctx, span := startSpan(ctx, "IncrementRestart", map[string]string{"taskKey": key.String()})
	defer func() { tracing.EndSpan(span, err) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	task, err := e.store.Task(key)
	if err != nil {
		return nil, err
	}
	if !task.CanRestart() {
		return nil, dao.NewError(dao.ErrRestartLimit, entry.EntityTask, key.String(), "%d of %d", task.RestartCount, task.RestartMax)
	}
	prev := task.Clone()
	task.RestartCount++
	task.TimeUpdated = clock.Millis()
	e.store.ReplaceTask(task)
	if err = e.commit(ctx, func() { e.store.ReplaceTask(prev) }, putTask(task)); err != nil {
		return nil, err
	}
	return task, nil
}

// Link records that a task runs on a registered host runtime. A task is
// linked at most once; relinking requires Unlink first.
func (e *Engine) Link(ctx context.Context, key entry.TaskKey, hostName string) (err error) {
	ctx, span := startSpan(ctx, "Link", map[string]string{"taskKey": key.String(), "hostName": hostName})
	defer func() { tracing.EndSpan(span, err) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	if err = entry.ValidateHostName(hostName); err != nil {
		return err
	}
	prev, err := e.store.Task(key)
	if err != nil {
		return err
	}
	if err = e.store.Link(key, hostName); err != nil {
		return err
	}
	task := e.touchTask(key)
	undo := func() {
		_, _ = e.store.Unlink(key)
		e.store.ReplaceTask(prev)
	}
	if err = e.commit(ctx, undo, putTask(task)); err != nil {
		return err
	}
	e.logger.Debug("task linked", "taskKey", key.String(), "hostName", hostName)
	return nil
}

// Unlink clears the host link of a task; a task without one fails with
// dao.ErrNotFound.
func (e *Engine) Unlink(ctx context.Context, key entry.TaskKey) (err error) {
	ctx, span := startSpan(ctx, "Unlink", map[string]string{"taskKey": key.String()})
	defer func() { tracing.EndSpan(span, err) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	prev, err := e.store.Task(key)
	if err != nil {
		return err
	}
	hostName, err := e.store.Unlink(key)
	if err != nil {
		return err
	}
	task := e.touchTask(key)
	undo := func() {
		_ = e.store.Link(key, hostName)
		e.store.ReplaceTask(prev)
	}
	if err = e.commit(ctx, undo, putTask(task)); err != nil {
		return err
	}
	e.logger.Debug("task unlinked", "taskKey", key.String(), "hostName", hostName)
	return nil
}

// SetDirectories assigns the non-empty directories of dirs. Each directory is
// settable once; the call is all-or-nothing.
func (e *Engine) SetDirectories(ctx context.Context, key entry.TaskKey, dirs entry.Directories) (err error) {
	ctx, span := startSpan(ctx, "SetDirectories", map[string]string{"taskKey": key.String()})
	defer func() { tracing.EndSpan(span, err) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	task, err := e.store.Task(key)
	if err != nil {
		return err
	}
	prev := task.Clone()
	if err = task.SetDirectories(dirs); err != nil {
		return err
	}
	if task.Directories == prev.Directories {
		return nil
	}
	task.TimeUpdated = clock.Millis()
	e.store.ReplaceTask(task)
	return e.commit(ctx, func() { e.store.ReplaceTask(prev) }, putTask(task))
}

// touchTask refreshes the bookkeeping stamp and returns the stored copy.
func (e *Engine) touchTask(key entry.TaskKey) *entry.Task {
	now := clock.Millis()
	_ = e.store.UpdateTask(key, func(t *entry.Task) { t.TimeUpdated = now })
	task, _ := e.store.Task(key)
	return task
}
