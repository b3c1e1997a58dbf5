// Package store implements the indexed in-memory collections of the
// control-plane: contexts, tasks, checkpoints and host runtimes, plus the
// task to host runtime link table.
//
// Store is not synchronized. The lifecycle engine owns it and serializes
// every call under its lock. All accessors return clones.
package store

import (
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/viant/gridstore/model/entry"
	"github.com/viant/gridstore/service/dao"
	"github.com/viant/gridstore/service/dao/criteria"
	mstore "github.com/viant/gridstore/service/dao/store"
)

// Store holds the indexed collections.
type Store struct {
	contexts    *mstore.MemoryStore[string, entry.Context]
	tasks       *mstore.MemoryStore[entry.TaskKey, entry.Task]
	hosts       *mstore.MemoryStore[string, entry.HostRuntime]
	checkPoints map[entry.TaskKey][]*entry.CheckPoint
	hostTasks   map[string]map[entry.TaskKey]bool
	seq         uint64
}

// New creates an empty store.
func New() *Store {
	return &Store{
		contexts: mstore.NewMemoryStore[string, entry.Context](entry.EntityContext,
			func(c *entry.Context) string { return c.ContextID },
			identity, (*entry.Context).Clone),
		tasks: mstore.NewMemoryStore[entry.TaskKey, entry.Task](entry.EntityTask,
			(*entry.Task).Key,
			entry.TaskKey.String, (*entry.Task).Clone),
		hosts: mstore.NewMemoryStore[string, entry.HostRuntime](entry.EntityHostRuntime,
			func(h *entry.HostRuntime) string { return h.HostName },
			identity, (*entry.HostRuntime).Clone),
		checkPoints: map[entry.TaskKey][]*entry.CheckPoint{},
		hostTasks:   map[string]map[entry.TaskKey]bool{},
	}
}

func identity(text string) string { return text }

// ---------------------------------------------------------------------------
// contexts
// ---------------------------------------------------------------------------

// AddContext inserts a context.
func (s *Store) AddContext(c *entry.Context) error {
	return s.contexts.Insert(c)
}

// Context returns a context by id.
func (s *Store) Context(id string) (*entry.Context, error) {
	return s.contexts.Load(id)
}

// Contexts returns all contexts ordered by id.
func (s *Store) Contexts() []*entry.Context {
	return s.contexts.List(nil)
}

// ReplaceContext overwrites a stored context, used to roll back a mutation.
func (s *Store) ReplaceContext(c *entry.Context) {
	s.contexts.Put(c)
}

// RemoveContext deletes a context. Tasks of the context must be removed first.
func (s *Store) RemoveContext(id string) (*entry.Context, error) {
	return s.contexts.Delete(id)
}

// ---------------------------------------------------------------------------
// tasks
// ---------------------------------------------------------------------------

// AddTask inserts a task. The owning context must exist; a task carrying a
// HostName is linked to that host runtime, which must exist too.
func (s *Store) AddTask(t *entry.Task) error {
	if !s.contexts.Has(t.ContextID) {
		return dao.NotFound(entry.EntityContext, t.ContextID)
	}
	if t.HostName != "" && !s.hosts.Has(t.HostName) {
		return dao.NotFound(entry.EntityHostRuntime, t.HostName)
	}
	if err := s.tasks.Insert(t); err != nil {
		return err
	}
	if t.HostName != "" {
		s.indexLink(t.Key(), t.HostName)
	}
	return nil
}

// Task returns a task by key.
func (s *Store) Task(key entry.TaskKey) (*entry.Task, error) {
	return s.tasks.Load(key)
}

// HasTask reports whether the task exists.
func (s *Store) HasTask(key entry.TaskKey) bool {
	return s.tasks.Has(key)
}

// UpdateTask applies fn to the stored task. fn must not change the key or
// the host name; use Link/Unlink for the latter.
func (s *Store) UpdateTask(key entry.TaskKey, fn func(t *entry.Task)) error {
	return s.tasks.Update(key, fn)
}

// ReplaceTask overwrites a stored task, used to roll back a mutation.
func (s *Store) ReplaceTask(t *entry.Task) {
	s.tasks.Put(t)
}

// Tasks returns tasks matching all parameters, ordered by context then task id.
func (s *Store) Tasks(parameters ...*dao.Parameter) []*entry.Task {
	return s.tasks.List(func(t *entry.Task) bool {
		return criteria.Match(taskFields(t), parameters)
	})
}

// TasksByContext returns the tasks of a context.
func (s *Store) TasksByContext(contextID string) []*entry.Task {
	return s.Tasks(dao.WithContextID(contextID))
}

// TasksByState returns the tasks in a state.
func (s *Store) TasksByState(state entry.State) []*entry.Task {
	return s.Tasks(dao.WithState(string(state)))
}

// TasksByHost returns the tasks linked to a host runtime.
func (s *Store) TasksByHost(hostName string) []*entry.Task {
	keys := s.LinkedTasks(hostName)
	out := make([]*entry.Task, 0, len(keys))
	for _, key := range keys {
		if t, err := s.tasks.Load(key); err == nil {
			out = append(out, t)
		}
	}
	return out
}

// TasksByTreePath returns tasks whose tree address matches a doublestar
// pattern, e.g. "suite/**/server".
func (s *Store) TasksByTreePath(pattern string) ([]*entry.Task, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, dao.NewError(dao.ErrValidation, entry.EntityTask, "", "invalid tree path pattern: %q", pattern)
	}
	return s.tasks.List(func(t *entry.Task) bool {
		matched, _ := doublestar.Match(pattern, t.TreeAddress)
		return matched
	}), nil
}

// RemoveTask deletes a task together with its checkpoints and host link.
// It returns the removed task and checkpoints.
func (s *Store) RemoveTask(key entry.TaskKey) (*entry.Task, []*entry.CheckPoint, error) {
	t, err := s.tasks.Delete(key)
	if err != nil {
		return nil, nil, err
	}
	if t.HostName != "" {
		s.unindexLink(key, t.HostName)
	}
	removed := s.checkPoints[key]
	delete(s.checkPoints, key)
	return t, removed, nil
}

// Stats returns task counts per state.
func (s *Store) Stats() map[entry.State]int {
	result := make(map[entry.State]int, len(entry.States))
	for _, t := range s.tasks.List(nil) {
		result[t.State]++
	}
	return result
}

func taskFields(t *entry.Task) criteria.Fields {
	return func(name string) (string, bool) {
		switch name {
		case dao.ContextID:
			return t.ContextID, true
		case dao.TaskID:
			return t.TaskID, true
		case dao.HostName:
			return t.HostName, true
		case dao.State:
			return string(t.State), true
		case dao.Name:
			return t.Name, true
		}
		return "", false
	}
}

// ---------------------------------------------------------------------------
// host runtimes and links
// ---------------------------------------------------------------------------

// AddHostRuntime inserts a host runtime.
func (s *Store) AddHostRuntime(h *entry.HostRuntime) error {
	return s.hosts.Insert(h)
}

// HostRuntime returns a host runtime by name.
func (s *Store) HostRuntime(name string) (*entry.HostRuntime, error) {
	return s.hosts.Load(name)
}

// HostRuntimes returns all host runtimes ordered by name.
func (s *Store) HostRuntimes() []*entry.HostRuntime {
	return s.hosts.List(nil)
}

// ReplaceHostRuntime overwrites a stored host runtime, used to roll back a mutation.
func (s *Store) ReplaceHostRuntime(h *entry.HostRuntime) {
	s.hosts.Put(h)
}

// RemoveHostRuntime deletes a host runtime, first unlinking every task
// linked to it. It returns the removed host and the unlinked task keys.
func (s *Store) RemoveHostRuntime(name string) (*entry.HostRuntime, []entry.TaskKey, error) {
	if !s.hosts.Has(name) {
		return nil, nil, dao.NotFound(entry.EntityHostRuntime, name)
	}
	keys := s.LinkedTasks(name)
	for _, key := range keys {
		if _, err := s.Unlink(key); err != nil {
			return nil, nil, err
		}
	}
	h, err := s.hosts.Delete(name)
	return h, keys, err
}

// Link records that the task runs on the host runtime. A task is linked to
// at most one host; linking a linked task fails with dao.ErrAlreadySet.
func (s *Store) Link(key entry.TaskKey, hostName string) error {
	t, err := s.tasks.Load(key)
	if err != nil {
		return err
	}
	if !s.hosts.Has(hostName) {
		return dao.NotFound(entry.EntityHostRuntime, hostName)
	}
	if t.HostName != "" {
		return dao.NewError(dao.ErrAlreadySet, entry.EntityTask, key.String(), "linked to %s", t.HostName)
	}
	_ = s.tasks.Update(key, func(t *entry.Task) { t.HostName = hostName })
	s.indexLink(key, hostName)
	return nil
}

// Unlink clears the task's host link and returns the former host name.
func (s *Store) Unlink(key entry.TaskKey) (string, error) {
	t, err := s.tasks.Load(key)
	if err != nil {
		return "", err
	}
	if t.HostName == "" {
		return "", dao.NewError(dao.ErrNotFound, entry.EntityTask, key.String(), "not linked")
	}
	_ = s.tasks.Update(key, func(t *entry.Task) { t.HostName = "" })
	s.unindexLink(key, t.HostName)
	return t.HostName, nil
}

// LinkedTasks returns the keys of tasks linked to a host, ordered.
func (s *Store) LinkedTasks(hostName string) []entry.TaskKey {
	linked := s.hostTasks[hostName]
	keys := make([]entry.TaskKey, 0, len(linked))
	for key := range linked {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	return keys
}

func (s *Store) indexLink(key entry.TaskKey, hostName string) {
	linked, ok := s.hostTasks[hostName]
	if !ok {
		linked = map[entry.TaskKey]bool{}
		s.hostTasks[hostName] = linked
	}
	linked[key] = true
}

func (s *Store) unindexLink(key entry.TaskKey, hostName string) {
	linked := s.hostTasks[hostName]
	delete(linked, key)
	if len(linked) == 0 {
		delete(s.hostTasks, hostName)
	}
}
