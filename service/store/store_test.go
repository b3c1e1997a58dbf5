package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/gridstore/model/entry"
	"github.com/viant/gridstore/service/dao"
)

func newTestStore(t *testing.T) *Store {
	s := New()
	require.NoError(t, s.AddContext(&entry.Context{ContextID: "c1", Open: true, MaxFinishedTasks: entry.Unbounded}))
	require.NoError(t, s.AddContext(&entry.Context{ContextID: "c2", Open: true, MaxFinishedTasks: entry.Unbounded}))
	require.NoError(t, s.AddHostRuntime(&entry.HostRuntime{HostName: "h1"}))
	for _, task := range []*entry.Task{
		{TaskID: "t1", ContextID: "c1", TreeAddress: "suite/a/server", State: entry.StateSubmitted},
		{TaskID: "t2", ContextID: "c1", TreeAddress: "suite/a/client", State: entry.StateRunning},
		{TaskID: "t1", ContextID: "c2", TreeAddress: "other/server", State: entry.StateRunning},
	} {
		require.NoError(t, s.AddTask(task))
	}
	return s
}

func TestStore_Tasks(t *testing.T) {
	s := newTestStore(t)

	testCases := []struct {
		description string
		parameters  []*dao.Parameter
		expect      []string
	}{
		{description: "all", expect: []string{"c1/t1", "c1/t2", "c2/t1"}},
		{description: "by context", parameters: []*dao.Parameter{dao.WithContextID("c1")}, expect: []string{"c1/t1", "c1/t2"}},
		{description: "by state", parameters: []*dao.Parameter{dao.WithState("RUNNING")}, expect: []string{"c1/t2", "c2/t1"}},
		{description: "by task id", parameters: []*dao.Parameter{dao.WithTaskID("t1")}, expect: []string{"c1/t1", "c2/t1"}},
		{description: "combined", parameters: []*dao.Parameter{dao.WithTaskID("t1"), dao.WithState("RUNNING")}, expect: []string{"c2/t1"}},
	}
	for _, testCase := range testCases {
		var actual []string
		for _, task := range s.Tasks(testCase.parameters...) {
			actual = append(actual, task.Key().String())
		}
		assert.EqualValues(t, testCase.expect, actual, testCase.description)
	}

	byPath, err := s.TasksByTreePath("suite/**")
	require.NoError(t, err)
	assert.Len(t, byPath, 2)
	byPath, err = s.TasksByTreePath("**/server")
	require.NoError(t, err)
	assert.Len(t, byPath, 2)
	_, err = s.TasksByTreePath("suite/[")
	assert.True(t, errors.Is(err, dao.ErrValidation))

	assert.Equal(t, 2, s.Stats()[entry.StateRunning])
}

func TestStore_AddTask(t *testing.T) {
	s := newTestStore(t)
	err := s.AddTask(&entry.Task{TaskID: "t1", ContextID: "c1", TreeAddress: "x"})
	assert.True(t, errors.Is(err, dao.ErrDuplicateEntry))

	err = s.AddTask(&entry.Task{TaskID: "t9", ContextID: "missing", TreeAddress: "x"})
	assert.True(t, errors.Is(err, dao.ErrNotFound))

	err = s.AddTask(&entry.Task{TaskID: "t9", ContextID: "c1", TreeAddress: "x", HostName: "h9"})
	assert.True(t, errors.Is(err, dao.ErrNotFound))

	require.NoError(t, s.AddTask(&entry.Task{TaskID: "t9", ContextID: "c1", TreeAddress: "x", HostName: "h1"}))
	assert.Equal(t, []entry.TaskKey{{ContextID: "c1", TaskID: "t9"}}, s.LinkedTasks("h1"))
}

func TestStore_Links(t *testing.T) {
	s := newTestStore(t)
	key := entry.TaskKey{ContextID: "c1", TaskID: "t1"}

	require.NoError(t, s.Link(key, "h1"))
	err := s.Link(key, "h1")
	assert.True(t, errors.Is(err, dao.ErrAlreadySet))

	tasks := s.TasksByHost("h1")
	require.Len(t, tasks, 1)
	assert.Equal(t, "h1", tasks[0].HostName)

	host, unlinked, err := s.RemoveHostRuntime("h1")
	require.NoError(t, err)
	assert.Equal(t, "h1", host.HostName)
	assert.Equal(t, []entry.TaskKey{key}, unlinked)

	task, err := s.Task(key)
	require.NoError(t, err)
	assert.Equal(t, "", task.HostName)
	assert.Equal(t, entry.StateSubmitted, task.State)

	_, err = s.Unlink(key)
	assert.True(t, errors.Is(err, dao.ErrNotFound))
	_, _, err = s.RemoveHostRuntime("h1")
	assert.True(t, errors.Is(err, dao.ErrNotFound))
}

func TestStore_CheckPoints(t *testing.T) {
	s := newTestStore(t)

	for _, cp := range []*entry.CheckPoint{
		{CheckPointKey: entry.CheckPointKey{Name: "ready", TaskID: "t1", ContextID: "c1"}, Payload: []byte("1")},
		{CheckPointKey: entry.CheckPointKey{Name: "ready", TaskID: "t1", ContextID: "c1"}, Payload: []byte("2")},
		{CheckPointKey: entry.CheckPointKey{Name: "done", TaskID: "t2", ContextID: "c1"}},
		{CheckPointKey: entry.CheckPointKey{Name: "ready", TaskID: "t1", ContextID: "c2"}},
	} {
		stored, err := s.AddCheckPoint(cp)
		require.NoError(t, err)
		assert.NotEmpty(t, stored.ID)
	}
	_, err := s.AddCheckPoint(&entry.CheckPoint{CheckPointKey: entry.CheckPointKey{Name: "x", TaskID: "t7", ContextID: "c1"}})
	assert.True(t, errors.Is(err, dao.ErrNotFound))

	assert.Len(t, s.CheckPoints(), 4)
	ready := s.CheckPoints(dao.WithName("ready"), dao.WithTaskID("t1"), dao.WithContextID("c1"))
	require.Len(t, ready, 2)
	assert.Equal(t, "1", string(ready[0].Payload))
	assert.Equal(t, "2", string(ready[1].Payload))
	assert.Len(t, s.CheckPoints(dao.WithName("ready")), 3)

	removed := s.RemoveCheckPoints(dao.WithContextID("c1"), dao.WithName("ready"))
	assert.Len(t, removed, 2)
	assert.Len(t, s.CheckPoints(), 2)

	_, cps, err := s.RemoveTask(entry.TaskKey{ContextID: "c1", TaskID: "t2"})
	require.NoError(t, err)
	assert.Len(t, cps, 1)
	assert.Len(t, s.CheckPoints(), 1)

	s.RestoreCheckPoints(removed)
	assert.Len(t, s.CheckPoints(dao.WithTaskID("t1"), dao.WithContextID("c1")), 2)
}
