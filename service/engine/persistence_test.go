package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/gridstore/internal/mocks/service/event_mock"
	"github.com/viant/gridstore/model/entry"
	"github.com/viant/gridstore/service/dao"
	"github.com/viant/gridstore/service/event"
	"github.com/viant/gridstore/service/rescue"
	"go.uber.org/mock/gomock"
)

// fakeWriter records rescue writes and fails the methods listed in fail.
type fakeWriter struct {
	fail  map[string]error
	calls []string
	tasks map[entry.TaskKey]*entry.Task
}

func newFakeWriter() *fakeWriter {
	return &fakeWriter{fail: map[string]error{}, tasks: map[entry.TaskKey]*entry.Task{}}
}

func (w *fakeWriter) call(name string) error {
	w.calls = append(w.calls, name)
	return w.fail[name]
}

func (w *fakeWriter) PutHostRuntime(context.Context, *entry.HostRuntime) error {
	return w.call("PutHostRuntime")
}

func (w *fakeWriter) DeleteHostRuntime(context.Context, string) error {
	return w.call("DeleteHostRuntime")
}

func (w *fakeWriter) PutContext(context.Context, *entry.Context) error {
	return w.call("PutContext")
}

func (w *fakeWriter) DeleteContext(context.Context, string) error {
	return w.call("DeleteContext")
}

func (w *fakeWriter) PutTask(_ context.Context, task *entry.Task) error {
	if err := w.call("PutTask"); err != nil {
		return err
	}
	w.tasks[task.Key()] = task.Clone()
	return nil
}

func (w *fakeWriter) DeleteTask(context.Context, entry.TaskKey) error {
	return w.call("DeleteTask")
}

func (w *fakeWriter) PutCheckPoint(context.Context, *entry.CheckPoint) error {
	return w.call("PutCheckPoint")
}

func (w *fakeWriter) DeleteCheckPoint(context.Context, *entry.CheckPoint) error {
	return w.call("DeleteCheckPoint")
}

func TestEngine_Rollback(t *testing.T) {
	ctx := context.Background()
	diskFull := errors.New("no space left on device")
	key := entry.TaskKey{ContextID: "c1", TaskID: "t1"}

	testCases := []struct {
		description string
		fail        string
		mutate      func(e *Engine) error
		verify      func(t *testing.T, e *Engine, w *fakeWriter)
	}{
		{
			description: "submit",
			fail:        "PutTask",
			mutate: func(e *Engine) error {
				_, err := e.SubmitTask(ctx, &entry.Task{TaskID: "t2", ContextID: "c1", TreeAddress: "a"})
				return err
			},
			verify: func(t *testing.T, e *Engine, w *fakeWriter) {
				_, err := e.Task(ctx, entry.TaskKey{ContextID: "c1", TaskID: "t2"})
				assert.True(t, errors.Is(err, dao.ErrNotFound))
			},
		},
		{
			description: "transition",
			fail:        "PutTask",
			mutate: func(e *Engine) error {
				_, err := e.Transition(ctx, key, entry.StateScheduled)
				return err
			},
			verify: func(t *testing.T, e *Engine, w *fakeWriter) {
				task, err := e.Task(ctx, key)
				require.NoError(t, err)
				assert.Equal(t, entry.StateSubmitted, task.State)
				assert.EqualValues(t, 0, task.TimeScheduled)
			},
		},
		{
			description: "deregister host",
			fail:        "DeleteHostRuntime",
			mutate: func(e *Engine) error {
				_, err := e.DeregisterHost(ctx, "h1")
				return err
			},
			verify: func(t *testing.T, e *Engine, w *fakeWriter) {
				_, err := e.HostRuntime(ctx, "h1")
				require.NoError(t, err)
				assert.Equal(t, []entry.TaskKey{key}, e.LinkedTasks(ctx, "h1"))
				assert.Equal(t, "h1", w.tasks[key].HostName, "unlinked task record reverted")
			},
		},
		{
			description: "check point over",
			fail:        "DeleteCheckPoint",
			mutate: func(e *Engine) error {
				_, err := e.CheckPointOver(ctx, checkPoint("ready", "t1", "c1", "new"))
				return err
			},
			verify: func(t *testing.T, e *Engine, w *fakeWriter) {
				actual := e.CheckPoints(ctx)
				require.Len(t, actual, 1)
				assert.Equal(t, "old", string(actual[0].Payload))
				assert.Equal(t, "DeleteCheckPoint", w.calls[len(w.calls)-1], "new record reverted")
			},
		},
		{
			description: "force delete context",
			fail:        "DeleteContext",
			mutate: func(e *Engine) error {
				if _, err := e.Reserve(ctx, "h1", "c1"); err != nil {
					return err
				}
				return e.DeleteContext(ctx, "c1", true)
			},
			verify: func(t *testing.T, e *Engine, w *fakeWriter) {
				_, err := e.Context(ctx, "c1")
				require.NoError(t, err)
				host, err := e.HostRuntime(ctx, "h1")
				require.NoError(t, err)
				assert.Equal(t, "c1", host.Reservation, "released reservation restored")
				assert.Len(t, e.TasksByHost(ctx, "h1"), 1)
				assert.Len(t, e.CheckPoints(ctx), 1)
			},
		},
	}

	for _, testCase := range testCases {
		writer := newFakeWriter()
		e := newTestEngine(t, WithWriter(writer))
		submit(t, e, "c1", "t1")
		_, err := e.RegisterHost(ctx, "h1")
		require.NoError(t, err, testCase.description)
		require.NoError(t, e.Link(ctx, key, "h1"), testCase.description)
		_, err = e.AddCheckPoint(ctx, checkPoint("ready", "t1", "c1", "old"))
		require.NoError(t, err, testCase.description)

		writer.fail[testCase.fail] = diskFull
		err = testCase.mutate(e)
		assert.True(t, errors.Is(err, dao.ErrPersistence), testCase.description)
		assert.True(t, errors.Is(err, diskFull), testCase.description)
		testCase.verify(t, e, writer)
	}
}

func TestEngine_Notifier(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	notifier := event_mock.NewMockNotifier(ctrl)
	e := newTestEngine(t, WithNotifier(notifier))
	notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, evt *event.Event[event.Change]) error {
		assert.Equal(t, event.TypeTaskSubmitted, evt.Context.Type)
		assert.Equal(t, entry.StateSubmitted, evt.Data.To)
		return nil
	})
	key := submit(t, e, "c1", "t1").Key()
	_, err := e.RegisterHost(ctx, "h1")
	require.NoError(t, err)
	require.NoError(t, e.Link(ctx, key, "h1"))

	gomock.InOrder(
		notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, evt *event.Event[event.Change]) error {
			assert.Equal(t, event.TypeTaskTransitioned, evt.Context.Type)
			assert.Equal(t, entry.StateSubmitted, evt.Data.From)
			assert.Equal(t, entry.StateScheduled, evt.Data.To)
			return errors.New("listener gone")
		}),
		notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, evt *event.Event[event.Change]) error {
			assert.Equal(t, event.TypeHostDeregistered, evt.Context.Type)
			assert.Equal(t, []entry.TaskKey{key}, evt.Data.Unlinked)
			return nil
		}),
		notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, evt *event.Event[event.Change]) error {
			assert.Equal(t, event.TypeTaskRemoved, evt.Context.Type)
			assert.Equal(t, "t1", evt.Context.TaskID)
			assert.Equal(t, "suite/t1", evt.Data.Task.TreeAddress)
			return nil
		}),
	)

	_, err = e.Transition(ctx, key, entry.StateScheduled)
	require.NoError(t, err, "notification failures do not fail the mutation")
	_, err = e.DeregisterHost(ctx, "h1")
	require.NoError(t, err)
	require.NoError(t, e.DeleteTask(ctx, key))
}

func TestEngine_RoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	snapshot, err := rescue.New(ctx, dir)
	require.NoError(t, err)
	e := newTestEngine(t, WithWriter(snapshot))

	_, err = e.OpenContext(ctx, &entry.Context{ContextID: "c2", Name: "nightly", Payload: []byte{1, 2, 3}, MaxFinishedTasks: 5})
	require.NoError(t, err)
	for _, name := range []string{"h1", "h2"} {
		_, err = e.RegisterHost(ctx, name)
		require.NoError(t, err)
	}
	_, err = e.Reserve(ctx, "h2", "c2")
	require.NoError(t, err)
	for _, task := range []*entry.Task{
		{TaskID: "t1", ContextID: "c1", TreeAddress: "suite/server", Descriptor: []byte("d1"), Properties: map[string]string{"k": "v"}, Exclusivity: entry.Exclusive, Service: true},
		{TaskID: "t2", ContextID: "c1", TreeAddress: "suite/client", ResolvedDescriptor: []byte("r2"), RestartMax: 3},
		{TaskID: "t1", ContextID: "c2", TreeAddress: "other"},
	} {
		_, err = e.SubmitTask(ctx, task)
		require.NoError(t, err)
	}
	t1 := entry.TaskKey{ContextID: "c1", TaskID: "t1"}
	t2 := entry.TaskKey{ContextID: "c1", TaskID: "t2"}
	require.NoError(t, e.Link(ctx, t1, "h1"))
	require.NoError(t, e.SetDirectories(ctx, t1, entry.Directories{WorkingDir: "/w", LogDir: "/l"}))
	for _, state := range []entry.State{entry.StateScheduled, entry.StateRunning, entry.StateSleeping, entry.StateRunning} {
		_, err = e.Transition(ctx, t1, state)
		require.NoError(t, err)
	}
	_, err = e.Transition(ctx, t2, entry.StateAborted)
	require.NoError(t, err)
	_, err = e.IncrementRestart(ctx, t2)
	require.NoError(t, err)
	_, err = e.AddCheckPoint(ctx, checkPoint("ready", "t1", "c1", "1"))
	require.NoError(t, err)
	_, err = e.AddCheckPoint(ctx, checkPoint("ready", "t1", "c1", "2"))
	require.NoError(t, err)
	_, err = e.CheckPointOver(ctx, checkPoint("done", "t2", "c1", "3"))
	require.NoError(t, err)
	_, err = e.AddCheckPoint(ctx, checkPoint("gone", "t1", "c2", ""))
	require.NoError(t, err)
	_, err = e.RemoveCheckPoints(ctx, dao.WithName("gone"))
	require.NoError(t, err)

	image, err := rescue.NewLoader(dir).Load(ctx)
	require.NoError(t, err)
	recovered, err := Restore(ctx, image)
	require.NoError(t, err)

	assert.EqualValues(t, withoutBookkeeping(e.Image(ctx)), withoutBookkeeping(recovered.Image(ctx)))
	assert.Equal(t, []entry.TaskKey{t1}, recovered.LinkedTasks(ctx, "h1"))

	copyDir := t.TempDir()
	copySnapshot, err := rescue.New(ctx, copyDir)
	require.NoError(t, err)
	require.NoError(t, recovered.Snapshot(ctx, copySnapshot))
	copied, err := rescue.NewLoader(copyDir).Load(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, withoutBookkeeping(image), withoutBookkeeping(copied))
}

func TestRestore_Corruption(t *testing.T) {
	image := &rescue.Image{
		Contexts: []*entry.Context{{ContextID: "c1", Open: true, MaxFinishedTasks: entry.Unbounded}},
		Tasks:    []*entry.Task{{TaskID: "t1", ContextID: "c1", TreeAddress: "a", State: entry.StateRunning, HostName: "h1"}},
	}
	_, err := Restore(context.Background(), image)
	assert.True(t, errors.Is(err, dao.ErrRescueCorruption))
	assert.True(t, errors.Is(err, dao.ErrNotFound))
	assert.Contains(t, err.Error(), "tasks/c1/t1/record.yaml")
}

func withoutBookkeeping(image *rescue.Image) *rescue.Image {
	for _, host := range image.HostRuntimes {
		host.TimeRegistered = 0
	}
	for _, c := range image.Contexts {
		c.TimeUpdated = 0
	}
	for _, task := range image.Tasks {
		task.TimeUpdated = 0
	}
	return image
}
