package gridstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/gridstore/model/entry"
	"github.com/viant/gridstore/progress"
	"github.com/viant/gridstore/service/dao"
	"github.com/viant/gridstore/service/event"
)

func populate(t *testing.T, srv *Service) {
	ctx := context.Background()
	eng := srv.Engine()
	_, err := srv.Registry().Register(ctx, "h1")
	require.NoError(t, err)
	_, err = eng.OpenContext(ctx, &entry.Context{ContextID: "c1", Open: true, Payload: []byte("magic")})
	require.NoError(t, err)
	_, err = eng.SubmitTask(ctx, &entry.Task{ContextID: "c1", TaskID: "t1", TreeAddress: "suite/server", Descriptor: []byte("run server")})
	require.NoError(t, err)
	require.NoError(t, eng.Link(ctx, entry.TaskKey{ContextID: "c1", TaskID: "t1"}, "h1"))
	_, err = eng.AddCheckPoint(ctx, &entry.CheckPoint{CheckPointKey: entry.CheckPointKey{Name: "ready", TaskID: "t1", ContextID: "c1"}, Payload: []byte("8080")})
	require.NoError(t, err)
}

func TestService_Rescue(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "rescue")

	srv, err := New(ctx, WithRescueURL(dir))
	require.NoError(t, err)
	assert.NotEmpty(t, srv.RescueURL())
	populate(t, srv)

	rescued, err := Rescue(ctx, dir)
	require.NoError(t, err)
	eng := rescued.Engine()
	task, err := eng.Task(ctx, entry.TaskKey{ContextID: "c1", TaskID: "t1"})
	require.NoError(t, err)
	assert.Equal(t, "h1", task.HostName)
	assert.Equal(t, "run server", string(task.Descriptor))
	assert.Equal(t, []entry.TaskKey{{ContextID: "c1", TaskID: "t1"}}, eng.LinkedTasks(ctx, "h1"))
	c, err := eng.Context(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "magic", string(c.Payload))
	assert.Len(t, eng.CheckPoints(ctx, dao.WithName("ready")), 1)

	_, err = eng.Transition(ctx, entry.TaskKey{ContextID: "c1", TaskID: "t1"}, entry.StateScheduled)
	require.NoError(t, err)
	again, err := Rescue(ctx, dir)
	require.NoError(t, err)
	task, err = again.Engine().Task(ctx, entry.TaskKey{ContextID: "c1", TaskID: "t1"})
	require.NoError(t, err)
	assert.Equal(t, entry.StateScheduled, task.State, "rescued service keeps persisting")
}

func TestService_Reset(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "rescue")
	srv, err := New(ctx, WithRescueURL(dir))
	require.NoError(t, err)
	populate(t, srv)

	config := DefaultConfig()
	config.Rescue = RescueConfig{URL: dir, Reset: true}
	_, err = New(ctx, WithConfig(config))
	require.NoError(t, err)

	rescued, err := Rescue(ctx, dir)
	require.NoError(t, err)
	assert.Empty(t, rescued.Engine().Contexts(ctx))
	assert.Empty(t, rescued.Registry().List(ctx))
}

func TestService_RescueMissingDirectory(t *testing.T) {
	_, err := Rescue(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.True(t, errors.Is(err, dao.ErrNotFound))
}

func TestService_Events(t *testing.T) {
	ctx := context.Background()
	srv, err := New(ctx)
	require.NoError(t, err)
	assert.Equal(t, "", srv.RescueURL())
	populate(t, srv)

	key := entry.TaskKey{ContextID: "c1", TaskID: "t1"}
	_, err = srv.Engine().Transition(ctx, key, entry.StateScheduled)
	require.NoError(t, err)
	require.NoError(t, srv.Engine().DeleteTask(ctx, key))

	testCases := []struct {
		description string
		eventType   string
	}{
		{description: "submission", eventType: event.TypeTaskSubmitted},
		{description: "transition", eventType: event.TypeTaskTransitioned},
		{description: "removal", eventType: event.TypeTaskRemoved},
	}
	for _, testCase := range testCases {
		waitCtx, cancel := context.WithTimeout(ctx, time.Second)
		evt, err := srv.Events().Consume(waitCtx)
		cancel()
		require.NoError(t, err, testCase.description)
		assert.Equal(t, testCase.eventType, evt.Context.Type, testCase.description)
		assert.Equal(t, "t1", evt.Context.TaskID, testCase.description)
	}
}

func TestService_WithNotifier(t *testing.T) {
	srv, err := New(context.Background(), WithNotifier(event.Nop{}), WithMaxFinishedTasks(2))
	require.NoError(t, err)
	assert.Nil(t, srv.Events())
	assert.Equal(t, 2, srv.Config().MaxFinishedTasks)
}

func TestService_InvalidConfig(t *testing.T) {
	_, err := New(context.Background(), WithMaxFinishedTasks(-5))
	assert.Error(t, err)
}

func TestService_NonEmptyRescueDirectory(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "rescue")
	srv, err := New(ctx, WithRescueURL(dir))
	require.NoError(t, err)
	_, err = srv.Engine().OpenContext(ctx, &entry.Context{ContextID: "old"})
	require.NoError(t, err)

	_, err = New(ctx, WithRescueURL(dir))
	assert.True(t, errors.Is(err, dao.ErrRescueNotEmpty))

	rescued, err := Rescue(ctx, dir)
	require.NoError(t, err)
	live := srv.Engine().Contexts(ctx)
	recovered := rescued.Engine().Contexts(ctx)
	require.Len(t, recovered, len(live))
	assert.Equal(t, live[0].ContextID, recovered[0].ContextID)
}

func TestService_RescueOverwrittenRecord(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "rescue")
	srv, err := New(ctx, WithRescueURL(dir))
	require.NoError(t, err)
	_, err = srv.Engine().OpenContext(ctx, &entry.Context{ContextID: "c1"})
	require.NoError(t, err)
	require.NoError(t, srv.Engine().CloseContext(ctx, "c1"))

	rescued, err := Rescue(ctx, dir)
	require.NoError(t, err)
	c, err := rescued.Engine().Context(ctx, "c1")
	require.NoError(t, err)
	assert.False(t, c.Open)
}

func TestService_Progress(t *testing.T) {
	ctx := context.Background()
	srv, err := New(ctx)
	require.NoError(t, err)
	populate(t, srv)
	_, err = srv.Engine().Transition(ctx, entry.TaskKey{ContextID: "c1", TaskID: "t1"}, entry.StateScheduled)
	require.NoError(t, err)

	tracker := progress.NewTracker(nil)
	runCtx, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
	defer cancel()
	require.NoError(t, event.NewListener(srv.Events(), tracker.Handle).Run(runCtx))

	actual, ok := tracker.Snapshot("c1")
	require.True(t, ok)
	assert.Equal(t, 1, actual.TotalTasks)
	assert.Equal(t, 1, actual.PendingTasks)
}
