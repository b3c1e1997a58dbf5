package commands

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/gridstore"
	"github.com/viant/gridstore/model/entry"
)

func TestCommands(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "rescue")
	srv, err := gridstore.New(ctx, gridstore.WithRescueURL(dir))
	require.NoError(t, err)
	eng := srv.Engine()
	_, err = eng.OpenContext(ctx, &entry.Context{ContextID: "c1", Payload: []byte("magic")})
	require.NoError(t, err)
	_, err = eng.SubmitTask(ctx, &entry.Task{ContextID: "c1", TaskID: "t1", TreeAddress: "suite/server"})
	require.NoError(t, err)
	_, err = eng.SubmitTask(ctx, &entry.Task{ContextID: "c1", TaskID: "t2", TreeAddress: "suite/client"})
	require.NoError(t, err)

	testCases := []struct {
		description string
		args        []string
		expectErr   bool
	}{
		{description: "inspect", args: []string{"inspect"}},
		{description: "tasks", args: []string{"tasks", "--context", "c1", "--path", "suite/*"}},
		{description: "tasks by state", args: []string{"tasks", "--state", "submitted"}},
		{description: "unknown state", args: []string{"tasks", "--state", "lost"}, expectErr: true},
		{description: "verify", args: []string{"verify"}},
	}
	for _, testCase := range testCases {
		args := append([]string{"gridstore", "--dir", dir}, testCase.args...)
		err := NewRootCommand().Run(ctx, args)
		if testCase.expectErr {
			assert.Error(t, err, testCase.description)
			continue
		}
		assert.NoError(t, err, testCase.description)
	}

	err = NewRootCommand().Run(ctx, []string{"gridstore", "--dir", filepath.Join(t.TempDir(), "missing"), "inspect"})
	assert.Error(t, err)
}
