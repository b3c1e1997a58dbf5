package gridstore

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
)

func TestConfig_Validate(t *testing.T) {
	testCases := []struct {
		description string
		mutate      func(c *Config)
		expectErr   bool
	}{
		{description: "defaults", mutate: func(c *Config) {}},
		{description: "retention cap", mutate: func(c *Config) { c.MaxFinishedTasks = 10 }},
		{description: "negative retention", mutate: func(c *Config) { c.MaxFinishedTasks = -2 }, expectErr: true},
		{description: "negative buffer", mutate: func(c *Config) { c.Events.QueueBuffer = -1 }, expectErr: true},
		{description: "reset without url", mutate: func(c *Config) { c.Rescue.Reset = true }, expectErr: true},
		{description: "tracing without name", mutate: func(c *Config) {
			c.Tracing.Enabled = true
			c.Tracing.ServiceName = ""
		}, expectErr: true},
	}
	for _, testCase := range testCases {
		config := DefaultConfig()
		testCase.mutate(config)
		err := config.Validate()
		if testCase.expectErr {
			assert.Error(t, err, testCase.description)
			continue
		}
		assert.NoError(t, err, testCase.description)
	}
}

func TestLoadConfig(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	location := filepath.Join(t.TempDir(), "gridstore.yaml")
	t.Setenv("GRIDSTORE_RESCUE", "/tmp/grid")
	content := `rescue:
  url: ${env.GRIDSTORE_RESCUE}
maxFinishedTasks: 5
events:
  queueBuffer: 16
`
	require.NoError(t, fs.Upload(ctx, location, 0644, strings.NewReader(content)))

	config, err := LoadConfig(ctx, location)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/grid", config.Rescue.URL)
	assert.Equal(t, 5, config.MaxFinishedTasks)
	assert.Equal(t, 16, config.Events.QueueBuffer)
	assert.Equal(t, 3, config.Events.MaxRetries, "unset fields keep defaults")
	assert.Equal(t, "gridstore", config.Tracing.ServiceName)

	require.NoError(t, fs.Upload(ctx, location, 0644, strings.NewReader("maxFinishedTasks: -3\n")))
	_, err = LoadConfig(ctx, location)
	assert.Error(t, err)

	_, err = LoadConfig(ctx, filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
