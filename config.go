package gridstore

import (
	"context"
	"fmt"

	"github.com/viant/afs"
	"github.com/viant/gridstore/internal/env"
	"github.com/viant/gridstore/model/entry"
	"github.com/viant/gridstore/service/messaging/memory"
	"gopkg.in/yaml.v3"
)

// Config is a serialisable representation of the service configuration. The
// zero value of a nested field inherits its package default.
type Config struct {
	Rescue RescueConfig `json:"rescue" yaml:"rescue"`
	// MaxFinishedTasks is the retention cap of contexts opened without one;
	// -1 keeps every finished task.
	MaxFinishedTasks int           `json:"maxFinishedTasks" yaml:"maxFinishedTasks"`
	Events           memory.Config `json:"events" yaml:"events"`
	Tracing          TracingConfig `json:"tracing" yaml:"tracing"`
}

// RescueConfig locates the rescue directory. An empty URL keeps the store in
// memory only.
type RescueConfig struct {
	URL string `json:"url" yaml:"url"`
	// Reset discards existing content when a new service is created.
	Reset bool `json:"reset" yaml:"reset"`
}

type TracingConfig struct {
	Enabled        bool   `json:"enabled" yaml:"enabled"`
	ServiceName    string `json:"serviceName" yaml:"serviceName"`
	ServiceVersion string `json:"serviceVersion" yaml:"serviceVersion"`
	// OutputFile receives stdout exporter output; empty means os.Stdout.
	OutputFile string `json:"outputFile" yaml:"outputFile"`
}

// DefaultConfig returns a Config populated with the package defaults.
func DefaultConfig() *Config {
	return &Config{
		MaxFinishedTasks: entry.Unbounded,
		Events:           memory.DefaultConfig(),
		Tracing: TracingConfig{
			ServiceName:    "gridstore",
			ServiceVersion: "0.1.0",
		},
	}
}

// Validate returns an error describing the first invalid setting or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if c.MaxFinishedTasks < entry.Unbounded {
		return fmt.Errorf("maxFinishedTasks must be >= %d", entry.Unbounded)
	}
	if c.Events.QueueBuffer < 0 {
		return fmt.Errorf("events.queueBuffer must be >= 0")
	}
	if c.Events.MaxRetries < 0 {
		return fmt.Errorf("events.maxRetries must be >= 0")
	}
	if c.Rescue.Reset && c.Rescue.URL == "" {
		return fmt.Errorf("rescue.reset requires rescue.url")
	}
	if c.Tracing.Enabled && c.Tracing.ServiceName == "" {
		return fmt.Errorf("tracing.serviceName must be set when tracing is enabled")
	}
	return nil
}

// LoadConfig reads a YAML configuration from URL over defaults. ${env.KEY}
// references are expanded before decoding.
func LoadConfig(ctx context.Context, URL string) (*Config, error) {
	data, err := afs.New().DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", URL, err)
	}
	ret := DefaultConfig()
	if err := yaml.Unmarshal([]byte(env.Expand(string(data))), ret); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", URL, err)
	}
	if err := ret.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", URL, err)
	}
	return ret, nil
}
