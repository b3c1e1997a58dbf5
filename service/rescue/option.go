package rescue

import (
	"log/slog"

	"github.com/viant/afs"
)

type options struct {
	fs     afs.Service
	logger *slog.Logger
	reset  bool
}

func newOptions(opts []Option) *options {
	ret := &options{fs: afs.New(), logger: slog.Default()}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Option configures a Snapshot or a Loader.
type Option func(*options)

// WithFS sets the storage service.
func WithFS(fs afs.Service) Option {
	return func(o *options) {
		if fs != nil {
			o.fs = fs
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithReset removes existing content when a Snapshot is created.
func WithReset(reset bool) Option {
	return func(o *options) {
		o.reset = reset
	}
}
