package gridstore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/viant/afs"
	"github.com/viant/gridstore/service/dao"
	"github.com/viant/gridstore/service/engine"
	"github.com/viant/gridstore/service/event"
	"github.com/viant/gridstore/service/messaging/memory"
	"github.com/viant/gridstore/service/registry"
	"github.com/viant/gridstore/service/rescue"
	"github.com/viant/gridstore/tracing"
)

// Service bundles the lifecycle engine with its registry, rescue snapshot
// and event queue.
type Service struct {
	config   *Config
	logger   *slog.Logger
	fs       afs.Service
	notifier event.Notifier
	events   *event.Publisher[event.Change]
	snapshot *rescue.Snapshot
	engine   *engine.Engine
	registry *registry.Registry
}

// New creates an empty service. When a rescue URL is configured every
// accepted mutation is persisted there. A rescue directory that already holds
// entries fails with dao.ErrRescueNotEmpty unless reset is requested; use
// Rescue to recover it instead.
func New(ctx context.Context, options ...Option) (*Service, error) {
	ret := newService(options)
	if err := ret.init(ctx, ret.config.Rescue.Reset); err != nil {
		return nil, err
	}
	if ret.snapshot != nil {
		empty, err := ret.snapshot.Empty(ctx)
		if err != nil {
			return nil, err
		}
		if !empty {
			return nil, fmt.Errorf("%w: %s: use Rescue or rescue.reset", dao.ErrRescueNotEmpty, ret.snapshot.BaseURL())
		}
	}
	ret.engine = engine.New(ret.engineOptions()...)
	ret.registry = registry.New(ret.engine)
	return ret, nil
}

func newService(options []Option) *Service {
	ret := &Service{config: DefaultConfig(), logger: slog.Default()}
	for _, option := range options {
		option(ret)
	}
	if ret.fs == nil {
		ret.fs = afs.New()
	}
	return ret
}

func (s *Service) init(ctx context.Context, reset bool) error {
	if err := s.config.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if tc := s.config.Tracing; tc.Enabled {
		if err := tracing.Init(tc.ServiceName, tc.ServiceVersion, tc.OutputFile); err != nil {
			return fmt.Errorf("failed to init tracing: %w", err)
		}
	}
	if s.notifier == nil {
		notifier := event.NewQueueNotifier(memory.NewQueue[event.Event[event.Change]](s.config.Events), s.logger)
		s.notifier = notifier
		s.events = notifier.Publisher()
	}
	if s.config.Rescue.URL == "" {
		return nil
	}
	var err error
	s.snapshot, err = rescue.New(ctx, s.config.Rescue.URL, s.rescueOptions(reset)...)
	if err != nil {
		return fmt.Errorf("failed to open rescue directory %s: %w", s.config.Rescue.URL, err)
	}
	return nil
}

func (s *Service) rescueOptions(reset bool) []rescue.Option {
	return []rescue.Option{rescue.WithFS(s.fs), rescue.WithLogger(s.logger), rescue.WithReset(reset)}
}

func (s *Service) engineOptions() []engine.Option {
	ret := []engine.Option{
		engine.WithNotifier(s.notifier),
		engine.WithLogger(s.logger),
		engine.WithMaxFinishedTasks(s.config.MaxFinishedTasks),
	}
	if s.snapshot != nil {
		ret = append(ret, engine.WithWriter(s.snapshot))
	}
	return ret
}

// Engine returns the task lifecycle engine.
func (s *Service) Engine() *engine.Engine {
	return s.engine
}

// Registry returns the host runtime registry.
func (s *Service) Registry() *registry.Registry {
	return s.registry
}

// Events returns the publisher lifecycle events are consumed from, or nil
// when a custom notifier was supplied. A tree display typically feeds them
// to a progress tracker on its own goroutine:
//
//	tracker := progress.NewTracker(nil)
//	go event.NewListener(srv.Events(), tracker.Handle).Run(ctx)
func (s *Service) Events() *event.Publisher[event.Change] {
	return s.events
}

// RescueURL returns the rescue directory location, empty when not persisted.
func (s *Service) RescueURL() string {
	if s.snapshot == nil {
		return ""
	}
	return s.snapshot.BaseURL()
}

func (s *Service) Config() *Config {
	return s.config
}
