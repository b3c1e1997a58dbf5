package gridstore

import (
	"log/slog"

	"github.com/viant/afs"
	"github.com/viant/gridstore/service/event"
	"github.com/viant/gridstore/tracing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Option configures a Service.
type Option func(s *Service)

// WithConfig replaces the configuration.
func WithConfig(config *Config) Option {
	return func(s *Service) {
		if config != nil {
			s.config = config
		}
	}
}

// WithRescueURL sets the rescue directory location.
func WithRescueURL(URL string) Option {
	return func(s *Service) {
		s.config.Rescue.URL = URL
	}
}

// WithMaxFinishedTasks sets the default retention cap of new contexts.
func WithMaxFinishedTasks(limit int) Option {
	return func(s *Service) {
		s.config.MaxFinishedTasks = limit
	}
}

// WithLogger sets the logger shared by every component.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithFS sets the storage service backing the rescue directory.
func WithFS(fs afs.Service) Option {
	return func(s *Service) {
		s.fs = fs
	}
}

// WithNotifier replaces the default queue notifier.
func WithNotifier(notifier event.Notifier) Option {
	return func(s *Service) {
		s.notifier = notifier
	}
}

// WithTracing configures OpenTelemetry tracing with the stdout exporter. If
// outputFile is empty traces go to os.Stdout. The first successful
// initialisation wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		s.config.Tracing = TracingConfig{
			Enabled:        true,
			ServiceName:    serviceName,
			ServiceVersion: serviceVersion,
			OutputFile:     outputFile,
		}
	}
}

// WithTracingExporter configures OpenTelemetry tracing using a custom
// SpanExporter such as OTLP. The first successful initialisation wins.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		_ = tracing.InitWithExporter(serviceName, serviceVersion, exporter)
	}
}
