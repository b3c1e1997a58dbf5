// Package tracing wraps OpenTelemetry for the lifecycle engine. Spans are
// no-ops until Init or InitWithExporter installs a provider.
package tracing
