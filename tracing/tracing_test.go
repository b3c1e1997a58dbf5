package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestStartSpan(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	require.NoError(t, InitWithExporter("gridstore", "0.0.1", exporter))

	_, span := StartSpan(context.Background(), "engine.Transition")
	span.WithAttributes(map[string]string{"taskKey": "c1/t1"})
	EndSpan(span, errors.New("invalid state transition"))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "engine.Transition", spans[0].Name)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Contains(t, spans[0].Attributes, attribute.String("taskKey", "c1/t1"))

	var nilSpan *Span
	EndSpan(nilSpan, nil)
	assert.Nil(t, nilSpan.WithAttributes(map[string]string{"k": "v"}))
}
