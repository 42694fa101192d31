package tracer_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/fivetwenty-io/esi-client/internal/tracer"
)

// Setup replaces the global provider, so these tests do not run in parallel.

func TestSetupNoop(t *testing.T) {
	for _, exporter := range []string{"", tracer.ExporterNoop} {
		shutdown, err := tracer.Setup(context.Background(), tracer.Config{Exporter: exporter})
		require.NoError(t, err)

		_, ok := otel.GetTracerProvider().(noop.TracerProvider)
		assert.True(t, ok, "expected noop provider for %q", exporter)
		require.NoError(t, shutdown(context.Background()))
	}
}

func TestSetupStdout(t *testing.T) {
	var buf bytes.Buffer

	shutdown, err := tracer.Setup(context.Background(), tracer.Config{Exporter: tracer.ExporterStdout, Writer: &buf})
	require.NoError(t, err)

	defer func() {
		require.NoError(t, shutdown(context.Background()))
		otel.SetTracerProvider(noop.NewTracerProvider())
	}()

	_, span := tracer.StartSpan(context.Background(), "esi.dispatch")
	span.SetAttributes(tracer.StringAttr("esi.route", "get_status"))
	tracer.SetOK(span)
	span.End()

	assert.Contains(t, buf.String(), "esi.dispatch")
	assert.Contains(t, buf.String(), "get_status")
}

func TestSetupUnsupportedExporter(t *testing.T) {
	_, err := tracer.Setup(context.Background(), tracer.Config{Exporter: "jaeger"})
	require.ErrorIs(t, err, tracer.ErrUnsupportedExporter)
}

func TestTracerWithProvider(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	_, span := tracer.Tracer(tp).Start(context.Background(), "esi.dispatch")
	span.SetAttributes(tracer.IntAttr("http.status_code", 502))
	tracer.RecordError(span, errors.New("bad gateway"))
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "esi.dispatch", spans[0].Name)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Equal(t, "bad gateway", spans[0].Status.Description)
	require.Len(t, spans[0].Events, 1)
}
