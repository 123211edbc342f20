package database

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func setupTestTracer(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)

	t.Cleanup(func() {
		tp.Shutdown(context.Background()) //nolint:errcheck
		otel.SetTracerProvider(prev)
	})

	return exporter
}

func spanAttrs(span tracetest.SpanStub) map[string]string {
	attrs := make(map[string]string, len(span.Attributes))
	for _, a := range span.Attributes {
		attrs[string(a.Key)] = a.Value.Emit()
	}
	return attrs
}

func withSlowQueryLogging(t *testing.T, threshold time.Duration) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetSlowQueryLogging(threshold, slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { SetSlowQueryLogging(0, nil) })
	return &buf
}

// --- TraceQuery Tests ---

func TestTraceQuery_Success(t *testing.T) {
	exporter := setupTestTracer(t)

	_, end := TraceQuery(context.Background(), "FindSettings", "SELECT doc FROM catalog_settings")
	end(nil)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "db.FindSettings", spans[0].Name)
	assert.Equal(t, trace.SpanKindClient, spans[0].SpanKind)
	assert.Equal(t, codes.Unset, spans[0].Status.Code)

	attrs := spanAttrs(spans[0])
	assert.Equal(t, SystemPostgres, attrs["db.system"])
	assert.Equal(t, "FindSettings", attrs["db.operation"])
	assert.Equal(t, "SELECT doc FROM catalog_settings", attrs["db.statement"])
}

func TestTraceQuery_Error(t *testing.T) {
	exporter := setupTestTracer(t)

	_, end := TraceQuery(context.Background(), "UpsertDiamonds", "INSERT INTO catalog_diamonds")
	end(errors.New("connection refused"))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Equal(t, "connection refused", spans[0].Status.Description)
	assert.NotEmpty(t, spans[0].Events, "error should be recorded as a span event")
}

func TestTraceOperation_System(t *testing.T) {
	exporter := setupTestTracer(t)

	_, end := TraceOperation(context.Background(), SystemMongo, "find", "gemstones")
	end(nil)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, SystemMongo, spanAttrs(spans[0])["db.system"])
}

func TestTraceQuery_PropagatesContext(t *testing.T) {
	exporter := setupTestTracer(t)

	ctx, parent := otel.Tracer("test").Start(context.Background(), "parent")
	childCtx, end := TraceQuery(ctx, "FindRings", "SELECT 1")
	assert.True(t, trace.SpanContextFromContext(childCtx).IsValid())
	end(nil)
	parent.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, spans[1].SpanContext.TraceID(), spans[0].SpanContext.TraceID())
	assert.Equal(t, spans[1].SpanContext.SpanID(), spans[0].Parent.SpanID())
}

// --- Slow Query Logging Tests ---

func TestSlowQueryLogging_SlowQuery(t *testing.T) {
	setupTestTracer(t)
	buf := withSlowQueryLogging(t, time.Nanosecond)

	_, end := TraceQuery(context.Background(), "FindDiamonds", "SELECT doc FROM catalog_diamonds")
	time.Sleep(time.Millisecond)
	end(nil)

	out := buf.String()
	assert.Contains(t, out, "slow query detected")
	assert.Contains(t, out, "FindDiamonds")
	assert.Contains(t, out, `"system":"postgresql"`)
}

func TestSlowQueryLogging_FastQuery_NoLog(t *testing.T) {
	setupTestTracer(t)
	buf := withSlowQueryLogging(t, time.Hour)

	_, end := TraceQuery(context.Background(), "FindDiamonds", "SELECT 1")
	end(nil)

	assert.Empty(t, buf.String())
}

func TestSlowQueryLogging_Disabled(t *testing.T) {
	setupTestTracer(t)
	buf := withSlowQueryLogging(t, 0)

	_, end := TraceQuery(context.Background(), "FindDiamonds", "SELECT 1")
	end(nil)

	assert.Empty(t, buf.String())
}

func TestSlowQueryLogging_WithError(t *testing.T) {
	setupTestTracer(t)
	buf := withSlowQueryLogging(t, time.Nanosecond)

	_, end := TraceQuery(context.Background(), "FindDiamonds", "SELECT 1")
	time.Sleep(time.Millisecond)
	end(errors.New("relation does not exist"))

	assert.Contains(t, buf.String(), "relation does not exist")
}
