package tracing_test

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/biliterm/internal/session"
	"github.com/zjrosen/biliterm/internal/tracing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := tracing.DefaultConfig()

	require.False(t, cfg.Enabled, "tracing should be disabled by default")
	require.Equal(t, "file", cfg.Exporter)
	require.Equal(t, "", cfg.FilePath)
	require.Equal(t, "localhost:4317", cfg.OTLPEndpoint)
	require.Equal(t, 1.0, cfg.SampleRate)
	require.Equal(t, "biliterm", cfg.ServiceName)
}

func TestNewProvider_Disabled(t *testing.T) {
	provider, err := tracing.NewProvider(tracing.Config{Enabled: false})
	require.NoError(t, err)
	require.False(t, provider.Enabled())

	ctx, span := provider.Tracer().Start(context.Background(), "test-span")
	require.NotNil(t, ctx)
	require.False(t, span.SpanContext().IsValid(), "no-op spans carry no ids")
	span.End()

	require.NoError(t, provider.Shutdown(context.Background()))
}

func TestNewProvider_Errors(t *testing.T) {
	_, err := tracing.NewProvider(tracing.Config{Enabled: true, Exporter: "file"})
	require.ErrorContains(t, err, "file_path required")

	_, err = tracing.NewProvider(tracing.Config{Enabled: true, Exporter: "zipkin"})
	require.ErrorContains(t, err, "unsupported exporter type: zipkin")
}

func TestNewProvider_NoneExporterStillTraces(t *testing.T) {
	t.Cleanup(func() { otel.SetTracerProvider(noop.NewTracerProvider()) })

	provider, err := tracing.NewProvider(tracing.Config{Enabled: true, Exporter: "none"})
	require.NoError(t, err)
	require.True(t, provider.Enabled())

	ctx, span := provider.Tracer().Start(context.Background(), "op")
	require.NotEmpty(t, tracing.TraceID(ctx))
	span.End()

	require.NoError(t, provider.Shutdown(context.Background()))
}

func TestTraceID_NoSpan(t *testing.T) {
	require.Equal(t, "", tracing.TraceID(context.Background()))
}

// A finished session task is exported as a session.run span carrying its
// id, name, event count and final status.
func TestNewProvider_FileExporter_SessionSpan(t *testing.T) {
	t.Cleanup(func() { otel.SetTracerProvider(noop.NewTracerProvider()) })

	tracePath := filepath.Join(t.TempDir(), "traces", "traces.jsonl")
	provider, err := tracing.NewProvider(tracing.Config{
		Enabled:     true,
		Exporter:    "file",
		FilePath:    tracePath,
		SampleRate:  1.0,
		ServiceName: "biliterm-test",
	})
	require.NoError(t, err)
	require.True(t, provider.Enabled())

	events := []int{1, 2, 3}
	src := session.SourceFunc[int](func(ctx context.Context) (int, error) {
		if len(events) == 0 {
			return 0, io.EOF
		}
		e := events[0]
		events = events[1:]
		return e, nil
	})
	sum := func(prev, e int) (int, bool) { return prev + e, true }

	h := session.NewTask[int, int]("counter", src, 0, sum).Run(context.Background())
	<-h.Done()
	require.Equal(t, 6, h.Peek())

	require.NoError(t, provider.Shutdown(context.Background()))

	records := readRecords(t, tracePath)
	require.Len(t, records, 1)

	rec := records[0]
	require.Equal(t, tracing.SpanSessionRun, rec.Name)
	require.Equal(t, "biliterm-test", rec.Service)
	require.Equal(t, "INTERNAL", rec.Kind)
	require.Equal(t, h.ID(), rec.Attributes[tracing.AttrSessionID])
	require.Equal(t, "counter", rec.Attributes[tracing.AttrSessionName])
	require.EqualValues(t, 3, rec.Attributes[tracing.AttrSessionEvents])
	require.Equal(t, "finished", rec.Attributes[tracing.AttrSessionStatus])
	require.Len(t, rec.Events, 1)
	require.Equal(t, tracing.EventSourceEnded, rec.Events[0].Name)
}

func readRecords(t *testing.T, path string) []tracing.SpanRecord {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	var records []tracing.SpanRecord
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec tracing.SpanRecord
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
		records = append(records, rec)
	}
	require.NoError(t, scanner.Err())
	return records
}

func TestExporterNames(t *testing.T) {
	require.Equal(t, []string{"file", "none", "otlp", "stdout"}, tracing.ExporterNames())
}
