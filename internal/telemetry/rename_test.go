package telemetry

import (
	"context"
	"errors"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/aidanlsb/hangar/internal/item"
)

func newTestRecorder(t *testing.T) (*RenameRecorder, *sdkmetric.ManualReader, *tracetest.SpanRecorder) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
	t.Cleanup(func() {
		_ = mp.Shutdown(context.Background())
		_ = tp.Shutdown(context.Background())
	})
	return NewRenameRecorderWith(mp.Meter("test"), tp.Tracer("test")), reader, spans
}

func sumCounter(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("%s is %T, want Sum[int64]", name, m.Data)
			}
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	return total
}

func TestRenameRecorderCountsOutcomes(t *testing.T) {
	rec, reader, spans := newTestRecorder(t)

	calls := 0
	c := &item.Controller{
		Observer: rec,
		Resolver: fixedDir(t.TempDir()),
		Policy:   item.RetryPolicy{InitialInterval: 1, MaxAttempts: 3},
		Mover: func(string, string) error {
			calls++
			if calls == 1 {
				return errors.New("busy")
			}
			return nil
		},
	}
	it, err := item.New(item.KindProject, nil, "a")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := c.Rename(it, "b"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if _, err := c.Rename(it, "bad/name"); err == nil {
		t.Fatal("expected invalid name")
	}

	if got := sumCounter(t, reader, "hangar.rename.operations"); got != 2 {
		t.Errorf("operations = %d, want 2", got)
	}
	if got := sumCounter(t, reader, "hangar.rename.errors"); got != 1 {
		t.Errorf("errors = %d, want 1", got)
	}
	if got := sumCounter(t, reader, "hangar.rename.retries"); got != 1 {
		t.Errorf("retries = %d, want 1", got)
	}

	ended := spans.Ended()
	if len(ended) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(ended))
	}
	if ended[1].Status().Code.String() != "Error" {
		t.Errorf("failed rename span status = %v", ended[1].Status())
	}
}

type fixedDir string

func (d fixedDir) RootDirOf(item.Container, string) string { return string(d) }

func TestInitDisabledInstallsNoop(t *testing.T) {
	t.Setenv("HANGAR_OTEL_ENABLED", "")
	if Enabled() {
		t.Fatal("expected telemetry disabled")
	}
	if err := Init(context.Background(), "hangar", "test"); err != nil {
		t.Fatalf("Init: %v", err)
	}
	rec := NewRenameRecorder()
	it, err := item.New(item.KindProject, nil, "x")
	if err != nil {
		t.Fatal(err)
	}
	rec.RenameFinished(it, "y", item.Outcome{Changed: true}, nil)
	Shutdown(context.Background())
}
