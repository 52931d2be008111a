package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/aidanlsb/hangar/internal/item"
)

const renameScopeName = "github.com/aidanlsb/hangar/rename"

// RenameRecorder turns finished renames into a span and hangar.rename.*
// metrics. It implements item.Observer.
type RenameRecorder struct {
	tracer   trace.Tracer
	renames  metric.Int64Counter
	failures metric.Int64Counter
	retries  metric.Int64Counter
	dur      metric.Float64Histogram
}

// NewRenameRecorder uses the global providers installed by Init.
func NewRenameRecorder() *RenameRecorder {
	return NewRenameRecorderWith(Meter(renameScopeName), Tracer(renameScopeName))
}

// NewRenameRecorderWith uses the given meter and tracer.
func NewRenameRecorderWith(m metric.Meter, tracer trace.Tracer) *RenameRecorder {
	renames, _ := m.Int64Counter("hangar.rename.operations",
		metric.WithDescription("Rename calls by outcome"),
	)
	failures, _ := m.Int64Counter("hangar.rename.errors",
		metric.WithDescription("Failed rename calls by error kind"),
	)
	retries, _ := m.Int64Counter("hangar.rename.retries",
		metric.WithDescription("Directory move attempts beyond the first"),
	)
	dur, _ := m.Float64Histogram("hangar.rename.duration",
		metric.WithDescription("Rename call duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	return &RenameRecorder{
		tracer:   tracer,
		renames:  renames,
		failures: failures,
		retries:  retries,
		dur:      dur,
	}
}

// RenameFinished records one rename call.
func (r *RenameRecorder) RenameFinished(it *item.Item, newName string, out item.Outcome, err error) {
	ctx := context.Background()
	end := time.Now()

	result := "renamed"
	switch {
	case err != nil:
		result = "failed"
	case !out.Changed:
		result = "unchanged"
	}
	attrs := []attribute.KeyValue{
		attribute.String("hangar.item.kind", it.Kind().Name),
		attribute.String("hangar.rename.result", result),
	}

	_, span := r.tracer.Start(ctx, "item.Rename",
		trace.WithTimestamp(end.Add(-out.Duration)),
		trace.WithAttributes(
			attribute.String("hangar.item", it.FullName()),
			attribute.String("hangar.rename.new_name", newName),
			attribute.Bool("hangar.rename.moved", out.Moved),
			attribute.Int("hangar.rename.attempts", out.Attempts),
			attribute.Int64("hangar.rename.waited_ms", out.Waited.Milliseconds()),
		),
		trace.WithAttributes(attrs...),
	)

	r.renames.Add(ctx, 1, metric.WithAttributes(attrs...))
	r.dur.Record(ctx, float64(out.Duration.Microseconds())/1000, metric.WithAttributes(attrs...))
	if out.Attempts > 1 {
		r.retries.Add(ctx, int64(out.Attempts-1), metric.WithAttributes(attrs...))
	}
	if err != nil {
		kind := attribute.String("hangar.rename.error_kind", item.KindOf(err).String())
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.failures.Add(ctx, 1, metric.WithAttributes(append(attrs, kind)...))
	}
	for _, w := range out.Warnings() {
		span.AddEvent("warning", trace.WithAttributes(attribute.String("error", w.Error())))
	}
	span.End(trace.WithTimestamp(end))
}
