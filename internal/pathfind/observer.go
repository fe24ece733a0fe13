package pathfind

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/samdwyer/overmap/internal/grid"
	"github.com/samdwyer/overmap/internal/telemetry"
)

// Observer receives search lifecycle notifications. Implementations
// must be cheap; they run inline with the search.
type Observer interface {
	SearchStarted(start, end grid.Point)
	SearchCompleted(start, end grid.Point, path []grid.Point)
	SearchFailed(start, end grid.Point, reason string)
}

// noopObserver is the default observer; it discards every notification.
type noopObserver struct{}

func (noopObserver) SearchStarted(_, _ grid.Point)                   {}
func (noopObserver) SearchCompleted(_, _ grid.Point, _ []grid.Point) {}
func (noopObserver) SearchFailed(_, _ grid.Point, _ string)          {}

// TracingObserver reports each search as an OpenTelemetry span.
// A pathfinder is single-threaded, so one in-flight span suffices.
type TracingObserver struct {
	tracer trace.Tracer
	span   trace.Span
}

// NewTracingObserver creates an observer backed by the global tracer provider.
func NewTracingObserver() *TracingObserver {
	return &TracingObserver{tracer: telemetry.Tracer("pathfind")}
}

// SearchStarted opens a span for the search about to run.
func (o *TracingObserver) SearchStarted(start, end grid.Point) {
	_, o.span = o.tracer.Start(context.Background(), "pathfind.search",
		trace.WithAttributes(
			attribute.Int("search.start_x", start.X),
			attribute.Int("search.start_y", start.Y),
			attribute.Int("search.end_x", end.X),
			attribute.Int("search.end_y", end.Y),
		))
}

// SearchCompleted closes the current span with the resulting path length.
func (o *TracingObserver) SearchCompleted(_, _ grid.Point, path []grid.Point) {
	if o.span == nil {
		return
	}
	o.span.SetAttributes(attribute.Int("search.path_length", len(path)))
	o.span.End()
	o.span = nil
}

// SearchFailed closes the current span with the failure cause.
func (o *TracingObserver) SearchFailed(_, _ grid.Point, reason string) {
	if o.span == nil {
		return
	}
	o.span.SetAttributes(attribute.String("search.failure", reason))
	o.span.End()
	o.span = nil
}
