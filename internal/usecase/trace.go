package usecase

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var usecaseTracer = otel.Tracer("nfl-pickem/internal/usecase")

// startUsecaseSpan only starts a child span when the caller is already
// traced, so CLI runs and background ingestion do not emit root spans.
func startUsecaseSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	parent := trace.SpanFromContext(ctx)
	if name == "" || !parent.SpanContext().IsValid() {
		// Non-recording stand-in so the deferred End never closes the parent.
		return ctx, trace.SpanFromContext(trace.ContextWithSpanContext(context.Background(), parent.SpanContext()))
	}
	return usecaseTracer.Start(ctx, name)
}
