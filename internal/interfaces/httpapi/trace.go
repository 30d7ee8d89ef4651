package httpapi

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const handlerSpanPrefix = "httpapi.Handler."

var apiTracer = otel.Tracer("nfl-pickem/internal/interfaces/httpapi")

// startSpan opens a child span for handler methods only. Middleware and
// response helpers, and anything on an untraced route such as /healthz,
// get the parent span back unchanged.
func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	parent := trace.SpanFromContext(ctx)
	if !parent.SpanContext().IsValid() || !shouldCreateHTTPAPISpan(name) {
		return ctx, noopSpan(parent)
	}
	return apiTracer.Start(ctx, name)
}

func shouldCreateHTTPAPISpan(name string) bool {
	return strings.HasPrefix(name, handlerSpanPrefix)
}

// noopSpan wraps the parent's context in a span whose End does nothing, so
// helpers can always defer span.End.
func noopSpan(parent trace.Span) trace.Span {
	return trace.SpanFromContext(trace.ContextWithSpanContext(context.Background(), parent.SpanContext()))
}
