package observability

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

// TraceFields returns trace and span IDs of the active span as log fields.
// The map is empty when ctx carries no valid span.
func TraceFields(ctx context.Context) map[string]string {
	fields := make(map[string]string, 2)
	if ctx == nil {
		return fields
	}
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return fields
	}
	fields[AttrTraceID] = spanCtx.TraceID().String()
	fields[AttrSpanID] = spanCtx.SpanID().String()
	return fields
}
