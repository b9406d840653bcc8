package middleware

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracerName is the instrumentation scope name for syncline tracing.
const tracerName = "github.com/syncline/syncline"

// Tracing returns middleware that wraps each mutation in an OpenTelemetry
// span. If no TracerProvider is configured globally, the default noop
// tracer is used and this middleware becomes a pass-through with zero
// overhead.
//
// Span attributes include: syncline.mutation.op, syncline.collection,
// syncline.record.id, syncline.org_id. On error, the span status is set
// to codes.Error with the error message.
func Tracing() Middleware {
	tracer := otel.Tracer(tracerName)
	return TracingWithTracer(tracer)
}

// TracingWithTracer returns tracing middleware using the provided tracer.
// This variant allows injecting a specific TracerProvider for testing or
// when multiple providers are in use.
func TracingWithTracer(tracer trace.Tracer) Middleware {
	return func(ctx context.Context, m *Mutation, next Handler) error {
		ctx, span := tracer.Start(ctx, "syncline.mutation.apply",
			trace.WithAttributes(
				attribute.String("syncline.mutation.op", m.Op),
				attribute.String("syncline.collection", m.Collection),
				attribute.String("syncline.record.id", m.RecordID),
				attribute.String("syncline.org_id", m.OrgID),
			),
			trace.WithSpanKind(trace.SpanKindInternal),
		)
		defer span.End()

		err := next(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}

		return err
	}
}
