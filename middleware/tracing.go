package middleware

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracerName is the instrumentation scope name for weave tracing.
const tracerName = "github.com/xraph/weave"

// SpanName returns the span name of a call in phase p, such as
// "weave.before" or "weave.finally".
func SpanName(p Phase) string { return "weave." + string(p) }

// Tracing returns middleware that opens one span per call using the
// global TracerProvider. With no provider configured it is a
// pass-through.
func Tracing() Middleware {
	return TracingWithTracer(otel.Tracer(tracerName))
}

// TracingWithTracer returns tracing middleware using the provided tracer.
//
// Every span carries weave.chain, weave.phase and weave.method. Middleware
// calls add weave.middleware and weave.step.id; the handler has neither.
// A call that ends because its context was canceled or timed out is
// marked with weave.canceled.
func TracingWithTracer(tracer trace.Tracer) Middleware {
	return func(ctx context.Context, c Call, next Handler) error {
		attrs := []attribute.KeyValue{
			attribute.String("weave.chain", c.Chain),
			attribute.String("weave.phase", string(c.Phase)),
			attribute.String("weave.method", c.Method),
		}
		if c.Middleware != "" {
			attrs = append(attrs,
				attribute.String("weave.middleware", c.Middleware),
				attribute.String("weave.step.id", c.StepID.String()),
			)
		}

		ctx, span := tracer.Start(ctx, SpanName(c.Phase),
			trace.WithAttributes(attrs...),
			trace.WithSpanKind(trace.SpanKindInternal),
		)
		defer span.End()

		err := next(ctx)
		switch {
		case err == nil:
			span.SetStatus(codes.Ok, "")
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			span.SetAttributes(attribute.Bool("weave.canceled", true))
			fallthrough
		default:
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return err
	}
}
