package middleware

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name for weave metrics.
const meterName = "github.com/xraph/weave"

// Call outcomes recorded in the status attribute.
const (
	StatusOK       = "ok"
	StatusError    = "error"
	StatusCanceled = "canceled"
)

// Metrics returns middleware that records per-call metrics using the
// global OTel MeterProvider.
//
// Instruments:
//   - weave.call.duration (Float64Histogram): call time in seconds
//   - weave.calls (Int64Counter): completed calls
//
// Both carry chain, phase, middleware (empty for the handler), method and
// status (ok, error or canceled).
func Metrics() Middleware {
	return MetricsWithMeter(otel.Meter(meterName))
}

// MetricsWithMeter returns metrics middleware using the provided meter.
func MetricsWithMeter(meter metric.Meter) Middleware {
	// On error the API returns noop instruments.
	duration, _ := meter.Float64Histogram(
		"weave.call.duration",
		metric.WithDescription("Duration of lifecycle and handler calls in seconds"),
		metric.WithUnit("s"),
	)
	calls, _ := meter.Int64Counter(
		"weave.calls",
		metric.WithDescription("Completed lifecycle and handler calls"),
		metric.WithUnit("{call}"),
	)

	return func(ctx context.Context, c Call, next Handler) error {
		start := time.Now()
		err := next(ctx)

		attrs := metric.WithAttributes(
			attribute.String("chain", c.Chain),
			attribute.String("phase", string(c.Phase)),
			attribute.String("middleware", c.Middleware),
			attribute.String("method", c.Method),
			attribute.String("status", status(err)),
		)
		duration.Record(ctx, time.Since(start).Seconds(), attrs)
		calls.Add(ctx, 1, attrs)
		return err
	}
}

func status(err error) string {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return StatusCanceled
	default:
		return StatusError
	}
}
