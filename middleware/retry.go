package middleware

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Backoff computes the delay before retry attempt n (1-indexed).
type Backoff func(attempt int) time.Duration

// ConstantBackoff always waits d.
func ConstantBackoff(d time.Duration) Backoff {
	return func(int) time.Duration { return d }
}

// ExponentialBackoff doubles the delay each attempt, capped at maxDelay
// when maxDelay is positive.
func ExponentialBackoff(initial, maxDelay time.Duration) Backoff {
	return func(attempt int) time.Duration {
		d := time.Duration(float64(initial) * math.Pow(2, float64(attempt-1)))
		if maxDelay > 0 && d > maxDelay {
			return maxDelay
		}
		return d
	}
}

// JitteredBackoff applies full jitter to b: the delay is uniform in
// [0, b(attempt)].
func JitteredBackoff(b Backoff) Backoff {
	return func(attempt int) time.Duration {
		return time.Duration(rand.Float64() * float64(b(attempt))) //nolint:gosec // jitter does not need crypto rand
	}
}

// Retry returns middleware that retries failed before and after calls up
// to attempts times in total. Handler and finally calls run once. Context
// errors are never retried. Each retry is added as a weave.retry event to
// the span in ctx, if any.
func Retry(logger *slog.Logger, attempts int, backoff Backoff) Middleware {
	return func(ctx context.Context, c Call, next Handler) error {
		if attempts <= 1 || (c.Phase != PhaseBefore && c.Phase != PhaseAfter) {
			return next(ctx)
		}

		var err error
		for attempt := 1; ; attempt++ {
			err = next(ctx)
			if err == nil || attempt >= attempts ||
				errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}

			delay := time.Duration(0)
			if backoff != nil {
				delay = backoff(attempt)
			}
			logger.Warn("call failed, retrying",
				slog.String("call", c.Name()),
				slog.Int("attempt", attempt),
				slog.Duration("delay", delay),
				slog.String("error", err.Error()),
			)

			trace.SpanFromContext(ctx).AddEvent("weave.retry", trace.WithAttributes(
				attribute.Int("weave.attempt", attempt),
				attribute.String("weave.error", err.Error()),
			))

			t := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				t.Stop()
				return errors.Join(err, ctx.Err())
			case <-t.C:
			}
		}
	}
}
