package middleware

import (
	"context"
	"log/slog"
	"time"
)

// Logging returns middleware that logs every call at Debug and its
// failure. A failing finally call is logged at Warn: its error is joined
// to whatever ended the protected region, which is logged by the engine.
func Logging(logger *slog.Logger) Middleware {
	return func(ctx context.Context, c Call, next Handler) error {
		attrs := []any{
			slog.String("chain", c.Chain),
			slog.String("phase", string(c.Phase)),
			slog.String("call", c.Name()),
		}
		if c.Middleware != "" {
			attrs = append(attrs, slog.String("step_id", c.StepID.String()))
		}
		log := logger.With(attrs...)

		log.Debug("call started")
		start := time.Now()
		err := next(ctx)
		elapsed := slog.Duration("elapsed", time.Since(start))

		switch {
		case err == nil:
			log.Debug("call completed", elapsed)
		case c.Phase == PhaseFinally:
			log.Warn("cleanup call failed", elapsed, slog.String("error", err.Error()))
		default:
			log.Error("call failed", elapsed, slog.String("error", err.Error()))
		}
		return err
	}
}
