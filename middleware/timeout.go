package middleware

import (
	"context"
	"log/slog"
	"time"
)

// Timeout returns middleware that bounds each call to d. A non-positive
// d disables the deadline. The call should return
// context.DeadlineExceeded once the deadline passes.
func Timeout(logger *slog.Logger, d time.Duration) Middleware {
	return func(ctx context.Context, c Call, next Handler) error {
		if d > 0 {
			logger.Debug("call timeout set",
				slog.String("call", c.Name()),
				slog.Duration("timeout", d),
			)
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, d)
			defer cancel()
		}
		return next(ctx)
	}
}
