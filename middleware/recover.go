package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/xraph/weave"
)

// Recover returns middleware that turns a panic in a call into an error
// matching weave.ErrCallPanicked, so protected regions still run their
// cleanup and scope-bound instances are still released.
func Recover(logger *slog.Logger) Middleware {
	return func(ctx context.Context, c Call, next Handler) (err error) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			logger.Error("call panicked",
				slog.String("chain", c.Chain),
				slog.String("phase", string(c.Phase)),
				slog.String("call", c.Name()),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
			)
			err = fmt.Errorf("%w: %s in %s: %v", weave.ErrCallPanicked, c.Name(), c.Phase, r)
		}()
		return next(ctx)
	}
}
