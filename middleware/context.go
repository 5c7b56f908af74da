package middleware

import "context"

type callKey struct{}

// Annotate returns middleware that stores the current Call in the
// context, so lifecycle methods can tell which call they serve.
func Annotate() Middleware {
	return func(ctx context.Context, c Call, next Handler) error {
		return next(context.WithValue(ctx, callKey{}, c))
	}
}

// CallFromContext returns the Call stored by Annotate.
func CallFromContext(ctx context.Context) (Call, bool) {
	c, ok := ctx.Value(callKey{}).(Call)
	return c, ok
}
