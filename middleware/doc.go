// Package middleware provides composable interceptors for executing woven
// chains.
//
// A [Middleware] wraps every lifecycle call and handler invocation the
// engine runs. Middleware are composed into a chain using [Chain] and are
// applied right-to-left: the first middleware in the slice is the
// outermost wrapper.
//
//	// logging → recover → call
//	chain := middleware.Chain(middleware.Logging(logger), middleware.Recover(logger))
//
// # Built-in Middleware
//
//   - [Logging]: logs chain, middleware, method, duration and outcome of each call
//   - [Recover]: catches panics and converts them to errors
//   - [Timeout]: cancels the call context after a fixed duration
//   - [Tracing]: wraps each call in an OpenTelemetry span
//   - [Metrics]: records per-call duration and outcome counters
//   - [Annotate]: makes the current [Call] available through the context
//   - [Retry]: retries failed before and after calls with a [Backoff]
//
// # Writing Custom Middleware
//
//	func MyMiddleware() middleware.Middleware {
//	    return func(ctx context.Context, c middleware.Call, next middleware.Handler) error {
//	        // pre-processing
//	        err := next(ctx)
//	        // post-processing
//	        return err
//	    }
//	}
//
// Middleware MUST call next to continue unless intentionally
// short-circuiting.
package middleware
