// Package engine compiles and runs woven chains. It is the reference
// execution engine for the steps a policy weaves: it constructs
// middleware instances, binds produced values by type, runs finally
// calls and releases scope-bound instances on every exit path, and stops
// a chain when a continuation check says so.
//
// # Building an Engine
//
//	eng := engine.New(
//	    engine.WithLogger(logger),
//	    engine.WithExtension(myExtension),
//	    engine.WithMiddleware(myMiddleware),
//	    engine.WithCallTimeout(5*time.Second),
//	)
//
// # Running a Chain
//
//	p, err := eng.Compile(placeOrder)
//	if err != nil { ... }
//	res, err := p.Run(ctx, OrderPlaced{ID: "42"})
//	if res.Stopped { ... }
//
// Compile validates the woven steps once: every instance-based call must
// follow the construction of its middleware and every call taking a
// message must accept the chain's input type. A Pipeline is safe for
// concurrent use; each Run keeps its own instances and values.
//
// # Call Middleware
//
// Every lifecycle call and the handler run through the engine's
// middleware stack: recover → tracing → metrics → logging → annotate →
// timeout → custom middleware.
//
// # Options
//
//   - [WithLogger]: set the logger
//   - [WithExtension]: register an execution extension
//   - [WithMiddleware]: add a call middleware
//   - [WithCallTimeout]: bound every call
//   - [WithTracerProvider]: set the OpenTelemetry tracer provider
//   - [WithMeterProvider]: set the OpenTelemetry meter provider
//   - [WithMetricFactory]: set the metrics factory of the built-in metrics extension
package engine
