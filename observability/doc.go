// Package observability provides a metrics extension for weave. The
// MetricsExtension implements ext hooks to record counters for middleware
// registration, chain weaving and chain execution.
//
// For per-call tracing and metrics, see the middleware package:
// middleware.Tracing() and middleware.Metrics().
package observability
