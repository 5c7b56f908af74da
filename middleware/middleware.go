package middleware

import (
	"context"

	"github.com/xraph/weave/id"
)

// Phase is the position of a call within a chain run.
type Phase string

const (
	PhaseBefore  Phase = "before"
	PhaseHandler Phase = "handler"
	PhaseAfter   Phase = "after"
	PhaseFinally Phase = "finally"
)

// Call describes one invocation the engine is about to run.
type Call struct {
	// Chain is the name of the running chain.
	Chain string

	// StepID identifies the invocation step. It is the nil ID for the
	// chain's handler.
	StepID id.StepID

	// Middleware is the qualified name of the middleware type, empty for
	// the handler.
	Middleware string

	// Method is the lifecycle method name, or "handle" for the handler.
	Method string

	// Phase is where the call runs.
	Phase Phase
}

// Name returns "Middleware.Method", or the method alone for the handler.
func (c Call) Name() string {
	if c.Middleware == "" {
		return c.Method
	}
	return c.Middleware + "." + c.Method
}

// Handler is the terminal function that performs the call.
type Handler func(ctx context.Context) error

// Middleware wraps a Handler with cross-cutting logic. Middleware MUST
// call next to continue the chain (unless short-circuiting on error).
type Middleware func(ctx context.Context, c Call, next Handler) error

// Chain composes multiple middleware into a single Middleware.
// Middleware are applied right-to-left: the first middleware in the
// list is the outermost wrapper.
//
// Example: Chain(logging, recover, annotate) executes as:
//
//	logging → recover → annotate → call
func Chain(mws ...Middleware) Middleware {
	return func(ctx context.Context, c Call, next Handler) error {
		h := next
		for i := len(mws) - 1; i >= 0; i-- {
			mw := mws[i]
			prev := h
			h = func(ctx context.Context) error {
				return mw(ctx, c, prev)
			}
		}
		return h(ctx)
	}
}
