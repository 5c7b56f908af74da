package ext

import (
	"context"
	"log/slog"
	"time"

	"github.com/xraph/weave/chain"
	"github.com/xraph/weave/registration"
	"github.com/xraph/weave/step"
)

// Named entry types pair a hook implementation with the extension name
// captured at registration time.
type middlewareRegisteredEntry struct {
	name string
	hook MiddlewareRegistered
}

type chainWovenEntry struct {
	name string
	hook ChainWoven
}

type weaveFailedEntry struct {
	name string
	hook WeaveFailed
}

type chainExecutedEntry struct {
	name string
	hook ChainExecuted
}

type chainStoppedEntry struct {
	name string
	hook ChainStopped
}

type chainFailedEntry struct {
	name string
	hook ChainFailed
}

// Registry holds registered extensions and dispatches events to them. It
// type-caches extensions at registration time so emit calls iterate only
// over extensions that implement the relevant hook. Register must not be
// called concurrently with the emitters.
type Registry struct {
	extensions []Extension
	logger     *slog.Logger

	middlewareRegistered []middlewareRegisteredEntry
	chainWoven           []chainWovenEntry
	weaveFailed          []weaveFailedEntry
	chainExecuted        []chainExecutedEntry
	chainStopped         []chainStoppedEntry
	chainFailed          []chainFailedEntry
}

// NewRegistry creates an extension registry with the given logger.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{logger: logger}
}

// Register adds an extension and type-asserts it into all applicable
// hook caches. Extensions are notified in registration order.
func (r *Registry) Register(e Extension) {
	r.extensions = append(r.extensions, e)
	name := e.Name()

	if h, ok := e.(MiddlewareRegistered); ok {
		r.middlewareRegistered = append(r.middlewareRegistered, middlewareRegisteredEntry{name, h})
	}
	if h, ok := e.(ChainWoven); ok {
		r.chainWoven = append(r.chainWoven, chainWovenEntry{name, h})
	}
	if h, ok := e.(WeaveFailed); ok {
		r.weaveFailed = append(r.weaveFailed, weaveFailedEntry{name, h})
	}
	if h, ok := e.(ChainExecuted); ok {
		r.chainExecuted = append(r.chainExecuted, chainExecutedEntry{name, h})
	}
	if h, ok := e.(ChainStopped); ok {
		r.chainStopped = append(r.chainStopped, chainStoppedEntry{name, h})
	}
	if h, ok := e.(ChainFailed); ok {
		r.chainFailed = append(r.chainFailed, chainFailedEntry{name, h})
	}
}

// Extensions returns all registered extensions.
func (r *Registry) Extensions() []Extension { return r.extensions }

// ──────────────────────────────────────────────────
// Weaving event emitters
// ──────────────────────────────────────────────────

// EmitMiddlewareRegistered notifies all extensions that implement MiddlewareRegistered.
func (r *Registry) EmitMiddlewareRegistered(ctx context.Context, reg *registration.Registration) {
	for _, e := range r.middlewareRegistered {
		if err := e.hook.OnMiddlewareRegistered(ctx, reg); err != nil {
			r.logHookError("OnMiddlewareRegistered", e.name, err)
		}
	}
}

// EmitChainWoven notifies all extensions that implement ChainWoven.
func (r *Registry) EmitChainWoven(ctx context.Context, c chain.Chain, pre, post []step.Step, elapsed time.Duration) {
	for _, e := range r.chainWoven {
		if err := e.hook.OnChainWoven(ctx, c, pre, post, elapsed); err != nil {
			r.logHookError("OnChainWoven", e.name, err)
		}
	}
}

// EmitWeaveFailed notifies all extensions that implement WeaveFailed.
func (r *Registry) EmitWeaveFailed(ctx context.Context, c chain.Chain, weaveErr error) {
	for _, e := range r.weaveFailed {
		if err := e.hook.OnWeaveFailed(ctx, c, weaveErr); err != nil {
			r.logHookError("OnWeaveFailed", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Execution event emitters
// ──────────────────────────────────────────────────

// EmitChainExecuted notifies all extensions that implement ChainExecuted.
func (r *Registry) EmitChainExecuted(ctx context.Context, c chain.Chain, elapsed time.Duration) {
	for _, e := range r.chainExecuted {
		if err := e.hook.OnChainExecuted(ctx, c, elapsed); err != nil {
			r.logHookError("OnChainExecuted", e.name, err)
		}
	}
}

// EmitChainStopped notifies all extensions that implement ChainStopped.
func (r *Registry) EmitChainStopped(ctx context.Context, c chain.Chain, at step.Step) {
	for _, e := range r.chainStopped {
		if err := e.hook.OnChainStopped(ctx, c, at); err != nil {
			r.logHookError("OnChainStopped", e.name, err)
		}
	}
}

// EmitChainFailed notifies all extensions that implement ChainFailed.
func (r *Registry) EmitChainFailed(ctx context.Context, c chain.Chain, runErr error) {
	for _, e := range r.chainFailed {
		if err := e.hook.OnChainFailed(ctx, c, runErr); err != nil {
			r.logHookError("OnChainFailed", e.name, err)
		}
	}
}

// logHookError logs a warning when a hook returns an error. Hook errors
// are never propagated.
func (r *Registry) logHookError(hook, extName string, err error) {
	r.logger.Warn("extension hook error",
		slog.String("hook", hook),
		slog.String("extension", extName),
		slog.String("error", err.Error()),
	)
}
