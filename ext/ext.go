package ext

import (
	"context"
	"time"

	"github.com/xraph/weave/chain"
	"github.com/xraph/weave/registration"
	"github.com/xraph/weave/step"
)

// Extension is the base interface all extensions must implement.
type Extension interface {
	// Name returns a unique human-readable name for the extension.
	Name() string
}

// ──────────────────────────────────────────────────
// Weaving hooks
// ──────────────────────────────────────────────────

// MiddlewareRegistered is called after a middleware type is validated and
// added to a policy.
type MiddlewareRegistered interface {
	OnMiddlewareRegistered(ctx context.Context, r *registration.Registration) error
}

// ChainWoven is called after pre and post were inserted into c.
type ChainWoven interface {
	OnChainWoven(ctx context.Context, c chain.Chain, pre, post []step.Step, elapsed time.Duration) error
}

// WeaveFailed is called when weaving c failed. The chain is unchanged.
type WeaveFailed interface {
	OnWeaveFailed(ctx context.Context, c chain.Chain, err error) error
}

// ──────────────────────────────────────────────────
// Execution hooks
// ──────────────────────────────────────────────────

// ChainExecuted is called after a woven chain ran to completion.
type ChainExecuted interface {
	OnChainExecuted(ctx context.Context, c chain.Chain, elapsed time.Duration) error
}

// ChainStopped is called when the continuation at step stopped a chain.
type ChainStopped interface {
	OnChainStopped(ctx context.Context, c chain.Chain, at step.Step) error
}

// ChainFailed is called when a woven chain returned an error.
type ChainFailed interface {
	OnChainFailed(ctx context.Context, c chain.Chain, err error) error
}
