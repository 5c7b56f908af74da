// Package ext defines the extension system for weave.
//
// Extensions are notified of weaving and execution events and can react
// to them by recording metrics, writing audit logs or tracing. Each hook
// is a separate interface so extensions opt in only to the events they
// care about.
//
// # Implementing an Extension
//
//	type MyExtension struct{}
//
//	func (e *MyExtension) Name() string { return "my-extension" }
//
//	// Opt in to specific hooks by implementing their interfaces.
//	func (e *MyExtension) OnChainWoven(ctx context.Context, c chain.Chain, pre, post []step.Step, elapsed time.Duration) error {
//	    log.Printf("chain %s: %d steps woven in %s", c.Name(), len(pre)+len(post), elapsed)
//	    return nil
//	}
//
// # Weaving Hooks
//
//   - [MiddlewareRegistered]: a middleware type passed validation
//   - [ChainWoven]: steps were inserted into a chain
//   - [WeaveFailed]: a chain was rejected and left untouched
//
// # Execution Hooks
//
//   - [ChainExecuted]: a woven chain ran to completion
//   - [ChainStopped]: a continuation stopped a chain early
//   - [ChainFailed]: a woven chain returned an error
//
// A policy may weave chains concurrently, so hooks must be safe for
// concurrent use. The [Registry] fans out each event to all registered
// extensions that implement the corresponding hook interface.
package ext
