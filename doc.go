// Package weave provides a middleware-chain composition engine for Go.
//
// Given a declared processing chain for a message type and an ordered set of
// registered middleware types, weave computes the steps that must run around
// the chain's primary handler: construction of middleware instances, before
// calls, after calls, and finally calls guaranteed to run on every exit path.
//
// Weave is structural. It never runs a step itself; it only produces the
// composed step sequence a separate execution engine compiles and runs. The
// engine package ships a reference implementation of such an engine.
//
// # Quick Start
//
//	p, err := policy.New(policy.WithLogger(logger))
//
//	_, err = p.AddType(registration.TypeOf[*Stopwatch](
//	    registration.Constructor(NewStopwatch),
//	))
//
//	err = p.Apply(ctx, chains)
//
// # Architecture
//
// The root package holds configuration, errors and identifiers. Each concern
// lives in its own package: lifecycle classifies methods into before, after
// and finally roles; registration validates middleware types; step defines
// the produced artifacts; chain defines the chain abstraction; policy weaves
// chains; engine runs woven chains.
//
// All entity IDs use TypeID: type-prefixed, K-sortable, UUIDv7-based
// identifiers.
package weave
