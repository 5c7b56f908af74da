// Package step defines the artifacts produced by weaving. A step is pure
// data describing work an execution engine must perform around a chain's
// handler: construct a middleware instance, invoke a lifecycle method,
// protect a region with cleanup calls, check a continuation signal, or
// mark a no-op placeholder.
//
// Steps are created fresh for every weaving pass and are owned by the
// chain they were inserted into. They are never shared across chains.
package step

import (
	"context"
	"reflect"

	"github.com/xraph/weave/id"
)

// Kind identifies the concrete type of a Step.
type Kind int

const (
	// KindConstruct constructs a middleware instance.
	KindConstruct Kind = iota + 1
	// KindInvoke invokes a lifecycle method.
	KindInvoke
	// KindProtected runs cleanup calls on every exit path of a region.
	KindProtected
	// KindContinuation may stop the chain based on a produced value.
	KindContinuation
	// KindComment is a no-op placeholder.
	KindComment
)

func (k Kind) String() string {
	switch k {
	case KindConstruct:
		return "construct"
	case KindInvoke:
		return "invoke"
	case KindProtected:
		return "protected"
	case KindContinuation:
		return "continuation"
	case KindComment:
		return "comment"
	default:
		return "unknown"
	}
}

// Step is one unit of work inserted into a chain.
type Step interface {
	// ID returns the step's unique identifier.
	ID() id.StepID

	// Kind returns the step's kind.
	Kind() Kind

	// String returns a one-line description.
	String() string
}

// Owner identifies the middleware type a step belongs to.
type Owner struct {
	// Name is the qualified type name.
	Name string

	// Type is the middleware type descriptor.
	Type reflect.Type

	// Static reports that methods run on the zero value of Type and no
	// instance is constructed.
	Static bool
}

// NewFunc constructs one middleware instance.
type NewFunc func(ctx context.Context) (any, error)

// Signal is a value a lifecycle method may produce to tell the execution
// engine whether the chain continues.
type Signal int

const (
	// Continue lets the chain proceed.
	Continue Signal = iota
	// Stop ends the chain early. Cleanup still runs.
	Stop
)

func (s Signal) String() string {
	if s == Stop {
		return "stop"
	}
	return "continue"
}
