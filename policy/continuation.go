package policy

import (
	"reflect"
	"slices"

	"github.com/xraph/weave/step"
)

// ContinuationStrategy lets an execution engine stop a chain early based
// on what a before call produced. Find returns the check to place right
// after call, or false when the call needs none.
type ContinuationStrategy interface {
	Find(call *step.Invoke) (*step.Continuation, bool)
}

// ContinuationFunc adapts a function to ContinuationStrategy.
type ContinuationFunc func(call *step.Invoke) (*step.Continuation, bool)

// Find implements ContinuationStrategy.
func (f ContinuationFunc) Find(call *step.Invoke) (*step.Continuation, bool) { return f(call) }

// Rules are the execution engine's weaving rules.
type Rules struct {
	// Continuations are tried in order; the first match wins.
	Continuations []ContinuationStrategy
}

// DefaultRules returns rules that stop a chain on a step.Stop signal or a
// non-nil error value produced by a before call.
func DefaultRules() Rules {
	return Rules{Continuations: []ContinuationStrategy{HandlerContinuation(), ErrorResult()}}
}

func (r Rules) continuationFor(call *step.Invoke) (*step.Continuation, bool) {
	for _, s := range r.Continuations {
		if c, ok := s.Find(call); ok {
			return c, true
		}
	}
	return nil, false
}

// StopWhen returns a strategy matching calls that produce a T and
// stopping the chain when stop reports true for the produced value.
func StopWhen[T any](stop func(T) bool) ContinuationStrategy {
	want := reflect.TypeFor[T]()
	return ContinuationFunc(func(call *step.Invoke) (*step.Continuation, bool) {
		if !slices.Contains(call.Creates(), want) {
			return nil, false
		}
		return step.NewContinuation(call, want, func(v any) bool {
			t, ok := v.(T)
			return ok && stop(t)
		}), true
	})
}

// HandlerContinuation stops the chain when a before call produces
// step.Stop.
func HandlerContinuation() ContinuationStrategy {
	return StopWhen(func(s step.Signal) bool { return s == step.Stop })
}

// ErrorResult stops the chain when a before call produces a non-nil
// error as a value.
func ErrorResult() ContinuationStrategy {
	want := reflect.TypeFor[error]()
	return ContinuationFunc(func(call *step.Invoke) (*step.Continuation, bool) {
		if !slices.Contains(call.Creates(), want) {
			return nil, false
		}
		return step.NewContinuation(call, want, func(v any) bool { return v != nil }), true
	})
}
