package step

import (
	"fmt"
	"reflect"

	"github.com/xraph/weave/id"
	"github.com/xraph/weave/lifecycle"
	"github.com/xraph/weave/typeinfo"
)

// Compile-time interface checks.
var (
	_ Step = (*Construct)(nil)
	_ Step = (*Invoke)(nil)
	_ Step = (*Protected)(nil)
	_ Step = (*Continuation)(nil)
	_ Step = (*Comment)(nil)
)

// ──────────────────────────────────────────────────
// Construct
// ──────────────────────────────────────────────────

// Construct builds the instance of an instance-based middleware. A
// scope-bound construction must be released on every exit path of the
// remainder of the chain.
type Construct struct {
	id         id.StepID
	Owner      Owner
	New        NewFunc
	ScopeBound bool
}

// NewConstruct creates a construction step.
func NewConstruct(owner Owner, fn NewFunc, scopeBound bool) *Construct {
	return &Construct{id: id.NewStepID(), Owner: owner, New: fn, ScopeBound: scopeBound}
}

// ID implements Step.
func (s *Construct) ID() id.StepID { return s.id }

// Kind implements Step.
func (*Construct) Kind() Kind { return KindConstruct }

func (s *Construct) String() string {
	if s.ScopeBound {
		return fmt.Sprintf("construct %s (scope-bound)", s.Owner.Name)
	}
	return "construct " + s.Owner.Name
}

// ──────────────────────────────────────────────────
// Invoke
// ──────────────────────────────────────────────────

// Invoke calls one lifecycle method of a middleware type.
type Invoke struct {
	id     id.StepID
	Owner  Owner
	Method lifecycle.Method
}

// NewInvoke creates an invocation step.
func NewInvoke(owner Owner, m lifecycle.Method) *Invoke {
	return &Invoke{id: id.NewStepID(), Owner: owner, Method: m}
}

// ID implements Step.
func (s *Invoke) ID() id.StepID { return s.id }

// Kind implements Step.
func (*Invoke) Kind() Kind { return KindInvoke }

// Creates returns the declared types of the values the call produces.
func (s *Invoke) Creates() []reflect.Type { return s.Method.Produces }

func (s *Invoke) String() string {
	return fmt.Sprintf("invoke %s.%s", s.Owner.Name, s.Method)
}

// ──────────────────────────────────────────────────
// Protected
// ──────────────────────────────────────────────────

// Protected runs Body and then the rest of the chain, and runs every
// Cleanup step on the way out whatever the outcome.
type Protected struct {
	id      id.StepID
	Body    Step
	Cleanup []Step
}

// NewProtected creates a protected region around body.
func NewProtected(body Step, cleanup ...Step) *Protected {
	return &Protected{id: id.NewStepID(), Body: body, Cleanup: cleanup}
}

// ID implements Step.
func (s *Protected) ID() id.StepID { return s.id }

// Kind implements Step.
func (*Protected) Kind() Kind { return KindProtected }

func (s *Protected) String() string {
	return fmt.Sprintf("protected (%d cleanup)", len(s.Cleanup))
}

// ──────────────────────────────────────────────────
// Continuation
// ──────────────────────────────────────────────────

// Continuation inspects the value of type On produced by After and stops
// the chain when ShouldStop reports true.
type Continuation struct {
	id         id.StepID
	After      *Invoke
	On         reflect.Type
	ShouldStop func(v any) bool
}

// NewContinuation creates a continuation check for the value of type on
// produced by after.
func NewContinuation(after *Invoke, on reflect.Type, shouldStop func(v any) bool) *Continuation {
	return &Continuation{id: id.NewStepID(), After: after, On: on, ShouldStop: shouldStop}
}

// ID implements Step.
func (s *Continuation) ID() id.StepID { return s.id }

// Kind implements Step.
func (*Continuation) Kind() Kind { return KindContinuation }

func (s *Continuation) String() string {
	return fmt.Sprintf("continuation on %s from %s.%s", typeinfo.Name(s.On), s.After.Owner.Name, s.After.Method.Name)
}

// ──────────────────────────────────────────────────
// Comment
// ──────────────────────────────────────────────────

// Comment is a no-op placeholder.
type Comment struct {
	id   id.StepID
	Text string
}

// NewComment creates a placeholder step.
func NewComment(text string) *Comment {
	return &Comment{id: id.NewStepID(), Text: text}
}

// ID implements Step.
func (s *Comment) ID() id.StepID { return s.id }

// Kind implements Step.
func (*Comment) Kind() Kind { return KindComment }

func (s *Comment) String() string { return "// " + s.Text }
