// Package registration validates middleware types and records how they
// apply to chains.
//
// A middleware type opts in by implementing [Describer], which returns
// its lifecycle method table, and/or the capability interfaces
// [BeforeCapable], [AfterCapable] and [FinallyCapable]:
//
//	t := registration.TypeOf[*Stopwatch](
//	    registration.Constructor(NewStopwatch),
//	)
//	r, err := registration.New(t, lifecycle.DefaultNames(),
//	    registration.WithFilter(registration.ByName("place-order")),
//	)
//
// New rejects a type that is not exported, an instance-based type without
// exactly one constructor, a type without lifecycle methods, and a method
// classified into two roles.
package registration

import (
	"fmt"

	"github.com/xraph/weave"
	"github.com/xraph/weave/chain"
	"github.com/xraph/weave/id"
	"github.com/xraph/weave/lifecycle"
	"github.com/xraph/weave/step"
	"github.com/xraph/weave/typeinfo"
)

// Filter decides whether a registration applies to a chain.
type Filter func(c chain.Chain) bool

// Registration is one validated middleware type.
type Registration struct {
	ID   id.RegistrationID
	Type Type

	// Filter restricts the chains the middleware applies to. Nil applies
	// to every chain.
	Filter Filter

	// MatchByMessageType applies each method only to chains whose input
	// type is assignable to the method's message type.
	MatchByMessageType bool

	Before  []lifecycle.Method
	After   []lifecycle.Method
	Finally []lifecycle.Method
}

// Option configures a Registration.
type Option func(*Registration)

// WithFilter restricts the registration to chains accepted by f.
func WithFilter(f Filter) Option {
	return func(r *Registration) { r.Filter = f }
}

// MatchByMessageType enables message-type matching.
func MatchByMessageType() Option {
	return func(r *Registration) { r.MatchByMessageType = true }
}

// New validates t and classifies its methods with names.
func New(t Type, names lifecycle.NameSet, opts ...Option) (*Registration, error) {
	if !typeinfo.Exported(t.GoType) {
		return nil, weave.NewInvalidMiddleware(t.Name, "type is not exported")
	}
	if !t.Static && len(t.Constructors) != 1 {
		return nil, weave.NewInvalidMiddleware(t.Name,
			fmt.Sprintf("instance-based middleware must have exactly one constructor, found %d", len(t.Constructors)))
	}
	for _, m := range t.Methods {
		if m.Call == nil && !m.Ignore {
			return nil, weave.NewInvalidMethod(t.Name, m.Name, "method has no call")
		}
	}

	c, err := lifecycle.ClassifyAll(t.Name, t.Methods, names)
	if err != nil {
		return nil, err
	}
	if c.Len() == 0 {
		return nil, weave.NewInvalidMiddleware(t.Name, "no before, after or finally methods")
	}

	r := &Registration{
		ID:      id.NewRegistrationID(),
		Type:    t,
		Before:  c.Before,
		After:   c.After,
		Finally: c.Finally,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Applies reports whether the registration's filter accepts c.
func (r *Registration) Applies(c chain.Chain) bool {
	return r.Filter == nil || r.Filter(c)
}

// Befores returns the before methods that apply to c.
func (r *Registration) Befores(c chain.Chain) []lifecycle.Method { return r.matching(c, r.Before) }

// Afters returns the after methods that apply to c.
func (r *Registration) Afters(c chain.Chain) []lifecycle.Method { return r.matching(c, r.After) }

// Finals returns the finally methods that apply to c.
func (r *Registration) Finals(c chain.Chain) []lifecycle.Method { return r.matching(c, r.Finally) }

func (r *Registration) matching(c chain.Chain, methods []lifecycle.Method) []lifecycle.Method {
	if !r.MatchByMessageType {
		return methods
	}
	in := c.InputType()
	var out []lifecycle.Method
	for _, m := range methods {
		if m.MessageType != nil && typeinfo.AssignableTo(in, m.MessageType) {
			out = append(out, m)
		}
	}
	return out
}

// Owner returns the step owner for the registered type.
func (r *Registration) Owner() step.Owner { return r.Type.Owner() }

// Constructor returns the type's constructor, or nil for static types.
func (r *Registration) Constructor() step.NewFunc {
	if r.Type.Static || len(r.Type.Constructors) == 0 {
		return nil
	}
	return r.Type.Constructors[0]
}

func (r *Registration) String() string {
	return fmt.Sprintf("%s (before=%d after=%d finally=%d)", r.Type.Name, len(r.Before), len(r.After), len(r.Finally))
}
