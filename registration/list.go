package registration

import (
	"slices"

	"github.com/xraph/weave/chain"
	"github.com/xraph/weave/typeinfo"
)

// List is an immutable, ordered set of registrations. Registration order
// is significant: post-steps are woven in reverse order.
type List struct {
	regs []*Registration
}

// NewList creates a list holding regs in order.
func NewList(regs ...*Registration) List {
	return List{regs: slices.Clone(regs)}
}

// All returns the registrations in order.
func (l List) All() []*Registration { return slices.Clone(l.regs) }

// Len returns the number of registrations.
func (l List) Len() int { return len(l.regs) }

// ByName returns a filter accepting chains with one of the given names.
func ByName(names ...string) Filter {
	return func(c chain.Chain) bool { return slices.Contains(names, c.Name()) }
}

// InputIs returns a filter accepting chains whose input type is
// assignable to M.
func InputIs[M any]() Filter {
	want := typeinfo.Of[M]()
	return func(c chain.Chain) bool { return typeinfo.AssignableTo(c.InputType(), want) }
}
