package policy

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/xraph/weave/chain"
	"github.com/xraph/weave/id"
	"github.com/xraph/weave/lifecycle"
	"github.com/xraph/weave/registration"
	"github.com/xraph/weave/step"
)

// wrappedComment is the placeholder body of a finally-only region.
const wrappedComment = "Wrapped by middleware"

// Plan holds the steps weaving computed for one chain.
type Plan struct {
	ID    id.PlanID
	Chain chain.Chain

	// Pre is inserted at the front of the chain's pre-steps.
	Pre []step.Step

	// Post is appended to the chain's post-steps.
	Post []step.Step
}

// ApplyTo inserts the plan's steps into c.
func (p *Plan) ApplyTo(c chain.Chain) {
	c.PreSteps().Insert(0, p.Pre...)
	c.PostSteps().Append(p.Post...)
}

// Len returns the number of top-level steps in the plan.
func (p *Plan) Len() int { return len(p.Pre) + len(p.Post) }

func (p *Plan) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "plan %s for %s\n", p.ID, p.Chain.Name())
	b.WriteString("pre:\n")
	b.WriteString(step.Describe(p.Pre))
	b.WriteString("post:\n")
	b.WriteString(step.Describe(p.Post))
	return b.String()
}

// Weave computes the steps regs contribute to c. It does not modify c;
// apply the returned plan with [Plan.ApplyTo]. Weaving a chain twice
// contributes every step twice.
func Weave(c chain.Chain, regs registration.List, rules Rules) (*Plan, error) {
	p := &Plan{ID: id.NewPlanID(), Chain: c}
	all := regs.All()

	for _, r := range all {
		if !r.Applies(c) {
			continue
		}
		steps, err := beforeSteps(c, r, rules)
		if err != nil {
			return nil, err
		}
		p.Pre = append(p.Pre, steps...)
	}

	if err := checkShadowing(c.InputType(), p.Pre); err != nil {
		return nil, err
	}

	constructed := constructedTypes(c.PreSteps().Steps())
	for t := range constructedTypes(p.Pre) {
		constructed[t] = true
	}

	for i := len(all) - 1; i >= 0; i-- {
		r := all[i]
		if !r.Applies(c) {
			continue
		}
		afters := r.Afters(c)
		if len(afters) == 0 {
			continue
		}
		if !r.Type.Static && !constructed[r.Type.GoType] {
			p.Post = append(p.Post, newConstruct(r))
			constructed[r.Type.GoType] = true
		}
		for _, m := range afters {
			p.Post = append(p.Post, step.NewInvoke(r.Owner(), m))
		}
	}

	return p, nil
}

// beforeSteps builds the pre-steps of one registration.
func beforeSteps(c chain.Chain, r *registration.Registration, rules Rules) ([]step.Step, error) {
	befores, finals := r.Befores(c), r.Finals(c)
	owner := r.Owner()

	var steps []step.Step
	switch {
	case len(r.Before) == 0 && len(finals) > 0:
		steps = append(steps, step.NewProtected(step.NewComment(wrappedComment), cleanup(r, finals)...))
	case len(befores) == 0:
		// Declared befores that do not apply to c take the finals with them.
		return nil, nil
	}

	for _, m := range befores {
		call := step.NewInvoke(owner, m)
		if err := CheckDuplicateResults(call); err != nil {
			return nil, err
		}

		if len(finals) > 0 {
			steps = append(steps, step.NewProtected(call, cleanup(r, finals)...))
			continue
		}

		steps = append(steps, call)
		if cont, ok := rules.continuationFor(call); ok {
			steps = append(steps, cont)
		}
	}

	if len(steps) > 0 && !r.Type.Static {
		steps = append([]step.Step{newConstruct(r)}, steps...)
	}
	return steps, nil
}

func cleanup(r *registration.Registration, finals []lifecycle.Method) []step.Step {
	steps := make([]step.Step, len(finals))
	for i, m := range finals {
		steps[i] = step.NewInvoke(r.Owner(), m)
	}
	return steps
}

func newConstruct(r *registration.Registration) *step.Construct {
	return step.NewConstruct(r.Owner(), r.Constructor(), r.Type.Releasable)
}

// constructedTypes returns the middleware types constructed by steps.
func constructedTypes(steps []step.Step) map[reflect.Type]bool {
	types := make(map[reflect.Type]bool)
	step.Walk(steps, func(s step.Step) {
		if c, ok := s.(*step.Construct); ok {
			types[c.Owner.Type] = true
		}
	})
	return types
}
