package step

import (
	"fmt"
	"slices"
	"strings"
)

// List is an ordered, mutable sequence of steps. It is not safe for
// concurrent use; a chain's lists are only mutated by its weaving pass.
type List struct {
	steps []Step
}

// NewList creates a list holding steps.
func NewList(steps ...Step) *List {
	return &List{steps: slices.Clone(steps)}
}

// Insert inserts steps at position i, preserving their relative order.
// It panics if i is out of range.
func (l *List) Insert(i int, steps ...Step) {
	l.steps = slices.Insert(l.steps, i, steps...)
}

// Append adds steps to the end of the list.
func (l *List) Append(steps ...Step) {
	l.steps = append(l.steps, steps...)
}

// Steps returns a copy of the list's steps.
func (l *List) Steps() []Step {
	return slices.Clone(l.steps)
}

// Len returns the number of top-level steps.
func (l *List) Len() int { return len(l.steps) }

// Walk calls fn for every step in steps, depth-first. A protected region
// is visited before its body, and its body before its cleanup steps.
func Walk(steps []Step, fn func(Step)) {
	for _, s := range steps {
		fn(s)
		if p, ok := s.(*Protected); ok {
			if p.Body != nil {
				Walk([]Step{p.Body}, fn)
			}
			Walk(p.Cleanup, fn)
		}
	}
}

// Kinds returns the kind of each top-level step.
func Kinds(steps []Step) []Kind {
	out := make([]Kind, len(steps))
	for i, s := range steps {
		out[i] = s.Kind()
	}
	return out
}

// Describe renders steps one per line, indenting protected regions.
func Describe(steps []Step) string {
	var b strings.Builder
	describe(&b, steps, 0)
	return b.String()
}

func describe(b *strings.Builder, steps []Step, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, s := range steps {
		fmt.Fprintf(b, "%s%s\n", indent, s)
		p, ok := s.(*Protected)
		if !ok {
			continue
		}
		if p.Body != nil {
			describe(b, []Step{p.Body}, depth+1)
		}
		if len(p.Cleanup) > 0 {
			fmt.Fprintf(b, "%s  finally:\n", indent)
			describe(b, p.Cleanup, depth+2)
		}
	}
}
