// Package chain defines the processing chains middleware is woven into.
//
// A [Chain] exposes an optional input type and two mutable step lists:
// pre-steps run before the chain's handler, post-steps after it. [Handler]
// is the concrete chain built for one message handler, and [Registry]
// collects them into the batch handed to a policy.
package chain

import (
	"context"
	"reflect"

	"github.com/xraph/weave/id"
	"github.com/xraph/weave/lifecycle"
	"github.com/xraph/weave/step"
)

// Chain is one message processing pipeline.
type Chain interface {
	// Name returns the chain's unique name.
	Name() string

	// InputType returns the message type the chain handles, or nil.
	InputType() reflect.Type

	// PreSteps returns the steps that run before the handler.
	PreSteps() *step.List

	// PostSteps returns the steps that run after the handler.
	PostSteps() *step.List
}

// HandlerFunc is a chain's primary handling logic. vals resolves values
// produced by the chain's before calls. Returned values are bound for
// the post-steps, lined up with the handler's declared Produces.
type HandlerFunc func(ctx context.Context, msg any, vals lifecycle.Values) ([]any, error)

// Handler is the concrete Chain for one message handler.
type Handler struct {
	ID id.ChainID

	// Handle is the primary handling logic.
	Handle HandlerFunc

	// Produces lists the declared types of the values Handle returns.
	Produces []reflect.Type

	name  string
	input reflect.Type
	pre   *step.List
	post  *step.List
}

// Compile-time interface check.
var _ Chain = (*Handler)(nil)

// New creates a chain named name handling messages of type input (nil
// for none).
func New(name string, input reflect.Type, handle HandlerFunc) *Handler {
	return &Handler{
		ID:     id.NewChainID(),
		Handle: handle,
		name:   name,
		input:  input,
		pre:    step.NewList(),
		post:   step.NewList(),
	}
}

// Name implements Chain.
func (h *Handler) Name() string { return h.name }

// InputType implements Chain.
func (h *Handler) InputType() reflect.Type { return h.input }

// PreSteps implements Chain.
func (h *Handler) PreSteps() *step.List { return h.pre }

// PostSteps implements Chain.
func (h *Handler) PostSteps() *step.List { return h.post }

func (h *Handler) String() string {
	return step.Describe(h.PreSteps().Steps()) + "handle " + h.name + "\n" + step.Describe(h.PostSteps().Steps())
}
