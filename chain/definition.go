package chain

import (
	"context"
	"fmt"
	"reflect"

	"github.com/xraph/weave"
	"github.com/xraph/weave/lifecycle"
)

// Definition is a typed handler definition for messages of type M.
type Definition[M any] struct {
	// Name is the unique identifier for this chain.
	Name string

	// Handler processes one message.
	Handler func(ctx context.Context, msg M) error
}

// NewDefinition creates a typed handler definition.
func NewDefinition[M any](name string, handler func(ctx context.Context, msg M) error) *Definition[M] {
	return &Definition[M]{
		Name:    name,
		Handler: handler,
	}
}

// Build creates the chain for def. The typed handler is wrapped in a
// closure that asserts the message to M before calling it.
func Build[M any](def *Definition[M]) *Handler {
	input := reflect.TypeFor[M]()
	return New(def.Name, input, func(ctx context.Context, msg any, _ lifecycle.Values) ([]any, error) {
		m, ok := msg.(M)
		if !ok && msg != nil {
			return nil, fmt.Errorf("chain %q: %w: want %s, got %T", def.Name, weave.ErrMessageMismatch, input, msg)
		}
		return nil, def.Handler(ctx, m)
	})
}
