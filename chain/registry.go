package chain

import (
	"fmt"
	"sync"

	"github.com/xraph/weave"
)

// Registry maps chain names to chains, remembering registration order.
// It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	chains map[string]*Handler
	order  []string
}

// NewRegistry creates an empty chain registry.
func NewRegistry() *Registry {
	return &Registry{
		chains: make(map[string]*Handler),
	}
}

// Register builds the chain for a typed definition and adds it to r.
//
// This is a package-level generic function because Go does not allow
// generic methods on non-generic receiver types.
func Register[M any](r *Registry, def *Definition[M]) (*Handler, error) {
	h := Build(def)
	if err := r.Add(h); err != nil {
		return nil, err
	}
	return h, nil
}

// Add adds a chain. Names must be unique.
func (r *Registry) Add(h *Handler) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.chains[h.Name()]; ok {
		return fmt.Errorf("%w: %q", weave.ErrChainAlreadyExists, h.Name())
	}
	r.chains[h.Name()] = h
	r.order = append(r.order, h.Name())
	return nil
}

// Get returns the chain registered under name.
func (r *Registry) Get(name string) (*Handler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.chains[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", weave.ErrChainNotFound, name)
	}
	return h, nil
}

// Names returns all registered chain names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Chains returns all registered chains in registration order.
func (r *Registry) Chains() []Chain {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Chain, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.chains[name])
	}
	return out
}
