package policy_test

import (
	"context"
	"reflect"
	"testing"

	"github.com/xraph/weave"
	"github.com/xraph/weave/chain"
	"github.com/xraph/weave/lifecycle"
	"github.com/xraph/weave/policy"
	"github.com/xraph/weave/registration"
	"github.com/xraph/weave/step"
)

type OrderPlaced struct{ ID string }

type OrderContext struct{ Tenant string }

type Refund struct{ ID string }

type X struct{}

type Y struct{}

// OrderLoader loads an OrderContext before the handler and flushes after.
type OrderLoader struct{}

func NewOrderLoader(context.Context) (*OrderLoader, error) { return &OrderLoader{}, nil }

func (*OrderLoader) LifecycleMethods() []lifecycle.Method {
	return []lifecycle.Method{
		lifecycle.Produce("Load", (*OrderLoader).Load),
		lifecycle.Run("After", (*OrderLoader).Flush),
	}
}

func (*OrderLoader) Load(_ context.Context, msg OrderPlaced) (OrderContext, error) {
	return OrderContext{Tenant: msg.ID}, nil
}

func (*OrderLoader) Flush(context.Context) error { return nil }

// First and Second only contribute after calls.
type First struct{}

func (First) After(context.Context, any) error { return nil }

type Second struct{}

func (Second) After(context.Context, any) error { return nil }

// Cleanup only contributes a finally call.
type Cleanup struct{}

func (Cleanup) Finally(context.Context, any) error { return nil }

// Session is a releasable middleware with setup and cleanup.
type Session struct{}

func NewSession(context.Context) (*Session, error) { return &Session{}, nil }

func (*Session) Before(context.Context, any) error  { return nil }
func (*Session) Finally(context.Context, any) error { return nil }
func (*Session) Close() error                       { return nil }

// Auditor is instance-based with only an after call.
type Auditor struct{}

func NewAuditor(context.Context) (*Auditor, error) { return &Auditor{}, nil }

func (*Auditor) After(context.Context, any) error { return nil }

// Pair produces two ints.
type Pair struct{}

func (Pair) LifecycleMethods() []lifecycle.Method {
	return []lifecycle.Method{lifecycle.Produce2("Load", Pair.Load)}
}

func (Pair) Load(context.Context, OrderPlaced) (int, int, error) { return 1, 2, nil }

// Mixed produces an int and a string.
type Mixed struct{}

func (Mixed) LifecycleMethods() []lifecycle.Method {
	return []lifecycle.Method{lifecycle.Produce2("Load", Mixed.Load)}
}

func (Mixed) Load(context.Context, OrderPlaced) (int, string, error) { return 1, "a", nil }

// Shadow produces an OrderPlaced from any message.
type Shadow struct{}

func (Shadow) LifecycleMethods() []lifecycle.Method {
	return []lifecycle.Method{lifecycle.Produce("Before", Shadow.Reload)}
}

func (Shadow) Reload(context.Context, any) (OrderPlaced, error) { return OrderPlaced{}, nil }

// YOnly accepts Y messages only.
type YOnly struct{}

func (YOnly) LifecycleMethods() []lifecycle.Method {
	return []lifecycle.Method{lifecycle.Do("Before", YOnly.Check)}
}

func (YOnly) Check(context.Context, Y) error { return nil }

// YGuard guards Y messages and releases on every message.
type YGuard struct{}

func NewYGuard(context.Context) (*YGuard, error) { return &YGuard{}, nil }

func (*YGuard) LifecycleMethods() []lifecycle.Method {
	return []lifecycle.Method{lifecycle.Do("Before", (*YGuard).Check)}
}

func (*YGuard) Check(context.Context, Y) error { return nil }

func (*YGuard) Finally(context.Context, any) error { return nil }

// Gate signals whether the chain may continue.
type Gate struct{}

func (Gate) LifecycleMethods() []lifecycle.Method {
	return []lifecycle.Method{lifecycle.Produce("Validate", Gate.Validate)}
}

func (Gate) Validate(_ context.Context, msg OrderPlaced) (step.Signal, error) {
	if msg.ID == "" {
		return step.Stop, nil
	}
	return step.Continue, nil
}

// GuardedGate signals and has a cleanup.
type GuardedGate struct{}

func (GuardedGate) LifecycleMethods() []lifecycle.Method {
	return []lifecycle.Method{
		lifecycle.Produce("Validate", GuardedGate.Validate),
		lifecycle.Run("Finally", GuardedGate.Release),
	}
}

func (GuardedGate) Validate(context.Context, OrderPlaced) (step.Signal, error) { return step.Continue, nil }
func (GuardedGate) Release(context.Context) error                              { return nil }

// ──────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────

func newPolicy(t *testing.T, opts ...policy.Option) *policy.Policy {
	t.Helper()
	p, err := policy.New(opts...)
	if err != nil {
		t.Fatalf("policy.New: %v", err)
	}
	return p
}

func mustAdd(t *testing.T, p *policy.Policy, typ registration.Type, opts ...registration.Option) *registration.Registration {
	t.Helper()
	r, err := p.AddType(typ, opts...)
	if err != nil {
		t.Fatalf("AddType(%s): %v", typ.Name, err)
	}
	return r
}

func orderChain(name string) *chain.Handler {
	return chain.New(name, reflect.TypeFor[OrderPlaced](), nil)
}

func owners(steps []step.Step) []string {
	var names []string
	for _, s := range steps {
		switch s := s.(type) {
		case *step.Invoke:
			names = append(names, s.Owner.Name)
		case *step.Construct:
			names = append(names, "new "+s.Owner.Name)
		}
	}
	return names
}

func lifecycleNames(cfg weave.Config) lifecycle.NameSet {
	return lifecycle.NamesFrom(cfg)
}
