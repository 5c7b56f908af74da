package lifecycle_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/xraph/weave"
	"github.com/xraph/weave/lifecycle"
)

type OrderPlaced struct{ ID string }

type Tenant string

type Loader struct{ prefix string }

func (l Loader) Load(_ context.Context, msg OrderPlaced) (Tenant, error) {
	return Tenant(l.prefix + msg.ID), nil
}

func (Loader) Split(_ context.Context, msg OrderPlaced) (Tenant, int, error) {
	return Tenant(msg.ID), len(msg.ID), nil
}

func (Loader) Check(_ context.Context, _ OrderPlaced, t Tenant) error {
	if t == "" {
		return errors.New("empty tenant")
	}
	return nil
}

type values map[reflect.Type]any

func (v values) Get(t reflect.Type) (any, bool) {
	x, ok := v[t]
	return x, ok
}

func TestProduce(t *testing.T) {
	m := lifecycle.Produce("Load", Loader.Load)

	if m.MessageType != reflect.TypeFor[OrderPlaced]() {
		t.Errorf("MessageType = %v", m.MessageType)
	}
	if len(m.Produces) != 1 || m.Produces[0] != reflect.TypeFor[Tenant]() {
		t.Errorf("Produces = %v", m.Produces)
	}
	if m.Aggregate {
		t.Error("single result must not be an aggregate")
	}

	out, err := m.Call(context.Background(), Loader{prefix: "t-"}, OrderPlaced{ID: "42"}, nil)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if len(out) != 1 || out[0] != Tenant("t-42") {
		t.Errorf("out = %v", out)
	}
}

func TestProduce2(t *testing.T) {
	m := lifecycle.Produce2("Load", Loader.Split)

	if !m.Aggregate || len(m.Produces) != 2 {
		t.Fatalf("expected aggregate of 2, got %s", m)
	}
	out, err := m.Call(context.Background(), Loader{}, OrderPlaced{ID: "abc"}, nil)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if out[0] != Tenant("abc") || out[1] != 3 {
		t.Errorf("out = %v", out)
	}
}

func TestConsume(t *testing.T) {
	m := lifecycle.Consume("Validate", Loader.Check)

	vals := values{reflect.TypeFor[Tenant](): Tenant("acme")}
	if _, err := m.Call(context.Background(), Loader{}, OrderPlaced{}, vals); err != nil {
		t.Fatalf("Call: %v", err)
	}

	_, err := m.Call(context.Background(), Loader{}, OrderPlaced{}, values{})
	if !errors.Is(err, weave.ErrValueNotBound) {
		t.Errorf("expected ErrValueNotBound, got %v", err)
	}
}

func TestValue(t *testing.T) {
	vals := values{reflect.TypeFor[Tenant](): Tenant("acme")}

	if v, ok := lifecycle.Value[Tenant](vals); !ok || v != "acme" {
		t.Errorf("Value = %q, %v", v, ok)
	}
	if _, ok := lifecycle.Value[int](vals); ok {
		t.Error("expected no int bound")
	}
	if _, ok := lifecycle.Value[Tenant](nil); ok {
		t.Error("nil Values must resolve nothing")
	}
}

func TestMethodString(t *testing.T) {
	tests := []struct {
		m    lifecycle.Method
		want string
	}{
		{lifecycle.Run("Finally", func(Loader, context.Context) error { return nil }), "Finally()"},
		{lifecycle.Produce("Load", Loader.Load), "Load(lifecycle_test.OrderPlaced) lifecycle_test.Tenant"},
		{lifecycle.Produce2("Load", Loader.Split), "Load(lifecycle_test.OrderPlaced) (lifecycle_test.Tenant, int)"},
	}
	for _, tt := range tests {
		if got := tt.m.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestOptions(t *testing.T) {
	m := lifecycle.Run("Audit", func(Loader, context.Context) error { return nil }, lifecycle.AsFinally())
	if m.Marker != lifecycle.RoleFinally {
		t.Errorf("Marker = %s", m.Marker)
	}
	m = lifecycle.Run("Before", func(Loader, context.Context) error { return nil }, lifecycle.Ignored())
	if !m.Ignore {
		t.Error("expected Ignore")
	}
}
