package typeinfo_test

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/xraph/weave/typeinfo"
)

type Message interface{ Topic() string }

type OrderPlaced struct{ ID string }

func (OrderPlaced) Topic() string { return "orders" }

type Refund struct{}

type Conn struct{}

func (*Conn) Close() error { return nil }

type hidden struct{}

func TestName(t *testing.T) {
	tests := []struct {
		name string
		typ  reflect.Type
		want string
	}{
		{"named", typeinfo.Of[OrderPlaced](), "github.com/xraph/weave/typeinfo_test.OrderPlaced"},
		{"pointer", typeinfo.Of[*Conn](), "*github.com/xraph/weave/typeinfo_test.Conn"},
		{"builtin", typeinfo.Of[int](), "int"},
		{"unnamed", typeinfo.Of[[]string](), "[]string"},
		{"nil", nil, "<none>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := typeinfo.Name(tt.typ); got != tt.want {
				t.Errorf("Name() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExported(t *testing.T) {
	tests := []struct {
		typ  reflect.Type
		want bool
	}{
		{typeinfo.Of[OrderPlaced](), true},
		{typeinfo.Of[*Conn](), true},
		{typeinfo.Of[hidden](), false},
		{typeinfo.Of[*hidden](), false},
		{typeinfo.Of[struct{}](), false},
		{nil, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.typ), func(t *testing.T) {
			if got := typeinfo.Exported(tt.typ); got != tt.want {
				t.Errorf("Exported(%v) = %v, want %v", tt.typ, got, tt.want)
			}
		})
	}
}

func TestAssignableTo(t *testing.T) {
	order := typeinfo.Of[OrderPlaced]()

	if !typeinfo.AssignableTo(order, order) {
		t.Error("a type should be assignable to itself")
	}
	if !typeinfo.AssignableTo(order, typeinfo.Of[Message]()) {
		t.Error("OrderPlaced implements Message")
	}
	if !typeinfo.AssignableTo(order, typeinfo.Of[any]()) {
		t.Error("everything is assignable to any")
	}
	if typeinfo.AssignableTo(typeinfo.Of[Refund](), typeinfo.Of[Message]()) {
		t.Error("Refund does not implement Message")
	}
	if typeinfo.AssignableTo(nil, order) || typeinfo.AssignableTo(order, nil) {
		t.Error("nil descriptors are never assignable")
	}
}

func TestReleasable(t *testing.T) {
	if !typeinfo.Releasable(typeinfo.Of[*Conn]()) {
		t.Error("*Conn implements io.Closer")
	}
	if typeinfo.Releasable(typeinfo.Of[Conn]()) {
		t.Error("Conn (value) does not implement io.Closer")
	}
	if typeinfo.Releasable(nil) {
		t.Error("nil is not releasable")
	}
}
