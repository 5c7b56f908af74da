package lifecycle

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/xraph/weave"
	"github.com/xraph/weave/typeinfo"
)

// Role is the lifecycle position of a middleware method.
type Role int

const (
	// RoleNone marks a method with no explicit role marker.
	RoleNone Role = iota
	// RoleBefore runs ahead of the chain's handler.
	RoleBefore
	// RoleAfter runs after the chain's handler on success.
	RoleAfter
	// RoleFinally runs on every exit path once its region was entered.
	RoleFinally
)

var roles = []Role{RoleBefore, RoleAfter, RoleFinally}

func (r Role) String() string {
	switch r {
	case RoleBefore:
		return "before"
	case RoleAfter:
		return "after"
	case RoleFinally:
		return "finally"
	default:
		return "none"
	}
}

// Values resolves values bound earlier in a running chain by type.
type Values interface {
	Get(t reflect.Type) (any, bool)
}

// Value returns the value of type T bound in vals.
func Value[T any](vals Values) (T, bool) {
	var zero T
	if vals == nil {
		return zero, false
	}
	v, ok := vals.Get(reflect.TypeFor[T]())
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

// Func is a type-erased lifecycle call. inst is the middleware instance
// (the zero value for static middleware), msg is the chain's input and
// vals resolves values produced upstream. The returned values line up
// with Method.Produces.
type Func func(ctx context.Context, inst, msg any, vals Values) ([]any, error)

// Method describes one lifecycle method of a middleware type.
type Method struct {
	// Name is the method name matched against the role allow-lists.
	Name string

	// Marker is an explicit role marker. RoleNone classifies by name only.
	Marker Role

	// Ignore excludes the method from every role.
	Ignore bool

	// MessageType is the declared message parameter type, or nil when
	// the method takes no message.
	MessageType reflect.Type

	// Produces lists the declared types of the values the method returns.
	Produces []reflect.Type

	// Aggregate reports whether the method returns a tuple of values.
	Aggregate bool

	// Call invokes the method.
	Call Func
}

func (m Method) String() string {
	var b strings.Builder
	b.WriteString(m.Name)
	b.WriteByte('(')
	if m.MessageType != nil {
		b.WriteString(m.MessageType.String())
	}
	b.WriteByte(')')
	switch len(m.Produces) {
	case 0:
	case 1:
		b.WriteString(" " + m.Produces[0].String())
	default:
		parts := make([]string, len(m.Produces))
		for i, t := range m.Produces {
			parts[i] = t.String()
		}
		b.WriteString(" (" + strings.Join(parts, ", ") + ")")
	}
	return b.String()
}

// Option configures a declared Method.
type Option func(*Method)

// AsBefore marks the method for the before role regardless of its name.
func AsBefore() Option { return func(m *Method) { m.Marker = RoleBefore } }

// AsAfter marks the method for the after role regardless of its name.
func AsAfter() Option { return func(m *Method) { m.Marker = RoleAfter } }

// AsFinally marks the method for the finally role regardless of its name.
func AsFinally() Option { return func(m *Method) { m.Marker = RoleFinally } }

// Ignored excludes the method from classification.
func Ignored() Option { return func(m *Method) { m.Ignore = true } }

// ──────────────────────────────────────────────────
// Declaration helpers
// ──────────────────────────────────────────────────

// Run declares a method that takes no message and produces nothing.
func Run[I any](name string, fn func(I, context.Context) error, opts ...Option) Method {
	return declare(Method{
		Name: name,
		Call: func(ctx context.Context, inst, _ any, _ Values) ([]any, error) {
			return nil, fn(instance[I](inst), ctx)
		},
	}, opts)
}

// Do declares a method that takes the message and produces nothing.
func Do[I, M any](name string, fn func(I, context.Context, M) error, opts ...Option) Method {
	return declare(Method{
		Name:        name,
		MessageType: reflect.TypeFor[M](),
		Call: func(ctx context.Context, inst, msg any, _ Values) ([]any, error) {
			return nil, fn(instance[I](inst), ctx, message[M](msg))
		},
	}, opts)
}

// Produce declares a method that takes the message and produces one value.
func Produce[I, M, R any](name string, fn func(I, context.Context, M) (R, error), opts ...Option) Method {
	return declare(Method{
		Name:        name,
		MessageType: reflect.TypeFor[M](),
		Produces:    []reflect.Type{reflect.TypeFor[R]()},
		Call: func(ctx context.Context, inst, msg any, _ Values) ([]any, error) {
			r, err := fn(instance[I](inst), ctx, message[M](msg))
			if err != nil {
				return nil, err
			}
			return []any{r}, nil
		},
	}, opts)
}

// Produce2 declares a method that takes the message and produces a pair
// of values. The pair is an aggregate: its two types must differ.
func Produce2[I, M, R1, R2 any](name string, fn func(I, context.Context, M) (R1, R2, error), opts ...Option) Method {
	return declare(Method{
		Name:        name,
		MessageType: reflect.TypeFor[M](),
		Produces:    []reflect.Type{reflect.TypeFor[R1](), reflect.TypeFor[R2]()},
		Aggregate:   true,
		Call: func(ctx context.Context, inst, msg any, _ Values) ([]any, error) {
			r1, r2, err := fn(instance[I](inst), ctx, message[M](msg))
			if err != nil {
				return nil, err
			}
			return []any{r1, r2}, nil
		},
	}, opts)
}

// Consume declares a method that takes the message and a value of type V
// produced upstream in the same chain.
func Consume[I, M, V any](name string, fn func(I, context.Context, M, V) error, opts ...Option) Method {
	return declare(Method{
		Name:        name,
		MessageType: reflect.TypeFor[M](),
		Call: func(ctx context.Context, inst, msg any, vals Values) ([]any, error) {
			v, ok := Value[V](vals)
			if !ok {
				return nil, fmt.Errorf("%s: %w %s", name, weave.ErrValueNotBound, typeinfo.Name(reflect.TypeFor[V]()))
			}
			return nil, fn(instance[I](inst), ctx, message[M](msg), v)
		},
	}, opts)
}

func declare(m Method, opts []Option) Method {
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

func instance[I any](inst any) I {
	v, _ := inst.(I)
	return v
}

func message[M any](msg any) M {
	v, _ := msg.(M)
	return v
}
