package registration

import (
	"context"
	"reflect"
	"slices"

	"github.com/xraph/weave/lifecycle"
	"github.com/xraph/weave/step"
	"github.com/xraph/weave/typeinfo"
)

// Type describes a middleware type.
type Type struct {
	// Name is the qualified type name.
	Name string

	// GoType is the type descriptor.
	GoType reflect.Type

	// Static reports that the type needs no instance; its methods run on
	// the zero value.
	Static bool

	// Constructors lists the ways to build an instance. Instance-based
	// types must declare exactly one.
	Constructors []step.NewFunc

	// Releasable reports that instances implement io.Closer.
	Releasable bool

	// Methods is the declared method table.
	Methods []lifecycle.Method
}

// TypeOption configures a Type.
type TypeOption func(*Type)

// Static marks the type as stateless: no instance is constructed.
func Static() TypeOption {
	return func(t *Type) { t.Static = true }
}

// Constructor adds a constructor for instances of T.
func Constructor[T any](fn func(ctx context.Context) (T, error)) TypeOption {
	return func(t *Type) {
		t.Constructors = append(t.Constructors, func(ctx context.Context) (any, error) {
			v, err := fn(ctx)
			if err != nil {
				return nil, err
			}
			return v, nil
		})
	}
}

// Methods appends methods to the type's method table.
func Methods(methods ...lifecycle.Method) TypeOption {
	return func(t *Type) { t.Methods = append(t.Methods, methods...) }
}

// TypeOf builds the descriptor of middleware type T. The method table is
// collected from [Describer] and the capability interfaces T implements,
// then from Methods options.
func TypeOf[T any](opts ...TypeOption) Type {
	gt := typeinfo.Of[T]()
	t := Type{
		Name:       typeinfo.Name(gt),
		GoType:     gt,
		Releasable: typeinfo.Releasable(gt),
		Methods:    declaredMethods(gt),
	}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

// Owner returns the step owner for t.
func (t Type) Owner() step.Owner {
	return step.Owner{Name: t.Name, Type: t.GoType, Static: t.Static}
}

var (
	describerType      = reflect.TypeFor[Describer]()
	beforeCapableType  = reflect.TypeFor[BeforeCapable]()
	afterCapableType   = reflect.TypeFor[AfterCapable]()
	finallyCapableType = reflect.TypeFor[FinallyCapable]()
)

func declaredMethods(gt reflect.Type) []lifecycle.Method {
	if gt.Kind() == reflect.Interface {
		return nil
	}

	var methods []lifecycle.Method
	if gt.Implements(describerType) {
		if d, ok := zero(gt).(Describer); ok {
			methods = append(methods, d.LifecycleMethods()...)
		}
	}

	add := func(capable reflect.Type, m lifecycle.Method) {
		if !gt.Implements(capable) {
			return
		}
		declared := slices.ContainsFunc(methods, func(x lifecycle.Method) bool { return x.Name == m.Name })
		if !declared {
			methods = append(methods, m)
		}
	}
	add(beforeCapableType, lifecycle.Do("Before", BeforeCapable.Before))
	add(afterCapableType, lifecycle.Do("After", AfterCapable.After))
	add(finallyCapableType, lifecycle.Do("Finally", FinallyCapable.Finally))

	return methods
}

// zero returns a usable zero value of gt. Pointer types get a pointer to
// a zero element so value-receiver methods can be called on it.
func zero(gt reflect.Type) any {
	if gt.Kind() == reflect.Pointer {
		return reflect.New(gt.Elem()).Interface()
	}
	return reflect.Zero(gt).Interface()
}
