// Package typeinfo describes message and middleware types. A descriptor is
// a reflect.Type; this package adds the few questions weaving asks of it.
package typeinfo

import (
	"go/token"
	"io"
	"reflect"
)

var closerType = reflect.TypeFor[io.Closer]()

// Of returns the descriptor for T. Interface types keep their interface
// kind, so Of[any]() describes the empty interface.
func Of[T any]() reflect.Type {
	return reflect.TypeFor[T]()
}

// Name returns the package-qualified name of t, e.g.
// "github.com/acme/orders.OrderPlaced" or "*github.com/acme/orders.Stopwatch".
// Unnamed types fall back to their literal form. Name(nil) is "<none>".
func Name(t reflect.Type) string {
	if t == nil {
		return "<none>"
	}
	if t.Kind() == reflect.Pointer && t.Name() == "" {
		return "*" + Name(t.Elem())
	}
	if t.Name() == "" || t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

// Exported reports whether t, or the element type of a pointer t, is a
// named type visible outside its package.
func Exported(t reflect.Type) bool {
	if t == nil {
		return false
	}
	if t.Kind() == reflect.Pointer && t.Name() == "" {
		t = t.Elem()
	}
	return t.Name() != "" && token.IsExported(t.Name())
}

// AssignableTo reports whether a chain whose input is described by input
// can pass its message where param is declared. Both must be non-nil.
func AssignableTo(input, param reflect.Type) bool {
	if input == nil || param == nil {
		return false
	}
	return input.AssignableTo(param)
}

// Releasable reports whether values of t hold a resource that must be
// released with io.Closer when their scope ends.
func Releasable(t reflect.Type) bool {
	return t != nil && t.Implements(closerType)
}
