package weave

import (
	"errors"
	"fmt"
)

var (
	// Composition errors.
	ErrInvalidMiddleware = errors.New("weave: invalid middleware")
	ErrOverlappingRoles  = errors.New("weave: lifecycle role names overlap")

	// Chain errors.
	ErrChainNotFound      = errors.New("weave: chain not found")
	ErrChainAlreadyExists = errors.New("weave: chain already exists")

	// Execution errors.
	ErrNotConstructed  = errors.New("weave: middleware used before construction")
	ErrMessageMismatch = errors.New("weave: message type mismatch")
	ErrValueNotBound   = errors.New("weave: no value bound for type")
	ErrUnsupportedStep = errors.New("weave: unsupported step")
	ErrCallPanicked    = errors.New("weave: call panicked")
)

// InvalidMiddlewareError reports a middleware authoring defect detected
// while registering a middleware type or weaving it into a chain. It
// matches ErrInvalidMiddleware with errors.Is.
type InvalidMiddlewareError struct {
	// Middleware is the qualified name of the offending middleware type.
	Middleware string

	// Method is the offending lifecycle method, if any.
	Method string

	// Reason describes the defect.
	Reason string
}

// NewInvalidMiddleware returns an InvalidMiddlewareError for a type-level defect.
func NewInvalidMiddleware(middleware, reason string) *InvalidMiddlewareError {
	return &InvalidMiddlewareError{Middleware: middleware, Reason: reason}
}

// NewInvalidMethod returns an InvalidMiddlewareError for a method-level defect.
func NewInvalidMethod(middleware, method, reason string) *InvalidMiddlewareError {
	return &InvalidMiddlewareError{Middleware: middleware, Method: method, Reason: reason}
}

func (e *InvalidMiddlewareError) Error() string {
	switch {
	case e.Middleware == "":
		return fmt.Sprintf("weave: invalid middleware: %s", e.Reason)
	case e.Method == "":
		return fmt.Sprintf("weave: invalid middleware %s: %s", e.Middleware, e.Reason)
	default:
		return fmt.Sprintf("weave: invalid middleware %s.%s: %s", e.Middleware, e.Method, e.Reason)
	}
}

// Is reports whether target is ErrInvalidMiddleware.
func (e *InvalidMiddlewareError) Is(target error) bool {
	return target == ErrInvalidMiddleware
}
