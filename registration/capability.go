package registration

import (
	"context"

	"github.com/xraph/weave/lifecycle"
)

// Describer is implemented by middleware types that declare their
// lifecycle methods as a static table. LifecycleMethods is called on a
// zero value and must not depend on receiver state.
type Describer interface {
	LifecycleMethods() []lifecycle.Method
}

// BeforeCapable is the shorthand for a middleware with a Before method
// accepting any message.
type BeforeCapable interface {
	Before(ctx context.Context, msg any) error
}

// AfterCapable is the shorthand for a middleware with an After method
// accepting any message.
type AfterCapable interface {
	After(ctx context.Context, msg any) error
}

// FinallyCapable is the shorthand for a middleware with a Finally method
// accepting any message.
type FinallyCapable interface {
	Finally(ctx context.Context, msg any) error
}
