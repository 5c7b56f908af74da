// Package lifecycle classifies middleware methods into lifecycle roles.
//
// A middleware type declares its methods as a static table of [Method]
// values instead of relying on runtime method discovery. Each method is
// built from a Go method expression with one of the declaration helpers:
//
//	func (*Stopwatch) LifecycleMethods() []lifecycle.Method {
//	    return []lifecycle.Method{
//	        lifecycle.Produce("Before", (*Stopwatch).Before),
//	        lifecycle.Do("After", (*Stopwatch).After),
//	        lifecycle.Run("Flush", (*Stopwatch).Flush, lifecycle.AsFinally()),
//	    }
//	}
//
// [Classify] assigns a method to a role when its name is allow-listed for
// that role or when it carries the role's explicit marker, unless it is
// marked as ignored. The allow-lists default to:
//
//   - before: Before, BeforeAsync, Load, LoadAsync, Validate, ValidateAsync
//   - after: After, AfterAsync, PostProcess, PostProcessAsync
//   - finally: Finally, FinallyAsync
//
// [ClassifyAll] rejects a method that lands in more than one role.
package lifecycle
