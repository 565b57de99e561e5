package graph

import (
	"errors"
	"fmt"
)

// Sentinel errors for graph construction failures. All of them are raised
// synchronously while a graph is being built; a malformed graph is a
// programmer error and there is no partial or degraded result.
var (
	// ErrTypeMismatch reports an operator applied to operand types that
	// violate its signature.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrUnsupportedParameterType reports a parameter value that is
	// neither numeric, a 3-component color/vector, nor a Node.
	ErrUnsupportedParameterType = errors.New("unsupported parameter type")

	// ErrInvalidDomainPrecondition reports a statically detectable domain
	// violation, such as a non-positive literal bound for an exponential
	// remap or an octave count outside the supported range.
	ErrInvalidDomainPrecondition = errors.New("invalid domain precondition")
)

// GraphError is the panic payload raised by node constructors on misuse.
// It wraps one of the sentinel errors above, so errors.Is works after
// Guard has converted the panic into a returned error.
type GraphError struct {
	Fn     string // constructor or operation that rejected its input
	Detail string
	Err    error
}

func (e *GraphError) Error() string {
	return fmt.Sprintf("graph: %s: %v: %s", e.Fn, e.Err, e.Detail)
}

func (e *GraphError) Unwrap() error { return e.Err }

// fail panics with a *GraphError. Construction misuse is treated like the
// reflect package treats bad kinds: panic near the bug, recover at the
// API boundary via Guard.
func fail(fn string, sentinel error, format string, args ...any) {
	panic(&GraphError{Fn: fn, Detail: fmt.Sprintf(format, args...), Err: sentinel})
}

// Guard runs fn and converts a *GraphError panic into a returned error.
// Panics of any other type are re-raised.
func Guard(fn func()) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		ge, ok := r.(*GraphError)
		if !ok {
			panic(r)
		}
		err = ge
	}()
	fn()
	return nil
}
