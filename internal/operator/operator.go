// Package operator defines the capability contract the VM consumes and
// the name-keyed library operators are resolved from.
//
// Operators are supplied externally and treated as opaque: the VM only
// assumes they are deterministic functions of (state, goal) that either
// return a result or an error, and that they keep no hidden mutable
// state between invocations. That contract is what makes bit-exact
// replay of a run possible.
package operator

import (
	"context"
	"fmt"

	"github.com/specialistvlad/gridvm/internal/state"
)

// Operator is a named, deterministic unit of computation. Execute may
// read and mutate the shared run state; the result it returns is
// recorded verbatim in the trace, so it must be JSON-native for the
// trace to stay serializable.
type Operator interface {
	Execute(ctx context.Context, st *state.State, goal map[string]any) (any, error)
}

// Func adapts a plain function to the Operator interface.
type Func func(ctx context.Context, st *state.State, goal map[string]any) (any, error)

// Execute implements Operator.
func (f Func) Execute(ctx context.Context, st *state.State, goal map[string]any) (any, error) {
	return f(ctx, st, goal)
}

// UnknownOperatorError reports a graph node that names no registered
// operator. It is fatal at bind time, before any tick executes.
type UnknownOperatorError struct {
	Name string
}

func (e *UnknownOperatorError) Error() string {
	return fmt.Sprintf("operator %q not registered", e.Name)
}
