// Package identity provides the no-op operator: it leaves state
// untouched and reports a fixed result. Useful as a graph placeholder
// and in determinism drills.
package identity

import (
	"context"

	"github.com/specialistvlad/gridvm/internal/operator"
	"github.com/specialistvlad/gridvm/internal/registry"
	"github.com/specialistvlad/gridvm/internal/state"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the operator kind with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterOperator("identity", newOperator)
}

func newOperator(args map[string]any) (operator.Operator, error) {
	result := any("ok")
	if v, ok := args["value"]; ok {
		result = v
	}
	return operator.Func(func(ctx context.Context, st *state.State, goal map[string]any) (any, error) {
		return result, nil
	}), nil
}
