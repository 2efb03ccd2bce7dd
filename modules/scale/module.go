// Package scale provides the operator that multiplies a numeric state
// variable by a constant factor.
package scale

import (
	"context"
	"fmt"

	"github.com/specialistvlad/gridvm/internal/operator"
	"github.com/specialistvlad/gridvm/internal/registry"
	"github.com/specialistvlad/gridvm/internal/state"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the operator kind with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterOperator("scale", newOperator)
}

func newOperator(args map[string]any) (operator.Operator, error) {
	key, ok := args["key"].(string)
	if !ok || key == "" {
		return nil, fmt.Errorf("scale requires a non-empty string argument %q", "key")
	}
	factor, ok := args["factor"].(float64)
	if !ok {
		return nil, fmt.Errorf("scale requires a numeric argument %q", "factor")
	}

	return operator.Func(func(ctx context.Context, st *state.State, goal map[string]any) (any, error) {
		current, exists := st.Get(key)
		if !exists {
			return nil, fmt.Errorf("state variable %q is not set", key)
		}
		num, ok := current.(float64)
		if !ok {
			return nil, fmt.Errorf("state variable %q is not numeric (got %T)", key, current)
		}

		scaled := num * factor
		st.Set(key, scaled)
		return scaled, nil
	}), nil
}
