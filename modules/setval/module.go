// Package setval provides the operator that assigns a literal value to
// one state variable.
package setval

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
	r.RegisterOperator("setval", newOperator)
}

func newOperator(args map[string]any) (operator.Operator, error) {
	key, ok := args["key"].(string)
	if !ok || key == "" {
		return nil, fmt.Errorf("setval requires a non-empty string argument %q", "key")
	}
	value, ok := args["value"]
	if !ok {
		return nil, fmt.Errorf("setval requires argument %q", "value")
	}

	return operator.Func(func(ctx context.Context, st *state.State, goal map[string]any) (any, error) {
		st.Set(key, state.CloneValue(value))
		return value, nil
	}), nil
}
