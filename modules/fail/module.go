// Package fail provides an operator that always raises an execution
// fault. It exists for fault-injection drills against isolation zones
// and escalation policies.
package fail

import (
	"context"
	"errors"

	"github.com/specialistvlad/gridvm/internal/operator"
	"github.com/specialistvlad/gridvm/internal/registry"
	"github.com/specialistvlad/gridvm/internal/state"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the operator kind with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterOperator("fail", newOperator)
}

func newOperator(args map[string]any) (operator.Operator, error) {
	message := "injected fault"
	if msg, ok := args["message"].(string); ok && msg != "" {
		message = msg
	}
	return operator.Func(func(ctx context.Context, st *state.State, goal map[string]any) (any, error) {
		return nil, errors.New(message)
	}), nil
}
