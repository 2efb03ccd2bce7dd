// Package registry maps operator kinds to the factories that build
// them. Modules register their kinds at startup; the builder resolves
// every `operator` block of a program through the registry before the
// VM ever runs.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/specialistvlad/gridvm/internal/operator"
	"github.com/specialistvlad/gridvm/internal/program"
)

// Factory builds a configured operator instance from the arguments of
// one `operator` block.
type Factory func(args map[string]any) (operator.Operator, error)

// Module is the interface all operator modules implement to be
// registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds the kind→factory table for one application instance.
type Registry struct {
	mutex     sync.RWMutex
	factories map[string]Factory
}

// New creates a registry and registers the given modules.
func New(modules ...Module) *Registry {
	r := &Registry{factories: make(map[string]Factory)}
	for _, mod := range modules {
		mod.Register(r)
	}
	return r
}

// RegisterOperator adds a factory under a kind. Registering the same
// kind twice is a programmer error and panics.
func (r *Registry) RegisterOperator(kind string, factory Factory) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.factories[kind]; exists {
		panic(fmt.Sprintf("operator kind %q registered twice", kind))
	}
	r.factories[kind] = factory
}

// Build resolves a kind and constructs an operator from its arguments.
func (r *Registry) Build(kind string, args map[string]any) (operator.Operator, error) {
	r.mutex.RLock()
	factory, ok := r.factories[kind]
	r.mutex.RUnlock()

	if !ok {
		return nil, &operator.UnknownOperatorError{Name: kind}
	}
	op, err := factory(args)
	if err != nil {
		return nil, fmt.Errorf("failed to build operator of kind %q: %w", kind, err)
	}
	return op, nil
}

// Validate checks that every kind a program references is registered.
func (r *Registry) Validate(prog *program.Program) error {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	for _, op := range prog.Operators {
		if _, ok := r.factories[op.Kind]; !ok {
			return fmt.Errorf("operator %q: %w", op.Name, &operator.UnknownOperatorError{Name: op.Kind})
		}
	}
	return nil
}

// Kinds returns every registered kind, sorted.
func (r *Registry) Kinds() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	out := make([]string, 0, len(r.factories))
	for kind := range r.factories {
		out = append(out, kind)
	}
	sort.Strings(out)
	return out
}
