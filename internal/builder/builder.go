// Package builder assembles a loaded program into a runnable VM: it
// resolves operator kinds through the registry, wires the dependency
// graph, declares zones and translates safety limits and settings into
// VM options.
package builder

import (
	"context"
	"fmt"

	"github.com/specialistvlad/gridvm/internal/checkpoint"
	"github.com/specialistvlad/gridvm/internal/ctxlog"
	"github.com/specialistvlad/gridvm/internal/graph"
	"github.com/specialistvlad/gridvm/internal/memstore"
	"github.com/specialistvlad/gridvm/internal/operator"
	"github.com/specialistvlad/gridvm/internal/program"
	"github.com/specialistvlad/gridvm/internal/registry"
	"github.com/specialistvlad/gridvm/internal/safety"
	"github.com/specialistvlad/gridvm/internal/snapstore"
	"github.com/specialistvlad/gridvm/internal/state"
	"github.com/specialistvlad/gridvm/internal/vm"
	"github.com/specialistvlad/gridvm/internal/zone"
)

// Assembly is everything the app needs to run one program.
type Assembly struct {
	VM    *vm.VM
	State *state.State
	Goal  map[string]any
}

// Build constructs a validated Assembly from a program. The store
// backs checkpointing; passing nil selects an in-memory store when the
// program asks for checkpoints at all.
func Build(ctx context.Context, prog *program.Program, reg *registry.Registry, store snapstore.Store) (*Assembly, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build: starting assembly.", "operators", len(prog.Operators))

	if err := reg.Validate(prog); err != nil {
		return nil, err
	}

	// First pass: build operators and the graph topology.
	lib := operator.NewLibrary()
	g := graph.New()
	for _, def := range prog.Operators {
		op, err := reg.Build(def.Kind, def.Arguments)
		if err != nil {
			return nil, fmt.Errorf("operator %q: %w", def.Name, err)
		}
		lib.Register(def.Name, op)

		g.AddNode(def.Name)
		for _, dep := range def.DependsOn {
			if err := g.AddEdge(dep, def.Name); err != nil {
				return nil, fmt.Errorf("operator %q: %w", def.Name, err)
			}
		}
	}
	logger.Debug("Build: graph construction complete.")

	// Second pass: declare zones.
	zones := zone.NewSet()
	for _, z := range prog.Zones {
		if err := zones.Define(z.Name, zone.Policy(z.Policy), z.Members...); err != nil {
			return nil, err
		}
	}

	// Third pass: translate limits, rates and priorities into options.
	opts := vm.Options{
		Constraints: make(safety.Constraints, len(prog.Limits)),
		Rates:       make(map[string]safety.Rate),
		Priorities:  make(map[string]int),
	}
	for _, lim := range prog.Limits {
		opts.Constraints[lim.Key] = safety.Interval{Min: lim.Min, Max: lim.Max}
	}
	for _, def := range prog.Operators {
		if def.Rate != nil {
			opts.Rates[def.Name] = safety.Rate{Burst: float64(def.Rate.Burst), Refill: float64(def.Rate.Refill)}
		}
		if def.Priority != 0 {
			opts.Priorities[def.Name] = def.Priority
		}
	}

	if prog.Settings.CheckpointEvery > 0 {
		if store == nil {
			store = memstore.New()
		}
		opts.Checkpoints = checkpoint.NewManager(store, checkpoint.Options{
			Retention: prog.Settings.Retention,
			FullEvery: prog.Settings.FullEvery,
		})
		opts.CheckpointEvery = prog.Settings.CheckpointEvery
	}

	machine, err := vm.New(g, lib, zones, opts)
	if err != nil {
		return nil, err
	}
	logger.Debug("Build: assembly complete.")

	return &Assembly{
		VM:    machine,
		State: state.New(prog.State),
		Goal:  prog.Goal,
	}, nil
}
