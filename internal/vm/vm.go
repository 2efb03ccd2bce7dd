// Package vm ties the scheduler, safety envelope, trace recorder,
// checkpoint manager and fault-isolation zones into the single
// orchestrated run loop.
//
// Execution within one Run call is strictly single-threaded and
// cooperative: operators run one at a time in scheduler-determined
// order, cancellation is observed only between invocations, and the
// only throughput governor is the rate limiter. That is deliberate —
// implicit parallelism would make trace ordering, and therefore
// replay, non-deterministic.
package vm

import (
	"github.com/specialistvlad/gridvm/internal/checkpoint"
	"github.com/specialistvlad/gridvm/internal/graph"
	"github.com/specialistvlad/gridvm/internal/operator"
	"github.com/specialistvlad/gridvm/internal/safety"
	"github.com/specialistvlad/gridvm/internal/scheduler"
	"github.com/specialistvlad/gridvm/internal/tick"
	"github.com/specialistvlad/gridvm/internal/trace"
	"github.com/specialistvlad/gridvm/internal/zone"
)

// Options configure one VM instance.
type Options struct {
	// Constraints are numeric bounds on state variables, validated
	// before and after every invocation.
	Constraints safety.Constraints

	// Rates configure per-operator token buckets.
	Rates map[string]safety.Rate

	// Priorities selects the priority scheduler when non-empty;
	// otherwise the frozen topological order is followed directly.
	Priorities map[string]int

	// Checkpoints enables periodic checkpointing when non-nil.
	Checkpoints *checkpoint.Manager

	// CheckpointEvery takes a checkpoint every K ticks. Zero disables
	// the cadence (explicit checkpoints still work).
	CheckpointEvery int
}

// VM executes an operator graph deterministically. A VM instance owns
// one tick counter, one trace recorder and its active zones; they live
// for the duration of one Run call series.
type VM struct {
	graph    *graph.Graph
	order    []string
	deps     map[string][]string
	library  *operator.Library
	envelope *safety.Envelope
	zones    *zone.Set
	opts     Options

	clock    tick.Counter
	recorder *trace.Recorder
	phase    phaseTracker
}

// New builds a VM over a frozen graph. The graph is validated here:
// cycles surface as *graph.ConstructionError and graph nodes naming
// unregistered operators as *operator.UnknownOperatorError — both
// fatal before any tick executes.
func New(g *graph.Graph, lib *operator.Library, zones *zone.Set, opts Options) (*VM, error) {
	order, err := g.Topological()
	if err != nil {
		return nil, err
	}

	deps := make(map[string][]string, len(order))
	for _, name := range order {
		if _, err := lib.Lookup(name); err != nil {
			return nil, err
		}
		d, err := g.Dependencies(name)
		if err != nil {
			return nil, err
		}
		deps[name] = d
	}

	if zones == nil {
		zones = zone.NewSet()
	}
	for _, name := range order {
		zones.EnsureOperator(name)
	}

	return &VM{
		graph:    g,
		order:    order,
		deps:     deps,
		library:  lib,
		envelope: safety.NewEnvelope(opts.Constraints, opts.Rates),
		zones:    zones,
		opts:     opts,
		recorder: trace.NewRecorder(),
	}, nil
}

// newScheduler picks the scheduler variant for a fresh run.
func (v *VM) newScheduler() (scheduler.Scheduler, error) {
	if len(v.opts.Priorities) == 0 {
		return scheduler.NewDeterministic(v.order), nil
	}
	return scheduler.NewPriority(v.graph, v.opts.Priorities)
}

// Phase returns the VM's current position in its run state machine.
func (v *VM) Phase() Phase {
	return v.phase.get()
}

// Trace returns a copy of the full ordered execution log.
func (v *VM) Trace() []trace.Entry {
	return v.recorder.Snapshot()
}

// ReplayBuffer projects the current trace into replayable
// (tick, operator, result) entries without re-executing anything.
func (v *VM) ReplayBuffer() []trace.ReplayEntry {
	return v.recorder.Replay()
}

// Zones exposes the VM's zone set, primarily for explicit resets.
func (v *VM) Zones() *zone.Set {
	return v.zones
}
