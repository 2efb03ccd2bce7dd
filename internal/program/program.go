// Package program defines the format-agnostic model of an operator
// program: the operators to run, their wiring, the fault-isolation
// zones, the safety limits and the VM settings.
//
// The model is deliberately decoupled from any configuration syntax. A
// Loader implementation (currently HCL) parses user files and
// translates them into this model; everything downstream — validation,
// graph building, execution — operates on the model alone.
package program

import "context"

// Program is the root of the loaded model, aggregated across every
// configuration file discovered for one run.
type Program struct {
	Operators []*Operator
	Zones     []*Zone
	Limits    []*Limit
	Settings  Settings

	// State seeds the run's variable bag; Goal is passed read-only to
	// every operator invocation.
	State map[string]any
	Goal  map[string]any
}

// Operator is one configured node of the execution graph.
type Operator struct {
	// Kind names the registered operator implementation; Name is the
	// unique graph-node identifier.
	Kind string
	Name string

	Arguments map[string]any
	DependsOn []string
	Priority  int
	Rate      *Rate
}

// Rate is a per-operator token-bucket declaration.
type Rate struct {
	Burst  int
	Refill int
}

// Zone groups operators for fault containment.
type Zone struct {
	Name    string
	Members []string
	Policy  string
}

// Limit is a closed numeric interval on one state variable. Nil bounds
// are open.
type Limit struct {
	Key string
	Min *float64
	Max *float64
}

// Settings are the VM-level knobs of a program.
type Settings struct {
	// CheckpointEvery takes a checkpoint every K ticks; zero disables
	// the cadence.
	CheckpointEvery int

	// Retention bounds stored checkpoints; zero keeps everything.
	Retention int

	// FullEvery forces a full snapshot every N-th checkpoint record.
	FullEvery int
}

// Loader translates configuration files at a path into the model. The
// path may be a single file or a directory searched recursively.
type Loader interface {
	Load(ctx context.Context, path string) (*Program, error)
}

// New returns an empty program ready for aggregation.
func New() *Program {
	return &Program{
		State: make(map[string]any),
		Goal:  make(map[string]any),
	}
}

// Merge appends everything from other into p. Scalar settings in other
// win when set; state and goal entries overwrite on key collision.
func (p *Program) Merge(other *Program) {
	p.Operators = append(p.Operators, other.Operators...)
	p.Zones = append(p.Zones, other.Zones...)
	p.Limits = append(p.Limits, other.Limits...)

	if other.Settings.CheckpointEvery != 0 {
		p.Settings.CheckpointEvery = other.Settings.CheckpointEvery
	}
	if other.Settings.Retention != 0 {
		p.Settings.Retention = other.Settings.Retention
	}
	if other.Settings.FullEvery != 0 {
		p.Settings.FullEvery = other.Settings.FullEvery
	}

	for k, v := range other.State {
		p.State[k] = v
	}
	for k, v := range other.Goal {
		p.Goal[k] = v
	}
}
