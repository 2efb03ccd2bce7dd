package vm

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/gridvm/internal/checkpoint"
	"github.com/specialistvlad/gridvm/internal/graph"
	"github.com/specialistvlad/gridvm/internal/memstore"
	"github.com/specialistvlad/gridvm/internal/operator"
	"github.com/specialistvlad/gridvm/internal/safety"
	"github.com/specialistvlad/gridvm/internal/state"
	"github.com/specialistvlad/gridvm/internal/trace"
	"github.com/specialistvlad/gridvm/internal/zone"
)

func identityOp() operator.Operator {
	return operator.Func(func(ctx context.Context, st *state.State, goal map[string]any) (any, error) {
		return "ok", nil
	})
}

func settingOp(key string, value any) operator.Operator {
	return operator.Func(func(ctx context.Context, st *state.State, goal map[string]any) (any, error) {
		st.Set(key, value)
		return value, nil
	})
}

func failingOp(msg string) operator.Operator {
	return operator.Func(func(ctx context.Context, st *state.State, goal map[string]any) (any, error) {
		return nil, errors.New(msg)
	})
}

func chainGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New()
	require.NoError(t, g.AddEdge("n1", "n2"))
	require.NoError(t, g.AddEdge("n2", "n3"))
	return g
}

func identityLibrary(names ...string) *operator.Library {
	lib := operator.NewLibrary()
	for _, name := range names {
		lib.Register(name, identityOp())
	}
	return lib
}

func TestRunLinearChain(t *testing.T) {
	g := chainGraph(t)
	lib := identityLibrary("n1", "n2", "n3")

	v, err := New(g, lib, nil, Options{})
	require.NoError(t, err)

	entries, err := v.Run(context.Background(), state.New(nil), nil)
	require.NoError(t, err)

	require.Len(t, entries, 3)
	want := []struct {
		tick uint64
		op   string
	}{{0, "n1"}, {1, "n2"}, {2, "n3"}}
	for i, w := range want {
		assert.Equal(t, w.tick, entries[i].Tick)
		assert.Equal(t, w.op, entries[i].Operator)
		assert.True(t, entries[i].Outcome.OK)
	}
	assert.Equal(t, PhaseDone, v.Phase())
}

func TestNewRejectsUnknownOperator(t *testing.T) {
	g := chainGraph(t)
	lib := identityLibrary("n1", "n2") // n3 missing

	_, err := New(g, lib, nil, Options{})
	var unknownErr *operator.UnknownOperatorError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, "n3", unknownErr.Name)
}

func TestNewRejectsCyclicGraph(t *testing.T) {
	g := graph.New()
	require.NoError(t, g.AddEdge("a", "b"))
	require.NoError(t, g.AddEdge("b", "a"))

	_, err := New(g, identityLibrary("a", "b"), nil, Options{})
	var cerr *graph.ConstructionError
	assert.ErrorAs(t, err, &cerr)
}

func TestReplayDeterminism(t *testing.T) {
	run := func() []trace.Entry {
		g := graph.New()
		require.NoError(t, g.AddEdge("a", "c"))
		require.NoError(t, g.AddEdge("b", "c"))
		g.AddNode("d")

		lib := operator.NewLibrary()
		lib.Register("a", settingOp("x", 1.0))
		lib.Register("b", settingOp("y", 2.0))
		lib.Register("c", settingOp("z", 3.0))
		lib.Register("d", identityOp())

		v, err := New(g, lib, nil, Options{})
		require.NoError(t, err)

		entries, err := v.Run(context.Background(), state.New(map[string]any{"seed": 0.0}), nil)
		require.NoError(t, err)
		return entries
	}

	first := run()
	second := run()
	assert.Equal(t, first, second, "two identical runs must produce identical traces")
}

func TestZoneContainment(t *testing.T) {
	// Zones {A: [n1, n2]}, {B: [n3]} with edge n1→n2. A fault in n1
	// skips n2 but n3 still executes and shows up Ok.
	g := graph.New()
	require.NoError(t, g.AddEdge("n1", "n2"))
	g.AddNode("n3")

	lib := operator.NewLibrary()
	lib.Register("n1", failingOp("boom"))
	lib.Register("n2", identityOp())
	lib.Register("n3", identityOp())

	zones := zone.NewSet()
	require.NoError(t, zones.Define("A", zone.PolicyContain, "n1", "n2"))
	require.NoError(t, zones.Define("B", zone.PolicyContain, "n3"))

	v, err := New(g, lib, zones, Options{})
	require.NoError(t, err)

	entries, err := v.Run(context.Background(), state.New(nil), nil)
	require.NoError(t, err, "a contained fault must not abort the run")

	// Kahn order: n1 and n3 are seeded ready, n2 unlocks after n1.
	require.Len(t, entries, 3)

	assert.Equal(t, "n1", entries[0].Operator)
	assert.Equal(t, trace.FaultExecution, entries[0].Outcome.Fault)

	assert.Equal(t, "n3", entries[1].Operator)
	assert.True(t, entries[1].Outcome.OK)

	assert.Equal(t, "n2", entries[2].Operator)
	assert.Equal(t, trace.FaultSkipped, entries[2].Outcome.Fault)

	z, ok := zones.ZoneOf("n1")
	require.True(t, ok)
	assert.Equal(t, zone.StatusTripped, z.Status())
	assert.Equal(t, 1, z.Trips())
}

func TestDownstreamOfFaultIsSkippedAcrossZones(t *testing.T) {
	// n2 sits in its own zone but depends on faulty n1; its only
	// dependency chain routes through the tripped zone, so it skips.
	g := graph.New()
	require.NoError(t, g.AddEdge("n1", "n2"))

	lib := operator.NewLibrary()
	lib.Register("n1", failingOp("boom"))
	lib.Register("n2", identityOp())

	v, err := New(g, lib, nil, Options{})
	require.NoError(t, err)

	entries, err := v.Run(context.Background(), state.New(nil), nil)
	require.NoError(t, err)

	require.Len(t, entries, 2)
	assert.Equal(t, trace.FaultExecution, entries[0].Outcome.Fault)
	assert.Equal(t, trace.FaultSkipped, entries[1].Outcome.Fault)
}

func TestSafetyViolationTripsZone(t *testing.T) {
	// Constraint x ∈ [0, 10]; n1 sets x=15. Its zone trips and the
	// independent n2 still runs at the next tick.
	g := graph.New()
	g.AddNode("n1")
	g.AddNode("n2")

	lib := operator.NewLibrary()
	lib.Register("n1", settingOp("x", 15.0))
	lib.Register("n2", identityOp())

	min, max := 0.0, 10.0
	v, err := New(g, lib, nil, Options{
		Constraints: safety.Constraints{"x": {Min: &min, Max: &max}},
	})
	require.NoError(t, err)

	entries, err := v.Run(context.Background(), state.New(map[string]any{"x": 1.0}), nil)
	require.NoError(t, err)

	require.Len(t, entries, 2)
	assert.Equal(t, uint64(0), entries[0].Tick)
	assert.Equal(t, trace.FaultSafetyViolation, entries[0].Outcome.Fault)
	assert.Contains(t, entries[0].Outcome.Detail, "x")

	assert.Equal(t, uint64(1), entries[1].Tick)
	assert.True(t, entries[1].Outcome.OK)

	z, ok := v.Zones().ZoneOf("n1")
	require.True(t, ok)
	assert.Equal(t, zone.StatusTripped, z.Status())
}

func TestPreCheckViolationPreventsExecution(t *testing.T) {
	g := graph.New()
	g.AddNode("n1")

	executedCount := 0
	lib := operator.NewLibrary()
	lib.Register("n1", operator.Func(func(ctx context.Context, st *state.State, goal map[string]any) (any, error) {
		executedCount++
		return nil, nil
	}))

	max := 10.0
	v, err := New(g, lib, nil, Options{
		Constraints: safety.Constraints{"x": {Max: &max}},
	})
	require.NoError(t, err)

	entries, err := v.Run(context.Background(), state.New(map[string]any{"x": 50.0}), nil)
	require.NoError(t, err)

	require.Len(t, entries, 1)
	assert.Equal(t, trace.FaultSafetyViolation, entries[0].Outcome.Fault)
	assert.Zero(t, executedCount, "operator must not run when the pre-check fails")
}

func TestRateLimitRejectionIsAControlledFault(t *testing.T) {
	g := graph.New()
	g.AddNode("a1")
	g.AddNode("a2")

	lib := operator.NewLibrary()
	lib.Register("a1", identityOp())
	lib.Register("a2", identityOp())

	// Both graph nodes share no rate; limit only a1's bucket to zero
	// so its invocation is rejected outright.
	v, err := New(g, lib, nil, Options{
		Rates: map[string]safety.Rate{"a1": {Burst: 0, Refill: 0}},
	})
	require.NoError(t, err)

	entries, err := v.Run(context.Background(), state.New(nil), nil)
	require.NoError(t, err)

	require.Len(t, entries, 2)
	assert.Equal(t, trace.FaultRateLimited, entries[0].Outcome.Fault)
	assert.True(t, entries[1].Outcome.OK)
}

func TestFatalEscalationAbortsRun(t *testing.T) {
	g := chainGraph(t)
	g.AddNode("independent")

	lib := operator.NewLibrary()
	lib.Register("n1", failingOp("meltdown"))
	lib.Register("n2", identityOp())
	lib.Register("n3", identityOp())
	lib.Register("independent", identityOp())

	zones := zone.NewSet()
	require.NoError(t, zones.Define("critical", zone.PolicyFatal, "n1"))

	v, err := New(g, lib, zones, Options{})
	require.NoError(t, err)

	entries, err := v.Run(context.Background(), state.New(nil), nil)

	var fatal *FatalFaultError
	require.ErrorAs(t, err, &fatal)
	assert.Equal(t, "n1", fatal.Operator)
	assert.Equal(t, "critical", fatal.Zone)
	assert.Equal(t, trace.FaultExecution, fatal.Kind)

	// The fault is durably in the trace; the remaining schedule is
	// dropped, including the independent operator.
	require.Len(t, entries, 1)
	assert.Equal(t, trace.FaultExecution, entries[0].Outcome.Fault)
	assert.Equal(t, PhaseFaulted, v.Phase())
}

func TestPrioritySchedulingOrder(t *testing.T) {
	g := graph.New()
	g.AddNode("slow")
	g.AddNode("urgent")

	lib := identityLibrary("slow", "urgent")

	v, err := New(g, lib, nil, Options{
		Priorities: map[string]int{"urgent": 10},
	})
	require.NoError(t, err)

	entries, err := v.Run(context.Background(), state.New(nil), nil)
	require.NoError(t, err)

	require.Len(t, entries, 2)
	assert.Equal(t, "urgent", entries[0].Operator)
	assert.Equal(t, "slow", entries[1].Operator)
}

func TestPeriodicCheckpoints(t *testing.T) {
	g := chainGraph(t)
	require.NoError(t, g.AddEdge("n3", "n4"))

	lib := operator.NewLibrary()
	for i := 1; i <= 4; i++ {
		name := fmt.Sprintf("n%d", i)
		lib.Register(name, settingOp("progress", float64(i)))
	}

	mgr := checkpoint.NewManager(memstore.New(), checkpoint.Options{})
	v, err := New(g, lib, nil, Options{
		Checkpoints:     mgr,
		CheckpointEvery: 2,
	})
	require.NoError(t, err)

	st := state.New(nil)
	_, err = v.Run(context.Background(), st, nil)
	require.NoError(t, err)

	ticks, err := mgr.Ticks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 3}, ticks)

	restored, err := mgr.Restore(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"progress": 2.0}, restored.Snapshot)

	restored, err = mgr.Restore(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"progress": 4.0}, restored.Snapshot)
}

func TestExplicitCheckpointAndRestoreRoundTrip(t *testing.T) {
	g := graph.New()
	g.AddNode("n1")

	lib := operator.NewLibrary()
	lib.Register("n1", settingOp("x", 42.0))

	mgr := checkpoint.NewManager(memstore.New(), checkpoint.Options{})
	v, err := New(g, lib, nil, Options{Checkpoints: mgr})
	require.NoError(t, err)

	st := state.New(nil)
	_, err = v.Run(context.Background(), st, nil)
	require.NoError(t, err)

	tickAt, err := v.Checkpoint(context.Background(), st)
	require.NoError(t, err)

	st.Set("x", 0.0) // diverge, then restore
	restored, err := mgr.Restore(context.Background(), tickAt)
	require.NoError(t, err)
	st.Replace(restored.Snapshot)

	x, _ := st.Get("x")
	assert.Equal(t, 42.0, x)
}

func TestCancellationBetweenTicks(t *testing.T) {
	g := chainGraph(t)

	ctx, cancel := context.WithCancel(context.Background())

	lib := operator.NewLibrary()
	lib.Register("n1", operator.Func(func(ctx context.Context, st *state.State, goal map[string]any) (any, error) {
		cancel() // stop signal arrives while n1 is in flight
		return "done", nil
	}))
	lib.Register("n2", identityOp())
	lib.Register("n3", identityOp())

	v, err := New(g, lib, nil, Options{})
	require.NoError(t, err)

	entries, err := v.Run(ctx, state.New(nil), nil)
	require.ErrorIs(t, err, context.Canceled)

	// n1 completed (no mid-operator preemption); n2 and n3 never ran.
	require.Len(t, entries, 1)
	assert.Equal(t, "n1", entries[0].Operator)
	assert.True(t, entries[0].Outcome.OK)
}

func TestReplayBufferProjection(t *testing.T) {
	g := graph.New()
	g.AddNode("good")
	g.AddNode("bad")

	lib := operator.NewLibrary()
	lib.Register("good", settingOp("x", 1.0))
	lib.Register("bad", failingOp("boom"))

	v, err := New(g, lib, nil, Options{})
	require.NoError(t, err)

	_, err = v.Run(context.Background(), state.New(nil), nil)
	require.NoError(t, err)

	buf := v.ReplayBuffer()
	require.Len(t, buf, 1)
	assert.Equal(t, "good", buf[0].Operator)
	assert.Equal(t, 1.0, buf[0].Result)
}

func TestZoneResetAllowsReRun(t *testing.T) {
	g := graph.New()
	g.AddNode("n1")

	calls := 0
	lib := operator.NewLibrary()
	lib.Register("n1", operator.Func(func(ctx context.Context, st *state.State, goal map[string]any) (any, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("transient")
		}
		return "recovered", nil
	}))

	v, err := New(g, lib, nil, Options{})
	require.NoError(t, err)

	_, err = v.Run(context.Background(), state.New(nil), nil)
	require.NoError(t, err)
	assert.True(t, v.Zones().Tripped("n1"))

	// Zones never self-heal; a new run without reset would skip n1.
	require.NoError(t, v.Zones().Reset("n1"))
	assert.False(t, v.Zones().Tripped("n1"))
}
