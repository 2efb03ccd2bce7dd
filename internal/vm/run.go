package vm

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/gridvm/internal/ctxlog"
	"github.com/specialistvlad/gridvm/internal/safety"
	"github.com/specialistvlad/gridvm/internal/state"
	"github.com/specialistvlad/gridvm/internal/trace"
)

// Run executes the graph to completion against the given state and
// goal, returning the ordered trace. A contained fault trips its zone
// and lets independent zones continue; a fatal escalation aborts the
// remaining schedule and is returned as *FatalFaultError. Every fault
// is both surfaced here and recorded in the trace.
func (v *VM) Run(ctx context.Context, st *state.State, goal map[string]any) ([]trace.Entry, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Info("🚀 Starting deterministic run.", "operators", len(v.order))

	sched, err := v.newScheduler()
	if err != nil {
		return v.recorder.Snapshot(), err
	}

	executed := make(map[string]struct{}, len(v.order))
	succeeded := make(map[string]bool, len(v.order))

	for {
		v.phase.set(PhaseScheduling)

		// Cooperative cancellation: checked between invocations only,
		// never mid-operator.
		if err := ctx.Err(); err != nil {
			logger.Warn("Run canceled between ticks.", "tick", v.clock.Current())
			return v.recorder.Snapshot(), err
		}

		name, ok := sched.Next(executed)
		if !ok {
			break
		}
		executed[name] = struct{}{}

		if reason, skip := v.shouldSkip(name, succeeded); skip {
			v.recordOutcome(ctx, name, trace.Fault(trace.FaultSkipped, reason))
			succeeded[name] = false
			if err := v.finishTick(ctx, st); err != nil {
				return v.recorder.Snapshot(), err
			}
			continue
		}

		v.phase.set(PhaseExecuting)
		outcome := v.execute(ctx, name, st, goal)
		v.recordOutcome(ctx, name, outcome)
		succeeded[name] = outcome.OK

		if !outcome.OK {
			z, err := v.zones.Trip(name)
			if err != nil {
				return v.recorder.Snapshot(), err
			}
			logger.Warn("Zone tripped by fault.", "zone", z.ID, "operator", name, "fault", outcome.Fault)

			if z.Policy.Fatal() {
				v.phase.set(PhaseFaulted)
				logger.Error("Fatal escalation, aborting run.", "zone", z.ID, "operator", name)
				if err := v.finishTick(ctx, st); err != nil {
					return v.recorder.Snapshot(), err
				}
				return v.recorder.Snapshot(), &FatalFaultError{
					Operator: name,
					Zone:     z.ID,
					Kind:     outcome.Fault,
					Err:      fmt.Errorf("%s", outcome.Detail),
				}
			}
		}

		if err := v.finishTick(ctx, st); err != nil {
			return v.recorder.Snapshot(), err
		}
	}

	v.phase.set(PhaseDone)
	logger.Info("🏁 Run finished.", "ticks", v.clock.Current(), "trace_entries", v.recorder.Len())
	return v.recorder.Snapshot(), nil
}

// shouldSkip decides whether an operator must be skipped instead of
// executed: its zone already tripped, or an upstream dependency did
// not complete.
func (v *VM) shouldSkip(name string, succeeded map[string]bool) (string, bool) {
	if v.zones.Tripped(name) {
		z, _ := v.zones.ZoneOf(name)
		return fmt.Sprintf("zone %q tripped", z.ID), true
	}
	for _, dep := range v.deps[name] {
		if !succeeded[dep] {
			return fmt.Sprintf("upstream failure of %q", dep), true
		}
	}
	return "", false
}

// execute runs the full safety-wrapped invocation of one operator and
// classifies any failure into a fault outcome. The invocation is
// transactional: when the post-check rejects the mutated state, the
// pre-invocation snapshot is restored so the violation cannot poison
// independent zones.
func (v *VM) execute(ctx context.Context, name string, st *state.State, goal map[string]any) trace.Outcome {
	before := st.Snapshot()
	if err := v.envelope.PreCheck(name, before); err != nil {
		return faultOutcome(err)
	}

	op, err := v.library.Lookup(name)
	if err != nil {
		// Unreachable after bind-time validation, but never panic the
		// run loop over it.
		return trace.Fault(trace.FaultExecution, err.Error())
	}

	result, err := op.Execute(ctx, st, goal)
	if err != nil {
		st.Replace(before)
		return trace.Fault(trace.FaultExecution, err.Error())
	}

	if err := v.envelope.PostCheck(name, st.Snapshot()); err != nil {
		st.Replace(before)
		return faultOutcome(err)
	}

	return trace.Ok(result)
}

// recordOutcome stamps the outcome with the current tick and appends
// it to the trace.
func (v *VM) recordOutcome(ctx context.Context, name string, outcome trace.Outcome) {
	entry := trace.Entry{
		Tick:     v.clock.Current(),
		Operator: name,
		Outcome:  outcome,
	}
	v.recorder.Record(entry)

	logger := ctxlog.FromContext(ctx)
	if outcome.OK {
		logger.Debug("Operator completed.", "tick", entry.Tick, "operator", name)
	} else {
		logger.Debug("Operator did not complete.", "tick", entry.Tick, "operator", name, "fault", outcome.Fault, "detail", outcome.Detail)
	}
}

// finishTick advances the clock, refills rate-limit buckets and takes
// a checkpoint when the cadence is due.
func (v *VM) finishTick(ctx context.Context, st *state.State) error {
	consumed := v.clock.Advance()
	v.envelope.Tick()

	if v.opts.Checkpoints == nil || v.opts.CheckpointEvery <= 0 {
		return nil
	}
	if (consumed+1)%uint64(v.opts.CheckpointEvery) != 0 {
		return nil
	}

	v.phase.set(PhaseCheckpointing)
	cp, err := v.opts.Checkpoints.Take(ctx, consumed, st.Snapshot())
	if err != nil {
		return fmt.Errorf("checkpoint at tick %d failed: %w", consumed, err)
	}
	ctxlog.FromContext(ctx).Debug("Checkpoint taken.", "tick", cp.Tick, "hash", cp.Hash)
	return nil
}

// Checkpoint takes an on-demand checkpoint of the given state at the
// current tick, independent of the periodic cadence.
func (v *VM) Checkpoint(ctx context.Context, st *state.State) (uint64, error) {
	if v.opts.Checkpoints == nil {
		return 0, fmt.Errorf("no checkpoint manager configured")
	}
	tickNow := v.clock.Current()
	if _, err := v.opts.Checkpoints.Take(ctx, tickNow, st.Snapshot()); err != nil {
		return 0, err
	}
	return tickNow, nil
}

// faultOutcome maps a safety envelope error to its fault kind.
func faultOutcome(err error) trace.Outcome {
	var rerr *safety.RateLimitError
	if errors.As(err, &rerr) {
		return trace.Fault(trace.FaultRateLimited, err.Error())
	}
	return trace.Fault(trace.FaultSafetyViolation, err.Error())
}
