package vm

import "sync/atomic"

// Phase is the VM's position in its per-run state machine:
// Idle → Scheduling → Executing → (Faulted | Checkpointing) →
// Scheduling → … → Done.
type Phase int32

const (
	PhaseIdle Phase = iota
	PhaseScheduling
	PhaseExecuting
	PhaseCheckpointing
	PhaseFaulted
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseScheduling:
		return "scheduling"
	case PhaseExecuting:
		return "executing"
	case PhaseCheckpointing:
		return "checkpointing"
	case PhaseFaulted:
		return "faulted"
	case PhaseDone:
		return "done"
	default:
		return "unknown"
	}
}

// phaseTracker lets external observers (health endpoint, tests) read
// the phase while a run is in flight.
type phaseTracker struct {
	v atomic.Int32
}

func (t *phaseTracker) set(p Phase) { t.v.Store(int32(p)) }
func (t *phaseTracker) get() Phase  { return Phase(t.v.Load()) }
