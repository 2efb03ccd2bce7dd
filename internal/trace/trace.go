// Package trace provides the append-only execution log of a run and
// the replay buffer derived from it.
//
// The trace is the run's sole authoritative record: every scheduled
// operator leaves exactly one entry at its tick, whether it completed,
// faulted, or was skipped behind a tripped zone. Entries are value
// types and immutable once appended; ordering is the trace's only
// index. Replay determinism follows directly from trace determinism.
package trace

import "sync"

// FaultKind classifies a non-Ok outcome.
type FaultKind string

const (
	// FaultExecution marks an error returned by the operator itself.
	FaultExecution FaultKind = "execution"

	// FaultSafetyViolation marks a state variable caught outside its
	// declared interval before or after an invocation.
	FaultSafetyViolation FaultKind = "safety_violation"

	// FaultRateLimited marks an invocation rejected by an exhausted
	// token bucket.
	FaultRateLimited FaultKind = "rate_limited"

	// FaultSkipped marks an operator that was never invoked because
	// its zone tripped or an upstream dependency failed.
	FaultSkipped FaultKind = "skipped"
)

// Outcome is the result of one scheduled operator: either Ok with a
// result value, or a fault with a kind and human-readable detail.
type Outcome struct {
	OK     bool      `json:"ok"`
	Result any       `json:"result,omitempty"`
	Fault  FaultKind `json:"fault,omitempty"`
	Detail string    `json:"detail,omitempty"`
}

// Ok builds a successful outcome.
func Ok(result any) Outcome {
	return Outcome{OK: true, Result: result}
}

// Fault builds a fault outcome.
func Fault(kind FaultKind, detail string) Outcome {
	return Outcome{Fault: kind, Detail: detail}
}

// Entry is one record of the execution log.
type Entry struct {
	Tick     uint64  `json:"tick"`
	Operator string  `json:"operator"`
	Outcome  Outcome `json:"outcome"`
}

// Recorder is the append-only, ordered log of trace entries. Appends
// and snapshots are mutex-guarded so external observers (health
// endpoint, tests) can read while a run is in flight.
type Recorder struct {
	mutex   sync.RWMutex
	entries []Entry
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record appends an entry. Entries are never modified or removed after
// this point.
func (r *Recorder) Record(entry Entry) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.entries = append(r.entries, entry)
}

// Snapshot returns a copy of the full ordered log.
func (r *Recorder) Snapshot() []Entry {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return append([]Entry(nil), r.entries...)
}

// Len returns the number of recorded entries.
func (r *Recorder) Len() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.entries)
}
