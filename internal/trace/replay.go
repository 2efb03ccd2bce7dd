package trace

// ReplayEntry is one replayable step of a run: the operator that
// executed at a tick and the result it produced. Faulted and skipped
// entries carry no replayable result and are not projected.
type ReplayEntry struct {
	Tick     uint64 `json:"tick"`
	Operator string `json:"operator"`
	Result   any    `json:"result"`
}

// Replay projects the recorder's current log into the replay buffer.
// It is a pure derivation: no entry is re-executed and the buffer
// carries no state of its own.
func (r *Recorder) Replay() []ReplayEntry {
	snapshot := r.Snapshot()
	out := make([]ReplayEntry, 0, len(snapshot))
	for _, entry := range snapshot {
		if !entry.Outcome.OK {
			continue
		}
		out = append(out, ReplayEntry{
			Tick:     entry.Tick,
			Operator: entry.Operator,
			Result:   entry.Outcome.Result,
		})
	}
	return out
}
