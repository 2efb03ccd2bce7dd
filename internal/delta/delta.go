// Package delta computes minimal structural diffs between two state
// snapshots. Deltas bound checkpoint memory: the checkpoint manager
// stores a delta from the previous snapshot instead of a full copy, and
// reconstructs full snapshots by applying stored deltas forward.
package delta

import (
	"reflect"
	"sort"

	"github.com/specialistvlad/gridvm/internal/state"
)

// Delta describes how one snapshot differs from another at the top
// level of the variable map.
type Delta struct {
	// Added holds keys present in the new snapshot but not the old one.
	Added map[string]any `json:"added,omitempty"`

	// Changed holds keys present in both snapshots whose values differ,
	// mapped to their new values.
	Changed map[string]any `json:"changed,omitempty"`

	// Removed lists keys present in the old snapshot but not the new one.
	Removed []string `json:"removed,omitempty"`
}

// Empty reports whether the delta describes no change at all.
func (d *Delta) Empty() bool {
	return len(d.Added) == 0 && len(d.Changed) == 0 && len(d.Removed) == 0
}

// Compute diffs two snapshots. Neither input is mutated, and the
// returned delta holds deep copies, so it stays valid however the
// inputs evolve afterwards.
func Compute(old, new map[string]any) *Delta {
	d := &Delta{
		Added:   make(map[string]any),
		Changed: make(map[string]any),
	}

	for key, newVal := range new {
		oldVal, ok := old[key]
		if !ok {
			d.Added[key] = state.CloneValue(newVal)
			continue
		}
		if !reflect.DeepEqual(oldVal, newVal) {
			d.Changed[key] = state.CloneValue(newVal)
		}
	}

	for key := range old {
		if _, ok := new[key]; !ok {
			d.Removed = append(d.Removed, key)
		}
	}
	// Map iteration order is random; persisted deltas should not be.
	sort.Strings(d.Removed)

	return d
}

// Apply reconstructs the newer snapshot from the older one plus a
// delta. The base is not mutated; the result is a fresh map.
func Apply(base map[string]any, d *Delta) map[string]any {
	out := make(map[string]any, len(base)+len(d.Added))
	for k, v := range base {
		out[k] = state.CloneValue(v)
	}
	for _, k := range d.Removed {
		delete(out, k)
	}
	for k, v := range d.Added {
		out[k] = state.CloneValue(v)
	}
	for k, v := range d.Changed {
		out[k] = state.CloneValue(v)
	}
	return out
}
