// Package state holds the externally owned domain object that operators
// read and mutate during a run.
//
// The VM itself treats the state as opaque: it never interprets
// individual variables except through snapshots handed to the delta and
// checkpoint subsystems, and through read-only views handed to the
// safety validator. Values must stay within the JSON-native set
// (nil, bool, float64, string, []any, map[string]any) so that snapshots
// serialize to canonical, byte-stable form.
package state

// State is a mutable bag of named variables shared by all operators of
// one run. It is not safe for concurrent use; execution within a run is
// single-threaded by design.
type State struct {
	vars map[string]any
}

// New creates a state seeded from the given variables. The seed map is
// deep-copied, so the caller keeps ownership of its argument.
func New(vars map[string]any) *State {
	return &State{vars: cloneMap(vars)}
}

// Get returns the value of a variable and whether it is set.
func (s *State) Get(key string) (any, bool) {
	v, ok := s.vars[key]
	return v, ok
}

// Set assigns a variable.
func (s *State) Set(key string, value any) {
	if s.vars == nil {
		s.vars = make(map[string]any)
	}
	s.vars[key] = value
}

// Delete removes a variable if present.
func (s *State) Delete(key string) {
	delete(s.vars, key)
}

// Snapshot returns a deep copy of all variables. Mutating the returned
// map never affects the live state, which is what makes snapshots safe
// to hash, diff and persist.
func (s *State) Snapshot() map[string]any {
	return cloneMap(s.vars)
}

// Replace swaps the entire variable set, deep-copying the input. Used
// by checkpoint restore.
func (s *State) Replace(vars map[string]any) {
	s.vars = cloneMap(vars)
}

// Len returns the number of variables currently set.
func (s *State) Len() int {
	return len(s.vars)
}

func cloneMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = CloneValue(v)
	}
	return out
}

// CloneValue deep-copies a JSON-native value. Scalars are returned
// as-is; maps and slices are copied recursively.
func CloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = CloneValue(item)
		}
		return out
	default:
		return val
	}
}
