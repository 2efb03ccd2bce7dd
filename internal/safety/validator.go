package safety

import "sort"

// Validator evaluates constraints against read-only state snapshots.
type Validator struct {
	constraints Constraints
}

// NewValidator creates a validator over the given constraints.
func NewValidator(constraints Constraints) *Validator {
	return &Validator{constraints: constraints}
}

// Validate checks every constraint whose key is present in the
// snapshot and returns a *ViolationError for the first violated one.
// Keys are checked in lexicographic order so the reported violation is
// deterministic when several variables are out of bounds at once.
// Non-numeric values are outside the validator's scope and ignored.
func (v *Validator) Validate(snapshot map[string]any) error {
	keys := make([]string, 0, len(v.constraints))
	for key := range v.constraints {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		raw, ok := snapshot[key]
		if !ok {
			continue
		}
		value, ok := asFloat(raw)
		if !ok {
			continue
		}

		bound := v.constraints[key]
		if bound.Min != nil && value < *bound.Min {
			return &ViolationError{Key: key, Value: value, Bound: bound}
		}
		if bound.Max != nil && value > *bound.Max {
			return &ViolationError{Key: key, Value: value, Bound: bound}
		}
	}
	return nil
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
