// Package safety enforces declarative runtime bounds around operator
// execution: numeric intervals on state variables, validated before
// and after every invocation, and a per-operator token bucket limiting
// invocation rate. Violations are typed errors that the VM records as
// contained faults; nothing is ever silently dropped.
package safety

import "fmt"

// Interval is an allowed numeric range for one state variable. A nil
// bound means that side is unbounded.
type Interval struct {
	Min *float64
	Max *float64
}

// Constraints maps a state-observable name to its allowed interval.
type Constraints map[string]Interval

// ViolationError reports a state variable outside its declared
// interval, naming the violated constraint.
type ViolationError struct {
	Key   string
	Value float64
	Bound Interval
}

func (e *ViolationError) Error() string {
	switch {
	case e.Bound.Min != nil && e.Bound.Max != nil:
		return fmt.Sprintf("safety violation: %s=%v outside [%v, %v]", e.Key, e.Value, *e.Bound.Min, *e.Bound.Max)
	case e.Bound.Min != nil:
		return fmt.Sprintf("safety violation: %s=%v below minimum %v", e.Key, e.Value, *e.Bound.Min)
	case e.Bound.Max != nil:
		return fmt.Sprintf("safety violation: %s=%v above maximum %v", e.Key, e.Value, *e.Bound.Max)
	default:
		return fmt.Sprintf("safety violation: %s=%v", e.Key, e.Value)
	}
}

// RateLimitError reports an invocation rejected because the operator's
// token bucket is exhausted.
type RateLimitError struct {
	Operator string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for operator %q", e.Operator)
}
