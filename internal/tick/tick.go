// Package tick provides the monotonic logical clock that drives VM
// execution steps. Every scheduled operator consumes exactly one tick,
// and ticks never repeat or move backwards within a run.
package tick

// Counter is a strictly increasing logical clock. The zero value is
// ready to use and starts at tick 0.
//
// Counter is not safe for concurrent use; a VM instance owns exactly
// one counter and execution within a run is single-threaded.
type Counter struct {
	current uint64
}

// Current returns the tick that the next execution step will be
// stamped with.
func (c *Counter) Current() uint64 {
	return c.current
}

// Advance moves the clock forward by one step and returns the tick
// that was just consumed.
func (c *Counter) Advance() uint64 {
	t := c.current
	c.current++
	return t
}
