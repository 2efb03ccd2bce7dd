// Package zone partitions operators into fault-isolation zones.
//
// A fault inside a zone trips only that zone: its remaining members
// and their downstream dependents are skipped for the current run
// while unrelated zones keep executing. Zones never self-heal — a
// tripped zone stays tripped until an explicit Reset call.
package zone

import (
	"fmt"
	"sort"
	"sync"
)

// Policy decides what a trip means for the run as a whole.
type Policy string

const (
	// PolicyContain records the trip and lets independent zones
	// continue. This is the default.
	PolicyContain Policy = "contain"

	// PolicyFatal aborts the whole run on the first trip.
	PolicyFatal Policy = "fatal"
)

// Fatal reports whether a trip under this policy aborts the run.
func (p Policy) Fatal() bool { return p == PolicyFatal }

// Status is the lifecycle state of a zone.
type Status string

const (
	StatusClosed  Status = "closed"
	StatusTripped Status = "tripped"
)

// Zone is a named fault-containment grouping of operators.
type Zone struct {
	ID      string
	Members []string
	Policy  Policy

	status Status
	trips  int
}

// Status returns the zone's current lifecycle state.
func (z *Zone) Status() Status { return z.status }

// Trips returns how many faults the zone has contained.
func (z *Zone) Trips() int { return z.trips }

// Set owns all zones of one VM instance and the operator→zone
// assignment. Every operator belongs to exactly one zone; operators
// not grouped explicitly get a singleton zone of their own.
type Set struct {
	mutex      sync.RWMutex
	zones      map[string]*Zone
	byOperator map[string]string
}

// NewSet creates an empty zone set.
func NewSet() *Set {
	return &Set{
		zones:      make(map[string]*Zone),
		byOperator: make(map[string]string),
	}
}

// Define creates a named zone with the given members. Defining a zone
// twice, or claiming an operator that already belongs to another zone,
// is a configuration error.
func (s *Set) Define(id string, policy Policy, members ...string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.zones[id]; exists {
		return fmt.Errorf("zone %q already defined", id)
	}
	if policy == "" {
		policy = PolicyContain
	}
	if policy != PolicyContain && policy != PolicyFatal {
		return fmt.Errorf("zone %q: unknown escalation policy %q", id, policy)
	}

	for _, op := range members {
		if owner, taken := s.byOperator[op]; taken {
			return fmt.Errorf("operator %q already belongs to zone %q", op, owner)
		}
	}

	sorted := append([]string(nil), members...)
	sort.Strings(sorted)

	s.zones[id] = &Zone{
		ID:      id,
		Members: sorted,
		Policy:  policy,
		status:  StatusClosed,
	}
	for _, op := range members {
		s.byOperator[op] = id
	}
	return nil
}

// EnsureOperator guarantees the operator is zoned, creating a
// singleton zone named after it when it was not grouped explicitly.
func (s *Set) EnsureOperator(op string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.byOperator[op]; ok {
		return
	}
	s.zones[op] = &Zone{
		ID:      op,
		Members: []string{op},
		Policy:  PolicyContain,
		status:  StatusClosed,
	}
	s.byOperator[op] = op
}

// ZoneOf returns the zone the operator belongs to.
func (s *Set) ZoneOf(op string) (*Zone, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	id, ok := s.byOperator[op]
	if !ok {
		return nil, false
	}
	return s.zones[id], true
}

// Trip transitions the operator's zone to Tripped, increments its trip
// counter and returns the zone so the caller can consult its policy.
func (s *Set) Trip(op string) (*Zone, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	id, ok := s.byOperator[op]
	if !ok {
		return nil, fmt.Errorf("operator %q belongs to no zone", op)
	}
	z := s.zones[id]
	z.status = StatusTripped
	z.trips++
	return z, nil
}

// Tripped reports whether the operator's zone has tripped.
func (s *Set) Tripped(op string) bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	id, ok := s.byOperator[op]
	if !ok {
		return false
	}
	return s.zones[id].status == StatusTripped
}

// Reset explicitly closes a tripped zone. The trip counter is kept:
// resets clear containment, not history.
func (s *Set) Reset(id string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	z, ok := s.zones[id]
	if !ok {
		return fmt.Errorf("zone %q not defined", id)
	}
	z.status = StatusClosed
	return nil
}

// Zones returns all zones ordered by ID.
func (s *Set) Zones() []*Zone {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := make([]*Zone, 0, len(s.zones))
	for _, z := range s.zones {
		out = append(out, z)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
