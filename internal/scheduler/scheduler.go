// Package scheduler decides which operator runs at each tick when the
// graph alone leaves the choice ambiguous.
//
// Both implementations are pure functions of (graph, priorities,
// already-executed set) with no hidden state beyond a cursor, so any
// scheduling decision can be reproduced independently from the frozen
// graph. Ties resolve by explicit priority (higher first), then
// topological rank, then lexicographic identifier.
package scheduler

import (
	"github.com/specialistvlad/gridvm/internal/graph"
)

// Scheduler yields the next operator to run given the set of operators
// already dispatched (whatever their outcome). It returns false when
// the schedule is exhausted.
type Scheduler interface {
	Next(executed map[string]struct{}) (string, bool)
}

// Deterministic walks the frozen topological order with a cursor. With
// no priorities declared, the topological order is already fully
// deterministic, so nothing more is needed.
type Deterministic struct {
	order  []string
	cursor int
}

// NewDeterministic creates a scheduler over a frozen topological order.
func NewDeterministic(order []string) *Deterministic {
	return &Deterministic{order: append([]string(nil), order...)}
}

// Next returns the first not-yet-executed operator in order.
func (s *Deterministic) Next(executed map[string]struct{}) (string, bool) {
	for s.cursor < len(s.order) {
		id := s.order[s.cursor]
		if _, done := executed[id]; done {
			s.cursor++
			continue
		}
		return id, true
	}
	return "", false
}

// ensure interface compliance at compile time.
var (
	_ Scheduler = (*Deterministic)(nil)
	_ Scheduler = (*Priority)(nil)
)

// Priority picks from the ready set by declared priority, falling back
// to topological rank and then identifier. Dependencies always win
// over priorities: an operator is only a candidate once every direct
// dependency has been dispatched.
type Priority struct {
	order      []string
	rank       map[string]int
	deps       map[string][]string
	priorities map[string]int
}

// NewPriority creates a priority scheduler for the given graph. The
// graph must be acyclic; the error comes from Topological otherwise.
func NewPriority(g *graph.Graph, priorities map[string]int) (*Priority, error) {
	order, err := g.Topological()
	if err != nil {
		return nil, err
	}

	rank := make(map[string]int, len(order))
	deps := make(map[string][]string, len(order))
	for i, id := range order {
		rank[id] = i
		d, err := g.Dependencies(id)
		if err != nil {
			return nil, err
		}
		deps[id] = d
	}

	return &Priority{
		order:      order,
		rank:       rank,
		deps:       deps,
		priorities: priorities,
	}, nil
}

// Next scans the ready set and returns the best candidate.
func (s *Priority) Next(executed map[string]struct{}) (string, bool) {
	best := ""
	found := false

	for _, id := range s.order {
		if _, done := executed[id]; done {
			continue
		}
		if !s.ready(id, executed) {
			continue
		}
		if !found || s.better(id, best) {
			best = id
			found = true
		}
	}
	return best, found
}

func (s *Priority) ready(id string, executed map[string]struct{}) bool {
	for _, dep := range s.deps[id] {
		if _, done := executed[dep]; !done {
			return false
		}
	}
	return true
}

// better reports whether a should be scheduled before b.
func (s *Priority) better(a, b string) bool {
	pa, pb := s.priorities[a], s.priorities[b]
	if pa != pb {
		return pa > pb
	}
	if s.rank[a] != s.rank[b] {
		return s.rank[a] < s.rank[b]
	}
	return a < b
}
