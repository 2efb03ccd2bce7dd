// Package graph defines the operator dependency DAG and its
// deterministic topological ordering.
//
// The graph is built once, validated, and then treated as frozen: the
// VM derives its execution order exactly once per run, and two graphs
// with the same edge set always produce the same order regardless of
// the order in which edges were added.
package graph

import (
	"sort"
	"sync"
)

// Graph is a DAG of operator names with explicit dependency edges.
// An edge src→dst means dst depends on src.
type Graph struct {
	mutex      sync.RWMutex
	successors map[string][]string
	preds      map[string][]string
}

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{
		successors: make(map[string][]string),
		preds:      make(map[string][]string),
	}
}

// AddNode registers a node with no edges. Adding an existing node is a
// no-op, matching the idempotent behavior callers expect when the same
// operator appears in several program files.
func (g *Graph) AddNode(id string) {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	g.ensureNode(id)
}

// AddEdge registers a dependency src→dst (dst depends on src). Both
// endpoints are auto-registered if they were not added explicitly.
// Self-referential edges are rejected at insertion time because they
// can never be part of a valid DAG.
func (g *Graph) AddEdge(src, dst string) error {
	if src == dst {
		return &ConstructionError{Node: src, Reason: "self-referential edge"}
	}

	g.mutex.Lock()
	defer g.mutex.Unlock()

	g.ensureNode(src)
	g.ensureNode(dst)

	for _, existing := range g.successors[src] {
		if existing == dst {
			return nil // duplicate edge, keep in-degrees accurate
		}
	}

	g.successors[src] = append(g.successors[src], dst)
	g.preds[dst] = append(g.preds[dst], src)
	return nil
}

// ensureNode must be called with the write lock held.
func (g *Graph) ensureNode(id string) {
	if _, ok := g.successors[id]; ok {
		return
	}
	g.successors[id] = nil
	g.preds[id] = nil
}

// Len returns the number of registered nodes.
func (g *Graph) Len() int {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return len(g.successors)
}

// Contains reports whether a node is registered.
func (g *Graph) Contains(id string) bool {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	_, ok := g.successors[id]
	return ok
}

// Nodes returns all node identifiers in lexicographic order.
func (g *Graph) Nodes() []string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	out := make([]string, 0, len(g.successors))
	for id := range g.successors {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Dependencies returns the direct predecessors of a node (the
// operators it depends on).
func (g *Graph) Dependencies(id string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	if _, ok := g.successors[id]; !ok {
		return nil, &ConstructionError{Node: id, Reason: "node not found"}
	}
	return append([]string(nil), g.preds[id]...), nil
}

// Dependents returns the direct successors of a node (the operators
// that depend on it).
func (g *Graph) Dependents(id string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	if _, ok := g.successors[id]; !ok {
		return nil, &ConstructionError{Node: id, Reason: "node not found"}
	}
	return append([]string(nil), g.successors[id]...), nil
}
