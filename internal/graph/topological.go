package graph

import "sort"

// Topological computes a deterministic topological order of the graph
// using Kahn's algorithm. The ready set is seeded with all
// zero-in-degree nodes sorted lexicographically, and every batch of
// newly ready nodes is sorted before insertion, so ties between
// independent nodes always resolve by identifier and never by map
// iteration or edge insertion order.
//
// If the produced order is shorter than the node count, the remaining
// nodes form at least one cycle and a *ConstructionError is returned.
func (g *Graph) Topological() ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	indegree := make(map[string]int, len(g.successors))
	for id := range g.successors {
		indegree[id] = len(g.preds[id])
	}

	var ready []string
	for id, deg := range indegree {
		if deg == 0 {
			ready = append(ready, id)
		}
	}
	sort.Strings(ready)

	order := make([]string, 0, len(indegree))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)

		var unlocked []string
		for _, succ := range g.successors[id] {
			indegree[succ]--
			if indegree[succ] == 0 {
				unlocked = append(unlocked, succ)
			}
		}
		sort.Strings(unlocked)
		ready = append(ready, unlocked...)
	}

	if len(order) != len(indegree) {
		return nil, &ConstructionError{Reason: "cycle detected in operator graph"}
	}
	return order, nil
}
