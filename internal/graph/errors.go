package graph

import "fmt"

// ConstructionError reports a structural defect in the graph: a cycle,
// a self-edge, or a reference to an unknown node. Construction errors
// are fatal at build time and are never recovered from at runtime.
type ConstructionError struct {
	Node   string
	Reason string
}

func (e *ConstructionError) Error() string {
	if e.Node == "" {
		return fmt.Sprintf("graph construction failed: %s", e.Reason)
	}
	return fmt.Sprintf("graph construction failed: %s (node %q)", e.Reason, e.Node)
}
