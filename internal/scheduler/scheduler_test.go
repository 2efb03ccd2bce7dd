package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/gridvm/internal/graph"
)

func drain(t *testing.T, s Scheduler) []string {
	t.Helper()

	executed := make(map[string]struct{})
	var got []string
	for {
		id, ok := s.Next(executed)
		if !ok {
			return got
		}
		got = append(got, id)
		executed[id] = struct{}{}
		require.Less(t, len(got), 100, "scheduler did not terminate")
	}
}

func TestDeterministicFollowsOrder(t *testing.T) {
	s := NewDeterministic([]string{"n1", "n2", "n3"})
	assert.Equal(t, []string{"n1", "n2", "n3"}, drain(t, s))
}

func TestDeterministicExhausted(t *testing.T) {
	s := NewDeterministic(nil)
	_, ok := s.Next(map[string]struct{}{})
	assert.False(t, ok)
}

func TestPriorityPrefersHigherPriority(t *testing.T) {
	g := graph.New()
	g.AddNode("low")
	g.AddNode("high")
	g.AddNode("mid")

	s, err := NewPriority(g, map[string]int{"high": 10, "mid": 5})
	require.NoError(t, err)

	assert.Equal(t, []string{"high", "mid", "low"}, drain(t, s))
}

func TestPriorityRespectsDependencies(t *testing.T) {
	g := graph.New()
	// "urgent" has the highest priority but depends on "base", so the
	// dependency must still run first.
	require.NoError(t, g.AddEdge("base", "urgent"))
	g.AddNode("other")

	s, err := NewPriority(g, map[string]int{"urgent": 100})
	require.NoError(t, err)

	assert.Equal(t, []string{"base", "urgent", "other"}, drain(t, s))
}

func TestPriorityTieBreaksByTopoRankThenID(t *testing.T) {
	g := graph.New()
	// c is a root; b depends on a. Equal priorities everywhere, so the
	// topological order (a, b, c alphabetical among roots) decides.
	require.NoError(t, g.AddEdge("a", "b"))
	g.AddNode("c")

	s, err := NewPriority(g, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, drain(t, s))
}

func TestPriorityRejectsCyclicGraph(t *testing.T) {
	g := graph.New()
	require.NoError(t, g.AddEdge("a", "b"))
	require.NoError(t, g.AddEdge("b", "a"))

	_, err := NewPriority(g, nil)
	var cerr *graph.ConstructionError
	assert.ErrorAs(t, err, &cerr)
}

func TestPriorityIsReproducibleFromExecutedSet(t *testing.T) {
	g := graph.New()
	require.NoError(t, g.AddEdge("a", "c"))
	require.NoError(t, g.AddEdge("b", "c"))

	priorities := map[string]int{"b": 1}

	s1, err := NewPriority(g, priorities)
	require.NoError(t, err)
	first := drain(t, s1)

	// A fresh scheduler fed the same executed sets makes the same calls.
	s2, err := NewPriority(g, priorities)
	require.NoError(t, err)
	second := drain(t, s2)

	assert.Equal(t, first, second)
	assert.Equal(t, []string{"b", "a", "c"}, first)
}
