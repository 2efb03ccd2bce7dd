package zone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefineAndZoneOf(t *testing.T) {
	s := NewSet()
	require.NoError(t, s.Define("ingest", PolicyContain, "n2", "n1"))

	z, ok := s.ZoneOf("n1")
	require.True(t, ok)
	assert.Equal(t, "ingest", z.ID)
	assert.Equal(t, []string{"n1", "n2"}, z.Members)
	assert.Equal(t, StatusClosed, z.Status())
}

func TestDefineRejectsDuplicates(t *testing.T) {
	s := NewSet()
	require.NoError(t, s.Define("a", PolicyContain, "n1"))

	assert.Error(t, s.Define("a", PolicyContain, "n2"), "duplicate zone id")
	assert.Error(t, s.Define("b", PolicyContain, "n1"), "operator already zoned")
	assert.Error(t, s.Define("c", Policy("explode"), "n3"), "unknown policy")
}

func TestEnsureOperatorCreatesSingletonZone(t *testing.T) {
	s := NewSet()
	s.EnsureOperator("lonely")

	z, ok := s.ZoneOf("lonely")
	require.True(t, ok)
	assert.Equal(t, "lonely", z.ID)
	assert.Equal(t, []string{"lonely"}, z.Members)
	assert.Equal(t, PolicyContain, z.Policy)

	// Idempotent, and it never overrides an explicit grouping.
	s.EnsureOperator("lonely")
	require.NoError(t, s.Define("grouped", PolicyFatal, "n1"))
	s.EnsureOperator("n1")
	z, _ = s.ZoneOf("n1")
	assert.Equal(t, "grouped", z.ID)
}

func TestTripAndReset(t *testing.T) {
	s := NewSet()
	require.NoError(t, s.Define("z", PolicyContain, "n1", "n2"))

	assert.False(t, s.Tripped("n1"))

	z, err := s.Trip("n1")
	require.NoError(t, err)
	assert.Equal(t, StatusTripped, z.Status())
	assert.Equal(t, 1, z.Trips())

	// Tripping contains the whole zone, not just the faulty member.
	assert.True(t, s.Tripped("n1"))
	assert.True(t, s.Tripped("n2"))

	// Zones never self-heal; only an explicit reset closes them.
	require.NoError(t, s.Reset("z"))
	assert.False(t, s.Tripped("n1"))
	assert.Equal(t, 1, z.Trips(), "reset clears containment, not history")
}

func TestTripUnzonedOperator(t *testing.T) {
	s := NewSet()
	_, err := s.Trip("ghost")
	assert.Error(t, err)
}

func TestResetUnknownZone(t *testing.T) {
	s := NewSet()
	assert.Error(t, s.Reset("ghost"))
}

func TestZonesSortedByID(t *testing.T) {
	s := NewSet()
	require.NoError(t, s.Define("b", PolicyContain, "n2"))
	require.NoError(t, s.Define("a", PolicyFatal, "n1"))

	zones := s.Zones()
	require.Len(t, zones, 2)
	assert.Equal(t, "a", zones[0].ID)
	assert.Equal(t, "b", zones[1].ID)
}
