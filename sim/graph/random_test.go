package graph

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRandomNetwork_Defaults(t *testing.T) {
	g, err := NewRandomNetwork(RandomConfig{}, rand.New(rand.NewSource(7)))
	require.NoError(t, err)

	assert.Equal(t, 15, g.NumNodes())
	for _, n := range g.Nodes() {
		assert.GreaterOrEqual(t, n.Lat, 45.0)
		assert.LessOrEqual(t, n.Lat, 55.0)
		assert.GreaterOrEqual(t, n.Lon, 9.0)
		assert.LessOrEqual(t, n.Lon, 29.0)
		assert.GreaterOrEqual(t, n.Capacity, 1)
		assert.LessOrEqual(t, n.Capacity, 3)
		assert.Contains(t, Kinds, n.Kind)
	}
}

func TestNewRandomNetwork_EdgesAreBidirectionalWithEqualWeights(t *testing.T) {
	g, err := NewRandomNetwork(RandomConfig{NumNodes: 20, KNeighbors: 3}, rand.New(rand.NewSource(11)))
	require.NoError(t, err)

	for _, u := range g.Nodes() {
		for _, v := range g.Nodes() {
			if !g.HasEdge(u.ID, v.ID) {
				continue
			}
			fwd, err := g.EdgeBetween(u.ID, v.ID)
			require.NoError(t, err)
			rev, err := g.EdgeBetween(v.ID, u.ID)
			require.NoError(t, err, "edge %s->%s missing its reverse", u.ID, v.ID)
			assert.Equal(t, fwd.DistanceKm, rev.DistanceKm)
			assert.Equal(t, fwd.BaseTravelTime, rev.BaseTravelTime)
		}
	}
}

func TestNewRandomNetwork_AlwaysConnected(t *testing.T) {
	// Small k on many nodes routinely leaves islands before repair.
	for seed := int64(0); seed < 10; seed++ {
		g, err := NewRandomNetwork(RandomConfig{NumNodes: 40, KNeighbors: 2}, rand.New(rand.NewSource(seed)))
		require.NoError(t, err)
		assert.True(t, g.Connected(), "seed %d produced a disconnected graph", seed)
	}
}

func TestNewRandomNetwork_DeterministicForSeed(t *testing.T) {
	build := func() *Network {
		g, err := NewRandomNetwork(RandomConfig{NumNodes: 12, KNeighbors: 3}, rand.New(rand.NewSource(99)))
		require.NoError(t, err)
		return g
	}
	a, b := build(), build()

	require.Equal(t, a.NumNodes(), b.NumNodes())
	require.Equal(t, a.NumEdges(), b.NumEdges())
	for i, n := range a.Nodes() {
		m := b.Nodes()[i]
		assert.Equal(t, n.ID, m.ID)
		assert.Equal(t, n.Kind, m.Kind)
		assert.Equal(t, n.Lat, m.Lat)
		assert.Equal(t, n.Lon, m.Lon)
		assert.Equal(t, n.Capacity, m.Capacity)
	}
}

func TestNewRandomNetwork_ZeroNodes(t *testing.T) {
	_, err := NewRandomNetwork(RandomConfig{NumNodes: -1}, rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, ErrEmptyGraph)
}

func TestNewRandomNetwork_TravelTimeEqualsDistance(t *testing.T) {
	// At 60 km/h the minute travel time equals the kilometre distance.
	g, err := NewRandomNetwork(RandomConfig{NumNodes: 10, KNeighbors: 3}, rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	checked := 0
	for _, u := range g.Nodes() {
		for _, v := range g.Nodes() {
			if g.HasEdge(u.ID, v.ID) {
				e, err := g.EdgeBetween(u.ID, v.ID)
				require.NoError(t, err)
				assert.InDelta(t, e.DistanceKm, e.BaseTravelTime, 1e-9)
				checked++
			}
		}
	}
	assert.NotZero(t, checked)
}
