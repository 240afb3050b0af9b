package graph

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/mzalog/supply-chain-sim/sim/geo"
)

// RandomConfig parameterizes the random k-NN network builder.
type RandomConfig struct {
	NumNodes   int // default 15
	KNeighbors int // default 3

	// Geographic window nodes are scattered over; defaults cover Central Europe.
	LatMin, LatMax float64 // default [45, 55]
	LonMin, LonMax float64 // default [9, 29]
}

func (c *RandomConfig) applyDefaults() {
	if c.NumNodes == 0 {
		c.NumNodes = 15
	}
	if c.KNeighbors == 0 {
		c.KNeighbors = 3
	}
	if c.LatMin == 0 && c.LatMax == 0 {
		c.LatMin, c.LatMax = 45.0, 55.0
	}
	if c.LonMin == 0 && c.LonMax == 0 {
		c.LonMin, c.LonMax = 9.0, 29.0
	}
}

const randomSpeedKmh = 60.0

// NewRandomNetwork builds a random k-nearest-neighbour network. Nodes take
// IDs N1..Nn, a uniformly random kind and position, capacity in [1, 3], and
// an inspection flag with probability 0.3. Every edge gets a reverse twin;
// disconnected components are repaired afterwards.
func NewRandomNetwork(cfg RandomConfig, rng *rand.Rand) (*Network, error) {
	cfg.applyDefaults()
	if cfg.NumNodes <= 0 {
		return nil, ErrEmptyGraph
	}

	g := NewNetwork()
	for i := 0; i < cfg.NumNodes; i++ {
		n := &Node{
			ID:           fmt.Sprintf("N%d", i+1),
			Kind:         Kinds[rng.Intn(len(Kinds))],
			Lat:          cfg.LatMin + rng.Float64()*(cfg.LatMax-cfg.LatMin),
			Lon:          cfg.LonMin + rng.Float64()*(cfg.LonMax-cfg.LonMin),
			Capacity:     1 + rng.Intn(3),
			IsInspection: rng.Float64() < 0.3,
		}
		if err := g.AddNode(n); err != nil {
			return nil, err
		}
	}

	nodes := g.Nodes()
	for _, u := range nodes {
		type candidate struct {
			dist float64
			node *Node
		}
		cands := make([]candidate, 0, len(nodes)-1)
		for _, v := range nodes {
			if v == u {
				continue
			}
			cands = append(cands, candidate{dist: geo.Haversine(u.Lat, u.Lon, v.Lat, v.Lon), node: v})
		}
		sort.Slice(cands, func(i, j int) bool {
			if cands[i].dist != cands[j].dist {
				return cands[i].dist < cands[j].dist
			}
			return cands[i].node.Index() < cands[j].node.Index()
		})
		k := cfg.KNeighbors
		if k > len(cands) {
			k = len(cands)
		}
		for _, c := range cands[:k] {
			// 60 km/h makes the travel time in minutes equal the distance.
			baseTime := c.dist / randomSpeedKmh * 60.0
			_ = g.AddEdge(&Edge{Source: u.ID, Target: c.node.ID, DistanceKm: c.dist, BaseTravelTime: baseTime})
			_ = g.AddEdge(&Edge{Source: c.node.ID, Target: u.ID, DistanceKm: c.dist, BaseTravelTime: baseTime})
		}
	}

	g.ensureConnected(randomSpeedKmh)
	return g, nil
}
