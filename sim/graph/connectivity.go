package graph

import (
	"math"
	"sort"

	gonumgraph "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/mzalog/supply-chain-sim/sim/geo"
)

// Connected reports whether the undirected projection of the network is a
// single component.
func (g *Network) Connected() bool {
	if len(g.nodes) == 0 {
		return true
	}
	return len(g.components()) == 1
}

// components returns the undirected connected components, each sorted by
// arena index, listed in order of their smallest member.
func (g *Network) components() [][]int64 {
	raw := topo.ConnectedComponents(gonumgraph.Undirect{G: g.view()})
	comps := make([][]int64, 0, len(raw))
	for _, comp := range raw {
		ids := make([]int64, len(comp))
		for i, n := range comp {
			ids[i] = n.ID()
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		comps = append(comps, ids)
	}
	sort.Slice(comps, func(i, j int) bool { return comps[i][0] < comps[j][0] })
	return comps
}

// ensureConnected repairs a disconnected k-NN graph by joining each pair of
// consecutively listed components with the shortest inter-component edge,
// added in both directions. Travel time is derived from the builder's speed.
func (g *Network) ensureConnected(speedKmh float64) {
	comps := g.components()
	if len(comps) <= 1 {
		return
	}

	for i := 0; i < len(comps)-1; i++ {
		minDist := math.Inf(1)
		var bestU, bestV *Node
		for _, ui := range comps[i] {
			u := g.nodes[ui]
			for _, vi := range comps[i+1] {
				v := g.nodes[vi]
				d := geo.Haversine(u.Lat, u.Lon, v.Lat, v.Lon)
				if d < minDist {
					minDist = d
					bestU, bestV = u, v
				}
			}
		}
		if bestU == nil {
			continue
		}
		baseTime := minDist / speedKmh * 60.0
		// Both endpoints come from the arena; AddEdge cannot fail here.
		_ = g.AddEdge(&Edge{Source: bestU.ID, Target: bestV.ID, DistanceKm: minDist, BaseTravelTime: baseTime})
		_ = g.AddEdge(&Edge{Source: bestV.ID, Target: bestU.ID, DistanceKm: minDist, BaseTravelTime: baseTime})
	}
}
