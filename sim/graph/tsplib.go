package graph

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/mzalog/supply-chain-sim/sim/geo"
	"github.com/mzalog/supply-chain-sim/sim/tsplib"
)

// TSPLIBConfig parameterizes the TSPLIB-sourced network builder.
type TSPLIBConfig struct {
	KNeighbors int           // default 4
	Window     tsplib.Window // default tsplib.DefaultWindow
	SpeedKmh   float64       // default 50
}

func (c *TSPLIBConfig) applyDefaults() {
	if c.KNeighbors == 0 {
		c.KNeighbors = 4
	}
	if c.Window == (tsplib.Window{}) {
		c.Window = tsplib.DefaultWindow
	}
	if c.SpeedKmh == 0 {
		c.SpeedKmh = 50.0
	}
}

// NewTSPLIBNetwork parses the TSPLIB file at path and builds a network from it.
func NewTSPLIBNetwork(path string, cfg TSPLIBConfig, rng *rand.Rand) (*Network, error) {
	problem, err := tsplib.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return NewTSPLIBNetworkFromProblem(problem, cfg, rng)
}

// NewTSPLIBNetworkFromProblem builds a network from a parsed TSPLIB instance.
// Coordinates are normalized into the geographic window; node kinds follow the
// index-ratio buckets (10% warehouses, 10% hubs, 5% ports, 5% inspection
// points, rest customers) shuffled so that kinds are spatially random.
// Neighbour selection uses the original planar coordinates so the instance's
// spatial structure survives normalization.
func NewTSPLIBNetworkFromProblem(problem *tsplib.Problem, cfg TSPLIBConfig, rng *rand.Rand) (*Network, error) {
	cfg.applyDefaults()
	if len(problem.Points) == 0 {
		return nil, ErrEmptyGraph
	}

	coords := tsplib.Normalize(problem.Points, cfg.Window)

	n := len(problem.Points)
	kinds := make([]NodeKind, n)
	for i := 0; i < n; i++ {
		switch ratio := float64(i) / float64(n); {
		case ratio < 0.10:
			kinds[i] = KindWarehouse
		case ratio < 0.20:
			kinds[i] = KindHub
		case ratio < 0.25:
			kinds[i] = KindPort
		case ratio < 0.30:
			kinds[i] = KindInspection
		default:
			kinds[i] = KindCustomer
		}
	}
	rng.Shuffle(n, func(i, j int) { kinds[i], kinds[j] = kinds[j], kinds[i] })

	g := NewNetwork()
	for i, p := range problem.Points {
		kind := kinds[i]
		var capacity int
		switch kind {
		case KindWarehouse:
			capacity = 3 + rng.Intn(3)
		case KindHub:
			capacity = 2 + rng.Intn(3)
		case KindPort:
			capacity = 2 + rng.Intn(2)
		default:
			capacity = 1 + rng.Intn(2)
		}
		node := &Node{
			ID:           fmt.Sprintf("N%d", p.ID),
			Kind:         kind,
			Lat:          coords[i].Lat,
			Lon:          coords[i].Lon,
			Capacity:     capacity,
			IsInspection: kind == KindInspection,
		}
		if err := g.AddNode(node); err != nil {
			return nil, err
		}
	}

	nodes := g.Nodes()
	for i, u := range nodes {
		type candidate struct {
			dist float64
			j    int
		}
		cands := make([]candidate, 0, n-1)
		for j := range nodes {
			if j == i {
				continue
			}
			d := geo.Euclidean(problem.Points[i].X, problem.Points[i].Y, problem.Points[j].X, problem.Points[j].Y)
			cands = append(cands, candidate{dist: d, j: j})
		}
		sort.Slice(cands, func(a, b int) bool {
			if cands[a].dist != cands[b].dist {
				return cands[a].dist < cands[b].dist
			}
			return cands[a].j < cands[b].j
		})
		k := cfg.KNeighbors
		if k > len(cands) {
			k = len(cands)
		}
		for _, c := range cands[:k] {
			v := nodes[c.j]
			distKm := geo.Haversine(u.Lat, u.Lon, v.Lat, v.Lon)
			baseTime := distKm / cfg.SpeedKmh * 60.0
			_ = g.AddEdge(&Edge{Source: u.ID, Target: v.ID, DistanceKm: distKm, BaseTravelTime: baseTime})
			_ = g.AddEdge(&Edge{Source: v.ID, Target: u.ID, DistanceKm: distKm, BaseTravelTime: baseTime})
		}
	}

	g.ensureConnected(cfg.SpeedKmh)
	return g, nil
}
