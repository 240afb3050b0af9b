// Package delay samples stochastic travel and service times. Sampling is
// stateless apart from the injected RNG, so a seeded model reproduces the
// same sequence of draws.
package delay

import (
	"math/rand"

	exprand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/mzalog/supply-chain-sim/sim/graph"
)

const (
	// disruptionProb is the chance a leg picks up an extra disruption spike.
	disruptionProb = 0.05

	// serviceMinMinutes and serviceMaxMinutes clamp the Gamma service draw.
	serviceMinMinutes = 60.0
	serviceMaxMinutes = 300.0

	gammaShape = 4.0
	gammaScale = 35.0
)

// Model draws travel and service times. All uniform draws come from the
// injected math/rand source; the Gamma service distribution runs on a distuv
// sampler seeded from the same value, so two models built with equal seeds
// produce identical sequences.
type Model struct {
	rng   *rand.Rand
	gamma distuv.Gamma

	// kindMultipliers scales the service draw per node kind. Kinds absent
	// from the table use 1.0.
	kindMultipliers map[graph.NodeKind]float64
}

// NewModel builds a delay model seeded with seed. multipliers may be nil.
func NewModel(seed int64, multipliers map[graph.NodeKind]float64) *Model {
	return &Model{
		rng: rand.New(rand.NewSource(seed)),
		gamma: distuv.Gamma{
			Alpha: gammaShape,
			Beta:  1.0 / gammaScale,
			Src:   exprand.NewSource(uint64(seed)),
		},
		kindMultipliers: multipliers,
	}
}

// TravelTime samples the travel time in minutes for one leg over e. The base
// time is inflated by uniform noise in [0, 1), plus a disruption spike of
// U[0.5, 2.0) with probability 0.05, and never drops below one minute.
func (m *Model) TravelTime(e *graph.Edge) float64 {
	noise := m.rng.Float64()
	if m.rng.Float64() < disruptionProb {
		noise += 0.5 + m.rng.Float64()*1.5
	}
	t := e.BaseTravelTime * (1 + noise)
	if t < 1.0 {
		return 1.0
	}
	return t
}

// ServiceTime samples the service time in minutes at n, drawn from
// Gamma(4, scale 35), scaled by the node kind's multiplier, and clamped into
// [60, 300].
func (m *Model) ServiceTime(n *graph.Node) float64 {
	s := m.gamma.Rand()
	if mult, ok := m.kindMultipliers[n.Kind]; ok {
		s *= mult
	}
	if s < serviceMinMinutes {
		return serviceMinMinutes
	}
	if s > serviceMaxMinutes {
		return serviceMaxMinutes
	}
	return s
}
