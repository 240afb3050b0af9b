package sim

import (
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/mzalog/supply-chain-sim/sim/graph"
)

// Scenario parameterizes seed-event generation: the initial fleet and the
// order stream fed into an empty engine.
type Scenario struct {
	NumTrucks int
	NumOrders int

	// OrderWindow bounds order creation times: uniform in [0, OrderWindow]
	// minutes. Default 1200.
	OrderWindow float64
}

func (s *Scenario) applyDefaults() {
	if s.NumTrucks == 0 {
		s.NumTrucks = 10
	}
	if s.NumOrders == 0 {
		s.NumOrders = 30
	}
	if s.OrderWindow == 0 {
		s.OrderWindow = 1200.0
	}
}

// SeedEvents schedules truck spawns and order creations on the engine.
// Trucks T1..Tn spawn at t=0 on random warehouse/hub/port nodes (customers
// and inspection points are not depots); when the network has none, any node
// serves. Orders ORD1..ORDm get uniform creation times in [0, OrderWindow]
// and distinct random endpoints.
func (s Scenario) SeedEvents(e *Engine, rng *rand.Rand) error {
	s.applyDefaults()

	nodes := e.Network().Nodes()
	if len(nodes) == 0 {
		return graph.ErrEmptyGraph
	}
	if len(nodes) < 2 && s.NumOrders > 0 {
		return fmt.Errorf("sim: scenario needs at least two nodes for orders")
	}

	var spawnIDs []string
	for _, n := range nodes {
		if n.Kind == graph.KindCustomer || n.Kind == graph.KindInspection {
			continue
		}
		spawnIDs = append(spawnIDs, n.ID)
	}
	if len(spawnIDs) == 0 {
		logrus.Warn("no depot-like nodes found, spawning trucks anywhere")
		for _, n := range nodes {
			spawnIDs = append(spawnIDs, n.ID)
		}
	}

	for i := 0; i < s.NumTrucks; i++ {
		start := spawnIDs[rng.Intn(len(spawnIDs))]
		e.Schedule(NewTruckSpawnEvent(0, fmt.Sprintf("T%d", i+1), start))
	}

	for i := 0; i < s.NumOrders; i++ {
		creation := rng.Float64() * s.OrderWindow
		origin := nodes[rng.Intn(len(nodes))].ID
		destination := nodes[rng.Intn(len(nodes))].ID
		for destination == origin {
			destination = nodes[rng.Intn(len(nodes))].ID
		}
		e.Schedule(NewOrderCreatedEvent(creation, fmt.Sprintf("ORD%d", i+1), origin, destination))
	}

	logrus.Infof("seeded %d truck spawns and %d orders over [0, %.0f]", s.NumTrucks, s.NumOrders, s.OrderWindow)
	return nil
}
