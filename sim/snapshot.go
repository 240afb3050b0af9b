package sim

import "sort"

// TruckState is a point-in-time view of one truck.
type TruckState struct {
	ID                   string
	CurrentNodeID        string
	Status               TruckStatus
	Route                []string
	CurrentNodeIndex     int
	AssignedOrderID      string
	DrivingTimeSinceRest float64
	CurrentLegStartTime  float64
	CurrentLegDuration   float64
}

// OrderState is a point-in-time view of one order.
type OrderState struct {
	ID           string
	Origin       string
	Destination  string
	CreationTime float64
	Status       OrderStatus
}

// NodeState is a point-in-time view of one node's service state.
type NodeState struct {
	ID        string
	BusyCount int
	Capacity  int
	Queue     []string
}

// Snapshot is a consistent view of the simulation between steps, for
// external renderers and the row synthesizer. Slices are sorted by ID so the
// snapshot of two identical runs compares equal.
type Snapshot struct {
	Time          float64
	Trucks        []TruckState
	Orders        []OrderState
	Nodes         []NodeState
	PendingOrders []string
}

// Snapshot captures the current truck/order/node state. Everything is copied;
// mutating the snapshot does not touch the engine.
func (e *Engine) Snapshot() Snapshot {
	s := Snapshot{
		Time:          e.clock,
		PendingOrders: append([]string(nil), e.pendingOrders...),
	}

	for _, t := range e.trucks {
		s.Trucks = append(s.Trucks, TruckState{
			ID:                   t.ID,
			CurrentNodeID:        t.CurrentNodeID,
			Status:               t.Status,
			Route:                append([]string(nil), t.Route...),
			CurrentNodeIndex:     t.CurrentNodeIndex,
			AssignedOrderID:      t.AssignedOrderID,
			DrivingTimeSinceRest: t.DrivingTimeSinceRest,
			CurrentLegStartTime:  t.CurrentLegStartTime,
			CurrentLegDuration:   t.CurrentLegDuration,
		})
	}
	sort.Slice(s.Trucks, func(i, j int) bool { return s.Trucks[i].ID < s.Trucks[j].ID })

	for _, o := range e.orders {
		s.Orders = append(s.Orders, OrderState{
			ID:           o.ID,
			Origin:       o.OriginNodeID,
			Destination:  o.DestNodeID,
			CreationTime: o.CreationTime,
			Status:       o.Status,
		})
	}
	sort.Slice(s.Orders, func(i, j int) bool { return s.Orders[i].ID < s.Orders[j].ID })

	for _, n := range e.network.Nodes() {
		s.Nodes = append(s.Nodes, NodeState{
			ID:        n.ID,
			BusyCount: n.BusyCount,
			Capacity:  n.Capacity,
			Queue:     append([]string(nil), n.Queue...),
		})
	}

	return s
}
