package sim

import (
	"math"

	"github.com/sirupsen/logrus"
)

// DispatchStrategy selects an idle truck for a pending order. Returning nil
// skips the dispatch until the next idle event.
type DispatchStrategy interface {
	// Name is recorded in the order_assigned event details.
	Name() string
	SelectTruck(e *Engine, o *Order) (*Truck, error)
}

// FirstIdle picks the first idle truck in spawn order. This is the default:
// deterministic and deliberately greedy.
type FirstIdle struct{}

func (FirstIdle) Name() string { return "first-idle" }

func (FirstIdle) SelectTruck(e *Engine, _ *Order) (*Truck, error) {
	for _, id := range e.truckOrder {
		if t := e.trucks[id]; t.Status == TruckIdle {
			return t, nil
		}
	}
	return nil, nil
}

// NearestIdle picks the idle truck with the shortest path travel time to the
// order's origin, breaking ties by spawn order. Trucks that cannot reach the
// origin are skipped.
type NearestIdle struct{}

func (NearestIdle) Name() string { return "nearest-idle" }

func (NearestIdle) SelectTruck(e *Engine, o *Order) (*Truck, error) {
	var best *Truck
	bestCost := math.Inf(1)
	for _, id := range e.truckOrder {
		t := e.trucks[id]
		if t.Status != TruckIdle {
			continue
		}
		if t.CurrentNodeID == o.OriginNodeID {
			return t, nil
		}
		path, err := e.network.ShortestPath(t.CurrentNodeID, o.OriginNodeID)
		if err != nil {
			return nil, err
		}
		if len(path) == 0 {
			continue
		}
		cost, err := e.pathTravelTime(path)
		if err != nil {
			return nil, err
		}
		if cost < bestCost {
			bestCost = cost
			best = t
		}
	}
	return best, nil
}

// pathTravelTime sums the base travel time along a node-ID path.
func (e *Engine) pathTravelTime(path []string) (float64, error) {
	var total float64
	for i := 0; i+1 < len(path); i++ {
		edge, err := e.network.EdgeBetween(path[i], path[i+1])
		if err != nil {
			return 0, err
		}
		total += edge.BaseTravelTime
	}
	return total, nil
}

// Dispatch binds the head of the pending-order queue to an idle truck and
// plans its composite pickup+delivery route. Invoked on truck spawn, order
// creation, and delivery completion. One order per invocation; the head
// leaves the pending queue whether it was assigned or cancelled.
func (e *Engine) Dispatch() error {
	if len(e.pendingOrders) == 0 {
		return nil
	}
	o, err := e.orderByID(e.pendingOrders[0])
	if err != nil {
		return err
	}
	t, err := e.dispatch.SelectTruck(e, o)
	if err != nil {
		return err
	}
	if t == nil {
		return nil
	}

	// Plan: truck -> origin (empty when already there) -> destination.
	var toPickup []string
	if t.CurrentNodeID != o.OriginNodeID {
		toPickup, err = e.network.ShortestPath(t.CurrentNodeID, o.OriginNodeID)
		if err != nil {
			return err
		}
		if len(toPickup) == 0 {
			return e.cancelAtDispatch(o, "no route to pickup")
		}
	}
	toDelivery, err := e.network.ShortestPath(o.OriginNodeID, o.DestNodeID)
	if err != nil {
		return err
	}
	if len(toDelivery) == 0 {
		return e.cancelAtDispatch(o, "no route to destination")
	}

	var route []string
	if len(toPickup) > 0 {
		route = append(route, toPickup...)
		if route[len(route)-1] == toDelivery[0] {
			route = append(route, toDelivery[1:]...)
		} else {
			route = append(route, toDelivery...)
		}
	} else {
		route = toDelivery
	}
	if len(route) < 2 {
		return e.cancelAtDispatch(o, "no route to destination")
	}

	e.pendingOrders = e.pendingOrders[1:]
	t.Status = TruckEnRouteToPickup
	t.AssignedOrderID = o.ID
	o.Status = OrderAssigned

	e.Schedule(NewOrderAssignedEvent(e.clock, t.ID, t.CurrentNodeID, o.ID, o.OriginNodeID, o.DestNodeID, e.dispatch.Name()))

	t.Route = route
	t.CurrentNodeIndex = 0
	if len(toPickup) == 0 {
		// Already standing at the pickup node: a zero-travel arrival routes
		// the truck through the normal loading service there.
		e.Schedule(NewArrivalEvent(e.clock, t.ID, o.OriginNodeID, 0))
	} else {
		e.Schedule(NewDepartEvent(e.clock, t.ID, t.CurrentNodeID))
	}

	logrus.Infof("[t=%09.2f] order %s assigned to truck %s, route %v", e.clock, o.ID, t.ID, route)
	return nil
}

// cancelAtDispatch drops the head pending order as unroutable. Terminal;
// nothing is retried.
func (e *Engine) cancelAtDispatch(o *Order, reason string) error {
	e.pendingOrders = e.pendingOrders[1:]
	o.Status = OrderCancelled
	e.Metrics.OrdersCancelled++
	e.collector.OrderCancelled()
	logrus.Warnf("[t=%09.2f] order %s cancelled: %s", e.clock, o.ID, reason)
	return nil
}
