package sim

// TruckStatus is the truck state-machine status.
type TruckStatus string

const (
	TruckIdle              TruckStatus = "idle"
	TruckEnRouteToPickup   TruckStatus = "en_route_to_pickup"
	TruckEnRouteToDelivery TruckStatus = "en_route_to_delivery"
	TruckResting           TruckStatus = "resting"
)

// enRoute reports whether s is one of the two en-route statuses.
func (s TruckStatus) enRoute() bool {
	return s == TruckEnRouteToPickup || s == TruckEnRouteToDelivery
}

// Truck is a fleet vehicle. All fields are owned by the engine.
//
// Invariants at event boundaries: an idle truck has no assigned order and an
// empty route; an en-route truck has both; DrivingTimeSinceRest is
// non-negative and resets to zero at the end of a rest.
type Truck struct {
	ID            string
	CurrentNodeID string // last node arrived at or spawned on

	Route            []string // node IDs, starts at the node the route was planned from
	CurrentNodeIndex int      // position within Route

	Status          TruckStatus
	PreviousStatus  TruckStatus // set while resting, empty otherwise
	AssignedOrderID string      // empty when idle

	DrivingTimeSinceRest float64 // accumulated driving minutes since last rest

	// Leg timing for position interpolation by external renderers.
	CurrentLegStartTime float64
	CurrentLegDuration  float64 // 0 when not mid-leg
}

// newTruck spawns an idle truck at startNode.
func newTruck(id, startNode string) *Truck {
	return &Truck{
		ID:            id,
		CurrentNodeID: startNode,
		Status:        TruckIdle,
	}
}
