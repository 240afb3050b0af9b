package sim

import "strconv"

// EventKind tags an event record.
type EventKind string

const (
	EventTruckSpawn    EventKind = "truck_spawn"
	EventOrderCreated  EventKind = "order_created"
	EventOrderAssigned EventKind = "order_assigned"
	EventArrivalNode   EventKind = "arrival_node"
	EventStartService  EventKind = "start_service"
	EventEndService    EventKind = "end_service"
	EventDepartNode    EventKind = "depart_node"
	EventStartRest     EventKind = "start_rest"
	EventEndRest       EventKind = "end_rest"
)

// SystemTruckID is the sentinel truck ID carried by events that do not
// belong to a truck, such as order creations.
const SystemTruckID = "SYSTEM"

// Event is a scheduled simulation event. Events are immutable once scheduled;
// the engine assigns the sequence number at schedule time and never touches
// the event afterwards.
type Event interface {
	// Time is the virtual time of the event in minutes.
	Time() float64
	// SeqID is the engine-local insertion counter, the FIFO tie-breaker for
	// events sharing an instant.
	SeqID() uint64
	TruckID() string
	NodeID() string
	Kind() EventKind
	// Details renders the typed payload for the event log and CSV export.
	// May be nil for events without payload.
	Details() map[string]string
	Execute(*Engine) error
}

// BaseEvent carries the header shared by every event kind.
type BaseEvent struct {
	time    float64
	seq     uint64
	truckID string
	nodeID  string
	kind    EventKind
}

func newBaseEvent(time float64, truckID, nodeID string, kind EventKind) BaseEvent {
	return BaseEvent{time: time, truckID: truckID, nodeID: nodeID, kind: kind}
}

func (e *BaseEvent) Time() float64              { return e.time }
func (e *BaseEvent) SeqID() uint64              { return e.seq }
func (e *BaseEvent) TruckID() string            { return e.truckID }
func (e *BaseEvent) NodeID() string             { return e.nodeID }
func (e *BaseEvent) Kind() EventKind            { return e.kind }
func (e *BaseEvent) Details() map[string]string { return nil }

func (e *BaseEvent) setSeq(seq uint64) { e.seq = seq }

func formatMinutes(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// TruckSpawnEvent introduces a new idle truck at its start node.
type TruckSpawnEvent struct {
	BaseEvent
}

// NewTruckSpawnEvent creates a spawn event for truckID at startNode.
func NewTruckSpawnEvent(time float64, truckID, startNode string) *TruckSpawnEvent {
	return &TruckSpawnEvent{BaseEvent: newBaseEvent(time, truckID, startNode, EventTruckSpawn)}
}

func (e *TruckSpawnEvent) Execute(eng *Engine) error { return eng.handleTruckSpawn(e) }

// OrderCreatedEvent introduces a new pending order.
type OrderCreatedEvent struct {
	BaseEvent
	OrderID     string
	Origin      string
	Destination string
}

// NewOrderCreatedEvent creates an order-creation event. The event belongs to
// the system, not to a truck.
func NewOrderCreatedEvent(time float64, orderID, origin, destination string) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		BaseEvent:   newBaseEvent(time, SystemTruckID, origin, EventOrderCreated),
		OrderID:     orderID,
		Origin:      origin,
		Destination: destination,
	}
}

func (e *OrderCreatedEvent) Details() map[string]string {
	return map[string]string{
		"order_id":    e.OrderID,
		"origin":      e.Origin,
		"destination": e.Destination,
	}
}

func (e *OrderCreatedEvent) Execute(eng *Engine) error { return eng.handleOrderCreated(e) }

// OrderAssignedEvent records a dispatch decision. Bookkeeping only; no state
// transition happens when it fires.
type OrderAssignedEvent struct {
	BaseEvent
	OrderID     string
	Origin      string
	Destination string
	Reason      string
}

// NewOrderAssignedEvent creates the bookkeeping event emitted at dispatch.
func NewOrderAssignedEvent(time float64, truckID, nodeID, orderID, origin, destination, reason string) *OrderAssignedEvent {
	return &OrderAssignedEvent{
		BaseEvent:   newBaseEvent(time, truckID, nodeID, EventOrderAssigned),
		OrderID:     orderID,
		Origin:      origin,
		Destination: destination,
		Reason:      reason,
	}
}

func (e *OrderAssignedEvent) Details() map[string]string {
	return map[string]string{
		"order_id":    e.OrderID,
		"origin":      e.Origin,
		"destination": e.Destination,
		"reason":      e.Reason,
	}
}

func (e *OrderAssignedEvent) Execute(eng *Engine) error { return eng.handleOrderAssigned(e) }

// ArrivalEvent fires when a truck reaches the end of a leg.
type ArrivalEvent struct {
	BaseEvent
	TravelDuration float64
}

// NewArrivalEvent creates an arrival at nodeID after travelDuration minutes.
func NewArrivalEvent(time float64, truckID, nodeID string, travelDuration float64) *ArrivalEvent {
	return &ArrivalEvent{
		BaseEvent:      newBaseEvent(time, truckID, nodeID, EventArrivalNode),
		TravelDuration: travelDuration,
	}
}

func (e *ArrivalEvent) Details() map[string]string {
	return map[string]string{"travel_duration": formatMinutes(e.TravelDuration)}
}

func (e *ArrivalEvent) Execute(eng *Engine) error { return eng.handleArrival(e) }

// StartServiceEvent fires when a truck takes a service slot at a node.
type StartServiceEvent struct {
	BaseEvent
}

// NewStartServiceEvent creates a service start for truckID at nodeID.
func NewStartServiceEvent(time float64, truckID, nodeID string) *StartServiceEvent {
	return &StartServiceEvent{BaseEvent: newBaseEvent(time, truckID, nodeID, EventStartService)}
}

func (e *StartServiceEvent) Execute(eng *Engine) error { return eng.handleStartService(e) }

// EndServiceEvent fires when a truck releases its service slot.
type EndServiceEvent struct {
	BaseEvent
	ServiceDuration float64
}

// NewEndServiceEvent creates a service end after serviceDuration minutes.
func NewEndServiceEvent(time float64, truckID, nodeID string, serviceDuration float64) *EndServiceEvent {
	return &EndServiceEvent{
		BaseEvent:       newBaseEvent(time, truckID, nodeID, EventEndService),
		ServiceDuration: serviceDuration,
	}
}

func (e *EndServiceEvent) Details() map[string]string {
	return map[string]string{"service_duration": formatMinutes(e.ServiceDuration)}
}

func (e *EndServiceEvent) Execute(eng *Engine) error { return eng.handleEndService(e) }

// DepartEvent fires when a truck is ready to leave for the next hop of its
// route.
type DepartEvent struct {
	BaseEvent
}

// NewDepartEvent creates a departure of truckID from nodeID.
func NewDepartEvent(time float64, truckID, nodeID string) *DepartEvent {
	return &DepartEvent{BaseEvent: newBaseEvent(time, truckID, nodeID, EventDepartNode)}
}

func (e *DepartEvent) Execute(eng *Engine) error { return eng.handleDepart(e) }

// StartRestEvent fires when the rest policy preempts a departure.
type StartRestEvent struct {
	BaseEvent
}

// NewStartRestEvent creates a rest start for truckID at nodeID.
func NewStartRestEvent(time float64, truckID, nodeID string) *StartRestEvent {
	return &StartRestEvent{BaseEvent: newBaseEvent(time, truckID, nodeID, EventStartRest)}
}

func (e *StartRestEvent) Execute(eng *Engine) error { return eng.handleStartRest(e) }

// EndRestEvent fires when a resting truck becomes available again.
type EndRestEvent struct {
	BaseEvent
	RestDuration float64
}

// NewEndRestEvent creates a rest end after restDuration minutes.
func NewEndRestEvent(time float64, truckID, nodeID string, restDuration float64) *EndRestEvent {
	return &EndRestEvent{
		BaseEvent:    newBaseEvent(time, truckID, nodeID, EventEndRest),
		RestDuration: restDuration,
	}
}

func (e *EndRestEvent) Details() map[string]string {
	return map[string]string{"rest_duration": formatMinutes(e.RestDuration)}
}

func (e *EndRestEvent) Execute(eng *Engine) error { return eng.handleEndRest(e) }
