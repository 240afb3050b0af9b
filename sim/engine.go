// Package sim implements the discrete-event simulation core: the event
// queue, the per-truck state machine, node capacity queuing, rest
// enforcement, and the dispatcher binding pending orders to idle trucks.
//
// The core is single-threaded and strictly sequential. Virtual time advances
// only inside Step; all truck, order, and node service state is owned by the
// Engine. Replications with different seeds may run concurrently, but one run
// must never be.
package sim

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/mzalog/supply-chain-sim/sim/graph"
	"github.com/mzalog/supply-chain-sim/sim/observability"
)

const (
	// MaxDrivingMinutes is the cumulative driving limit after which a rest
	// is forced before the next departure (8 hours).
	MaxDrivingMinutes = 480.0
	// RestMinutes is the mandatory rest duration.
	RestMinutes = 60.0
)

// DelaySampler draws stochastic travel and service times. delay.Model is the
// production implementation; tests inject fixed samplers.
type DelaySampler interface {
	TravelTime(e *graph.Edge) float64
	ServiceTime(n *graph.Node) float64
}

// Engine is the discrete-event simulation engine. It owns all mutable
// simulation state; the network topology is shared read-only after build.
type Engine struct {
	network *graph.Network
	delays  DelaySampler
	queue   *EventQueue

	clock float64

	trucks     map[string]*Truck
	truckOrder []string // truck IDs in spawn order, the dispatcher's iteration order
	orders     map[string]*Order

	// pendingOrders holds IDs of orders with status pending, FIFO.
	pendingOrders []string

	processed []Event

	dispatch  DispatchStrategy
	collector *observability.Collector

	Metrics *Metrics
}

// Option configures an Engine.
type Option func(*Engine)

// WithDispatchStrategy overrides the default first-idle dispatch strategy.
func WithDispatchStrategy(s DispatchStrategy) Option {
	return func(e *Engine) { e.dispatch = s }
}

// WithCollector attaches a Prometheus collector. A nil collector is a no-op.
func WithCollector(c *observability.Collector) Option {
	return func(e *Engine) { e.collector = c }
}

// NewEngine creates an engine over a built network.
func NewEngine(network *graph.Network, delays DelaySampler, opts ...Option) *Engine {
	e := &Engine{
		network:  network,
		delays:   delays,
		queue:    NewEventQueue(),
		trucks:   make(map[string]*Truck),
		orders:   make(map[string]*Order),
		dispatch: FirstIdle{},
		Metrics:  NewMetrics(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Network returns the simulated network.
func (e *Engine) Network() *graph.Network { return e.network }

// Clock returns the current virtual time in minutes.
func (e *Engine) Clock() float64 { return e.clock }

// QueueLen returns the number of events waiting to fire.
func (e *Engine) QueueLen() int { return e.queue.Len() }

// Upcoming returns the next n scheduled events in firing order without
// consuming them.
func (e *Engine) Upcoming(n int) []Event { return e.queue.Peek(n) }

// ProcessedEvents returns the append-only log of fired events.
func (e *Engine) ProcessedEvents() []Event { return e.processed }

// Schedule adds an event to the queue.
func (e *Engine) Schedule(ev Event) {
	e.queue.Schedule(ev)
}

// Step fires the next event. It returns false when the queue is empty. The
// clock never moves backwards: an event scheduled in the past fires at the
// current clock.
func (e *Engine) Step() (bool, error) {
	ev := e.queue.PopNext()
	if ev == nil {
		return false, nil
	}
	if t := ev.Time(); t > e.clock {
		e.clock = t
	}
	e.processed = append(e.processed, ev)
	e.Metrics.CountEvent(ev.Kind())
	e.collector.ObserveEvent(string(ev.Kind()))
	e.collector.SetClock(e.clock)

	logrus.Debugf("[t=%09.2f] firing %s truck=%s node=%s", e.clock, ev.Kind(), ev.TruckID(), ev.NodeID())
	if err := ev.Execute(e); err != nil {
		return false, fmt.Errorf("sim: %s at t=%.2f: %w", ev.Kind(), e.clock, err)
	}
	return true, nil
}

// Run fires events until the queue drains or the clock passes duration.
// Draining the queue is a normal terminal condition, not an error.
func (e *Engine) Run(duration float64) error {
	for e.queue.Len() > 0 && e.clock < duration {
		if _, err := e.Step(); err != nil {
			return err
		}
	}
	if e.clock < duration {
		e.Metrics.SimEndedTime = e.clock
	} else {
		e.Metrics.SimEndedTime = duration
	}
	logrus.Infof("[t=%09.2f] simulation ended, %d events processed", e.clock, len(e.processed))
	return nil
}

func (e *Engine) truckByID(id string) (*Truck, error) {
	t, ok := e.trucks[id]
	if !ok {
		return nil, fmt.Errorf("sim: unknown truck %s", id)
	}
	return t, nil
}

func (e *Engine) orderByID(id string) (*Order, error) {
	o, ok := e.orders[id]
	if !ok {
		return nil, fmt.Errorf("sim: unknown order %s", id)
	}
	return o, nil
}

func (e *Engine) handleTruckSpawn(ev *TruckSpawnEvent) error {
	if _, ok := e.trucks[ev.TruckID()]; ok {
		return fmt.Errorf("sim: duplicate truck spawn %s", ev.TruckID())
	}
	if !e.network.HasNode(ev.NodeID()) {
		return fmt.Errorf("%w: spawn node %s", graph.ErrUnknownNode, ev.NodeID())
	}
	t := newTruck(ev.TruckID(), ev.NodeID())
	e.trucks[t.ID] = t
	e.truckOrder = append(e.truckOrder, t.ID)
	e.Metrics.TrucksSpawned++
	logrus.Infof("[t=%09.2f] truck %s spawned at %s", e.clock, t.ID, t.CurrentNodeID)
	return e.Dispatch()
}

func (e *Engine) handleOrderCreated(ev *OrderCreatedEvent) error {
	if !e.network.HasNode(ev.Origin) {
		return fmt.Errorf("%w: order origin %s", graph.ErrUnknownNode, ev.Origin)
	}
	if !e.network.HasNode(ev.Destination) {
		return fmt.Errorf("%w: order destination %s", graph.ErrUnknownNode, ev.Destination)
	}
	o := newOrder(ev.OrderID, ev.Origin, ev.Destination, e.clock)
	e.orders[o.ID] = o
	e.Metrics.OrdersCreated++

	if ev.Origin == ev.Destination {
		// Orders need distinct endpoints; reject at creation rather than
		// let the dispatcher plan a degenerate route.
		o.Status = OrderCancelled
		e.Metrics.OrdersCancelled++
		e.collector.OrderCancelled()
		logrus.Warnf("[t=%09.2f] order %s rejected: origin equals destination (%s)", e.clock, o.ID, ev.Origin)
		return nil
	}

	e.pendingOrders = append(e.pendingOrders, o.ID)
	logrus.Infof("[t=%09.2f] order %s created %s -> %s", e.clock, o.ID, o.OriginNodeID, o.DestNodeID)
	return e.Dispatch()
}

func (e *Engine) handleOrderAssigned(ev *OrderAssignedEvent) error {
	// Bookkeeping only; the dispatch already mutated truck and order state.
	e.Metrics.OrdersAssigned++
	return nil
}

func (e *Engine) handleArrival(ev *ArrivalEvent) error {
	t, err := e.truckByID(ev.TruckID())
	if err != nil {
		return err
	}
	node, err := e.network.NodeByID(ev.NodeID())
	if err != nil {
		return err
	}

	t.CurrentNodeID = node.ID
	t.CurrentLegStartTime = 0
	t.CurrentLegDuration = 0

	if !e.serviceRequired(t, node) {
		// Pass-through hop: nothing to load or unload here, keep driving.
		if len(t.Route) > 0 && t.CurrentNodeIndex < len(t.Route)-1 {
			e.Schedule(NewDepartEvent(e.clock, t.ID, node.ID))
		}
		return nil
	}

	if node.BusyCount < node.Capacity {
		// The slot is claimed on arrival. Two trucks arriving at the same
		// instant must not both pass the capacity check.
		node.BusyCount++
		e.Schedule(NewStartServiceEvent(e.clock, t.ID, node.ID))
	} else {
		node.Queue = append(node.Queue, t.ID)
		logrus.Debugf("[t=%09.2f] truck %s queued at %s (busy %d/%d)", e.clock, t.ID, node.ID, node.BusyCount, node.Capacity)
	}
	return nil
}

// serviceRequired reports whether the truck must take a service slot at this
// node: loading at its order's origin, unloading at the destination, or a
// mandatory stop at an inspection checkpoint. Other hops are pass-through.
func (e *Engine) serviceRequired(t *Truck, node *graph.Node) bool {
	if node.IsInspection {
		return true
	}
	if t.AssignedOrderID == "" {
		return false
	}
	o, ok := e.orders[t.AssignedOrderID]
	if !ok {
		return false
	}
	switch t.Status {
	case TruckEnRouteToPickup:
		return node.ID == o.OriginNodeID
	case TruckEnRouteToDelivery:
		return node.ID == o.DestNodeID
	}
	return false
}

func (e *Engine) handleStartService(ev *StartServiceEvent) error {
	node, err := e.network.NodeByID(ev.NodeID())
	if err != nil {
		return err
	}

	s := e.delays.ServiceTime(node)
	e.Metrics.TotalServiceMinutes += s
	e.Schedule(NewEndServiceEvent(e.clock+s, ev.TruckID(), node.ID, s))
	return nil
}

func (e *Engine) handleEndService(ev *EndServiceEvent) error {
	node, err := e.network.NodeByID(ev.NodeID())
	if err != nil {
		return err
	}
	t, err := e.truckByID(ev.TruckID())
	if err != nil {
		return err
	}
	node.BusyCount--

	delivered := false
	if t.AssignedOrderID != "" {
		o, err := e.orderByID(t.AssignedOrderID)
		if err != nil {
			return err
		}
		switch {
		case t.Status == TruckEnRouteToPickup && node.ID == o.OriginNodeID:
			t.Status = TruckEnRouteToDelivery
			logrus.Debugf("[t=%09.2f] truck %s picked up order %s at %s", e.clock, t.ID, o.ID, node.ID)
		case t.Status == TruckEnRouteToDelivery && node.ID == o.DestNodeID:
			o.Status = OrderCompleted
			o.CompletionTime = e.clock
			t.Status = TruckIdle
			t.AssignedOrderID = ""
			t.Route = nil
			t.CurrentNodeIndex = 0
			delivered = true
			e.Metrics.OrdersCompleted++
			e.Metrics.DeliveryLatencySum += e.clock - o.CreationTime
			e.collector.OrderCompleted()
			logrus.Infof("[t=%09.2f] truck %s delivered order %s at %s", e.clock, t.ID, o.ID, node.ID)
		}
	}

	if len(t.Route) > 0 && t.CurrentNodeIndex < len(t.Route)-1 {
		e.Schedule(NewDepartEvent(e.clock, t.ID, node.ID))
	}

	if len(node.Queue) > 0 {
		next := node.Queue[0]
		node.Queue = node.Queue[1:]
		node.BusyCount++
		e.Schedule(NewStartServiceEvent(e.clock, next, node.ID))
	}

	if delivered {
		return e.Dispatch()
	}
	return nil
}

func (e *Engine) handleDepart(ev *DepartEvent) error {
	t, err := e.truckByID(ev.TruckID())
	if err != nil {
		return err
	}
	if len(t.Route) == 0 || t.CurrentNodeIndex >= len(t.Route)-1 {
		return nil
	}
	next := t.Route[t.CurrentNodeIndex+1]

	edge, err := e.network.EdgeBetween(ev.NodeID(), next)
	if errors.Is(err, graph.ErrUnknownEdge) {
		// Should not occur on a connected graph; the truck stalls where it
		// stands and keeps its order.
		e.Metrics.TrucksStalled++
		logrus.Warnf("[t=%09.2f] truck %s stalled at %s: no edge to %s", e.clock, t.ID, ev.NodeID(), next)
		return nil
	}
	if err != nil {
		return err
	}

	travel := e.delays.TravelTime(edge)
	if t.DrivingTimeSinceRest > 0 && t.DrivingTimeSinceRest+travel > MaxDrivingMinutes {
		e.Schedule(NewStartRestEvent(e.clock, t.ID, ev.NodeID()))
		return nil
	}

	t.CurrentNodeIndex++
	t.DrivingTimeSinceRest += travel
	t.CurrentLegStartTime = e.clock
	t.CurrentLegDuration = travel

	e.Metrics.TotalTravelMinutes += travel
	e.Metrics.TotalDistanceKm += edge.DistanceKm
	e.Schedule(NewArrivalEvent(e.clock+travel, t.ID, next, travel))
	return nil
}

func (e *Engine) handleStartRest(ev *StartRestEvent) error {
	t, err := e.truckByID(ev.TruckID())
	if err != nil {
		return err
	}
	t.PreviousStatus = t.Status
	t.Status = TruckResting
	e.Metrics.RestsTaken++
	logrus.Debugf("[t=%09.2f] truck %s resting at %s after %.1f driving minutes", e.clock, t.ID, ev.NodeID(), t.DrivingTimeSinceRest)
	e.Schedule(NewEndRestEvent(e.clock+RestMinutes, t.ID, ev.NodeID(), RestMinutes))
	return nil
}

func (e *Engine) handleEndRest(ev *EndRestEvent) error {
	t, err := e.truckByID(ev.TruckID())
	if err != nil {
		return err
	}
	t.DrivingTimeSinceRest = 0
	if t.PreviousStatus.enRoute() {
		t.Status = t.PreviousStatus
	} else {
		t.Status = TruckIdle
	}
	t.PreviousStatus = ""
	e.Schedule(NewDepartEvent(e.clock, t.ID, ev.NodeID()))
	return nil
}
