package sim

import (
	"fmt"
	"time"
)

// Metrics aggregates run-wide statistics for final reporting.
type Metrics struct {
	EventCounts map[EventKind]int

	TrucksSpawned   int
	OrdersCreated   int
	OrdersAssigned  int
	OrdersCompleted int
	OrdersCancelled int
	RestsTaken      int
	TrucksStalled   int

	TotalTravelMinutes  float64
	TotalServiceMinutes float64
	TotalDistanceKm     float64

	// DeliveryLatencySum accumulates (completion - creation) over completed
	// orders.
	DeliveryLatencySum float64

	SimEndedTime float64
}

// NewMetrics creates an empty Metrics.
func NewMetrics() *Metrics {
	return &Metrics{EventCounts: make(map[EventKind]int)}
}

// CountEvent tallies one fired event.
func (m *Metrics) CountEvent(kind EventKind) {
	m.EventCounts[kind]++
}

// TotalEvents returns the number of fired events.
func (m *Metrics) TotalEvents() int {
	total := 0
	for _, c := range m.EventCounts {
		total += c
	}
	return total
}

// AvgDeliveryLatency returns the mean minutes from order creation to
// delivery, or 0 when nothing completed.
func (m *Metrics) AvgDeliveryLatency() float64 {
	if m.OrdersCompleted == 0 {
		return 0
	}
	return m.DeliveryLatencySum / float64(m.OrdersCompleted)
}

// Print displays aggregated metrics at the end of the simulation.
func (m *Metrics) Print(startTime time.Time) {
	fmt.Println("=== Simulation Metrics ===")
	fmt.Printf("Wall-clock duration  : %v\n", time.Since(startTime))
	fmt.Printf("Sim ended at         : %.1f min\n", m.SimEndedTime)
	fmt.Printf("Events processed     : %d\n", m.TotalEvents())
	fmt.Printf("Trucks spawned       : %d\n", m.TrucksSpawned)
	fmt.Printf("Orders created       : %d\n", m.OrdersCreated)
	fmt.Printf("Orders completed     : %d\n", m.OrdersCompleted)
	fmt.Printf("Orders cancelled     : %d\n", m.OrdersCancelled)
	fmt.Printf("Rests taken          : %d\n", m.RestsTaken)
	fmt.Printf("Total travel         : %.1f min over %.1f km\n", m.TotalTravelMinutes, m.TotalDistanceKm)
	fmt.Printf("Total service        : %.1f min\n", m.TotalServiceMinutes)
	if m.OrdersCompleted > 0 {
		fmt.Printf("Avg delivery latency : %.1f min\n", m.AvgDeliveryLatency())
	}
	if m.TrucksStalled > 0 {
		fmt.Printf("Trucks stalled       : %d\n", m.TrucksStalled)
	}
}
