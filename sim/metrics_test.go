package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetrics_CountAndTotal(t *testing.T) {
	m := NewMetrics()
	m.CountEvent(EventArrivalNode)
	m.CountEvent(EventArrivalNode)
	m.CountEvent(EventEndService)

	assert.Equal(t, 2, m.EventCounts[EventArrivalNode])
	assert.Equal(t, 3, m.TotalEvents())
}

func TestMetrics_AvgDeliveryLatency(t *testing.T) {
	m := NewMetrics()
	assert.Equal(t, 0.0, m.AvgDeliveryLatency(), "no completions yet")

	m.OrdersCompleted = 4
	m.DeliveryLatencySum = 600
	assert.Equal(t, 150.0, m.AvgDeliveryLatency())
}
