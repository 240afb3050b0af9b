// Package observability bundles Prometheus metrics for the simulation core
// and provides an HTTP handler to expose them during long runs.
package observability

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector bundles the simulation's Prometheus metrics. A nil *Collector is
// valid and makes every observation a no-op, so the engine never has to
// check whether metrics are wired.
type Collector struct {
	gatherer prometheus.Gatherer

	EventsTotal     *prometheus.CounterVec
	OrdersCompleted prometheus.Counter
	OrdersCancelled prometheus.Counter
	SimClockMinutes prometheus.Gauge
}

// NewCollector registers the simulation metrics against reg, defaulting to
// the global Prometheus registry when nil.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.Gatherer(prometheus.DefaultGatherer)
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sim_events_total",
		Help: "Total number of fired simulation events, labeled by event kind.",
	}, []string{"kind"})
	if err := register(reg, events); err != nil {
		return nil, err
	}

	completed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sim_orders_completed_total",
		Help: "Total number of delivered orders.",
	})
	if err := register(reg, completed); err != nil {
		return nil, err
	}

	cancelled := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sim_orders_cancelled_total",
		Help: "Total number of orders cancelled at dispatch.",
	})
	if err := register(reg, cancelled); err != nil {
		return nil, err
	}

	clock := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sim_clock_minutes",
		Help: "Current virtual time of the simulation in minutes.",
	})
	if err := register(reg, clock); err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:        gatherer,
		EventsTotal:     events,
		OrdersCompleted: completed,
		OrdersCancelled: cancelled,
		SimClockMinutes: clock,
	}, nil
}

func register(reg prometheus.Registerer, c prometheus.Collector) error {
	err := reg.Register(c)
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		return nil
	}
	return err
}

// ObserveEvent tallies one fired event of the given kind.
func (c *Collector) ObserveEvent(kind string) {
	if c == nil {
		return
	}
	c.EventsTotal.WithLabelValues(kind).Inc()
}

// OrderCompleted tallies a delivered order.
func (c *Collector) OrderCompleted() {
	if c == nil {
		return
	}
	c.OrdersCompleted.Inc()
}

// OrderCancelled tallies an order cancelled at dispatch.
func (c *Collector) OrderCancelled() {
	if c == nil {
		return
	}
	c.OrdersCancelled.Inc()
}

// SetClock publishes the current virtual time.
func (c *Collector) SetClock(minutes float64) {
	if c == nil {
		return
	}
	c.SimClockMinutes.Set(minutes)
}

// Handler returns an HTTP handler serving the collector's metrics.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}
