// Package trace turns the engine's processed-event log into flat records and
// tabular artifacts, keeping export concerns out of the simulation core.
package trace

import "github.com/mzalog/supply-chain-sim/sim"

// Record is one processed event flattened for export.
type Record struct {
	Time    float64
	EventID uint64
	TruckID string
	NodeID  string
	Kind    string
	Details map[string]string // typed payload rendered as strings; may be nil
}

// FromEvent flattens a processed event into a Record.
func FromEvent(ev sim.Event) Record {
	return Record{
		Time:    ev.Time(),
		EventID: ev.SeqID(),
		TruckID: ev.TruckID(),
		NodeID:  ev.NodeID(),
		Kind:    string(ev.Kind()),
		Details: ev.Details(),
	}
}

// FromEvents flattens a processed-event log in order.
func FromEvents(events []sim.Event) []Record {
	out := make([]Record, len(events))
	for i, ev := range events {
		out[i] = FromEvent(ev)
	}
	return out
}
