package sim

import (
	"container/heap"
	"sort"
)

// EventQueue is a min-priority queue ordered by (time, insertion sequence).
// The sequence number provides deterministic FIFO tie-breaking for events
// scheduled at the same instant.
type EventQueue struct {
	events []Event
	seq    uint64
}

// NewEventQueue creates an empty event queue.
func NewEventQueue() *EventQueue {
	q := &EventQueue{}
	heap.Init(q)
	return q
}

// Len implements heap.Interface.
func (q *EventQueue) Len() int { return len(q.events) }

// Less implements heap.Interface: time ascending, then insertion sequence.
func (q *EventQueue) Less(i, j int) bool {
	ei, ej := q.events[i], q.events[j]
	if ei.Time() != ej.Time() {
		return ei.Time() < ej.Time()
	}
	return ei.SeqID() < ej.SeqID()
}

// Swap implements heap.Interface.
func (q *EventQueue) Swap(i, j int) {
	q.events[i], q.events[j] = q.events[j], q.events[i]
}

// Push implements heap.Interface.
func (q *EventQueue) Push(x any) {
	q.events = append(q.events, x.(Event))
}

// Pop implements heap.Interface.
func (q *EventQueue) Pop() any {
	old := q.events
	n := len(old)
	item := old[n-1]
	q.events = old[:n-1]
	return item
}

// setter is the hook the queue uses to stamp the insertion sequence on the
// shared event header.
type setter interface {
	setSeq(uint64)
}

// Schedule stamps the event with the next insertion sequence and adds it to
// the queue.
func (q *EventQueue) Schedule(e Event) {
	q.seq++
	e.(setter).setSeq(q.seq)
	heap.Push(q, e)
}

// PopNext removes and returns the next event, or nil when the queue is empty.
func (q *EventQueue) PopNext() Event {
	if q.Len() == 0 {
		return nil
	}
	return heap.Pop(q).(Event)
}

// Peek returns the first n events in firing order without removing them.
func (q *EventQueue) Peek(n int) []Event {
	if n <= 0 || q.Len() == 0 {
		return nil
	}
	sorted := make([]Event, len(q.events))
	copy(sorted, q.events)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Time() != sorted[j].Time() {
			return sorted[i].Time() < sorted[j].Time()
		}
		return sorted[i].SeqID() < sorted[j].SeqID()
	})
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}
