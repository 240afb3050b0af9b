package graph

import (
	gonumgraph "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/iterator"
)

// gview exposes the arena to gonum's algorithms as a weighted directed graph.
// Edge weight is BaseTravelTime, matching the shortest-path definition.
type gview struct {
	g *Network
}

func (g *Network) view() gview { return gview{g: g} }

// gnode is a lightweight gonum node over an arena index.
type gnode int64

func (n gnode) ID() int64 { return int64(n) }

// gedge is a weighted gonum edge over a pair of arena indices.
type gedge struct {
	from, to int64
	weight   float64
}

func (e gedge) From() gonumgraph.Node         { return gnode(e.from) }
func (e gedge) To() gonumgraph.Node           { return gnode(e.to) }
func (e gedge) ReversedEdge() gonumgraph.Edge { return gedge{from: e.to, to: e.from, weight: e.weight} }
func (e gedge) Weight() float64               { return e.weight }

func (v gview) Node(id int64) gonumgraph.Node {
	if id < 0 || id >= int64(len(v.g.nodes)) {
		return nil
	}
	return gnode(id)
}

func (v gview) Nodes() gonumgraph.Nodes {
	if len(v.g.nodes) == 0 {
		return gonumgraph.Empty
	}
	all := make([]gonumgraph.Node, len(v.g.nodes))
	for i := range v.g.nodes {
		all[i] = gnode(i)
	}
	return iterator.NewOrderedNodes(all)
}

func nodesOf(indices []int64) gonumgraph.Nodes {
	if len(indices) == 0 {
		return gonumgraph.Empty
	}
	out := make([]gonumgraph.Node, len(indices))
	for i, idx := range indices {
		out[i] = gnode(idx)
	}
	return iterator.NewOrderedNodes(out)
}

func (v gview) From(id int64) gonumgraph.Nodes { return nodesOf(v.g.adjOut[id]) }
func (v gview) To(id int64) gonumgraph.Nodes   { return nodesOf(v.g.adjIn[id]) }

func (v gview) HasEdgeBetween(xid, yid int64) bool {
	_, fwd := v.g.edges[[2]int64{xid, yid}]
	_, rev := v.g.edges[[2]int64{yid, xid}]
	return fwd || rev
}

func (v gview) HasEdgeFromTo(uid, vid int64) bool {
	_, ok := v.g.edges[[2]int64{uid, vid}]
	return ok
}

func (v gview) Edge(uid, vid int64) gonumgraph.Edge {
	return v.WeightedEdge(uid, vid)
}

func (v gview) WeightedEdge(uid, vid int64) gonumgraph.WeightedEdge {
	e, ok := v.g.edges[[2]int64{uid, vid}]
	if !ok {
		return nil
	}
	return gedge{from: uid, to: vid, weight: e.BaseTravelTime}
}

func (v gview) Weight(xid, yid int64) (w float64, ok bool) {
	if xid == yid {
		return 0, true
	}
	e, ok := v.g.edges[[2]int64{xid, yid}]
	if !ok {
		return 0, false
	}
	return e.BaseTravelTime, true
}
