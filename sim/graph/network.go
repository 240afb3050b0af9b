// Package graph models the logistics network: typed nodes and bidirectional
// weighted edges held in an owned arena, with gonum's graph algorithms
// (Dijkstra, connected components) running against a thin facade over it.
// String node IDs survive only at the package boundary; everything internal
// is addressed by arena index.
package graph

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownNode reports a node ID that is not part of the network.
	ErrUnknownNode = errors.New("graph: unknown node")
	// ErrUnknownEdge reports a missing (source, target) edge.
	ErrUnknownEdge = errors.New("graph: unknown edge")
	// ErrEmptyGraph reports a build that produced no nodes.
	ErrEmptyGraph = errors.New("graph: empty graph")
	// ErrDuplicateNode reports an AddNode with an already-registered ID.
	ErrDuplicateNode = errors.New("graph: duplicate node")
)

// Network is the built logistics graph. Topology is immutable once a builder
// returns it; per-node service state (BusyCount, Queue) stays mutable for the
// engine.
type Network struct {
	nodes   []*Node
	byID    map[string]int64
	adjOut  [][]int64
	adjIn   [][]int64
	edges   map[[2]int64]*Edge
	numEdge int
}

// NewNetwork returns an empty network.
func NewNetwork() *Network {
	return &Network{
		byID:  make(map[string]int64),
		edges: make(map[[2]int64]*Edge),
	}
}

// AddNode registers a node and assigns its arena index.
func (g *Network) AddNode(n *Node) error {
	if _, ok := g.byID[n.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateNode, n.ID)
	}
	n.index = int64(len(g.nodes))
	g.byID[n.ID] = n.index
	g.nodes = append(g.nodes, n)
	g.adjOut = append(g.adjOut, nil)
	g.adjIn = append(g.adjIn, nil)
	return nil
}

// AddEdge registers a directed edge. Adding an edge that already exists is a
// no-op; the first weights win.
func (g *Network) AddEdge(e *Edge) error {
	u, ok := g.byID[e.Source]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, e.Source)
	}
	v, ok := g.byID[e.Target]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, e.Target)
	}
	key := [2]int64{u, v}
	if _, ok := g.edges[key]; ok {
		return nil
	}
	g.edges[key] = e
	g.adjOut[u] = append(g.adjOut[u], v)
	g.adjIn[v] = append(g.adjIn[v], u)
	g.numEdge++
	return nil
}

// NodeByID resolves a string node ID.
func (g *Network) NodeByID(id string) (*Node, error) {
	idx, ok := g.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	return g.nodes[idx], nil
}

// HasNode reports whether id is part of the network.
func (g *Network) HasNode(id string) bool {
	_, ok := g.byID[id]
	return ok
}

// Nodes returns all nodes in arena order. The slice is shared; callers must
// not reorder it.
func (g *Network) Nodes() []*Node { return g.nodes }

// EdgeBetween resolves the directed (source, target) edge.
func (g *Network) EdgeBetween(source, target string) (*Edge, error) {
	u, ok := g.byID[source]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNode, source)
	}
	v, ok := g.byID[target]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNode, target)
	}
	e, ok := g.edges[[2]int64{u, v}]
	if !ok {
		return nil, fmt.Errorf("%w: %s -> %s", ErrUnknownEdge, source, target)
	}
	return e, nil
}

// HasEdge reports whether the directed (source, target) edge exists.
func (g *Network) HasEdge(source, target string) bool {
	u, uok := g.byID[source]
	v, vok := g.byID[target]
	if !uok || !vok {
		return false
	}
	_, ok := g.edges[[2]int64{u, v}]
	return ok
}

// NumNodes returns the node count.
func (g *Network) NumNodes() int { return len(g.nodes) }

// NumEdges returns the directed edge count.
func (g *Network) NumEdges() int { return g.numEdge }
