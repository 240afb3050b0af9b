package graph

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/graph/path"
)

// ShortestPath returns the node ID sequence of the minimum base-travel-time
// path from start to end, inclusive of both endpoints. The empty slice means
// no path exists. Unknown IDs are programmer errors.
func (g *Network) ShortestPath(start, end string) ([]string, error) {
	u, ok := g.byID[start]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNode, start)
	}
	v, ok := g.byID[end]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNode, end)
	}
	if u == v {
		return []string{start}, nil
	}

	shortest := path.DijkstraFrom(gnode(u), g.view())
	nodes, weight := shortest.To(v)
	if len(nodes) == 0 || math.IsInf(weight, 1) {
		return nil, nil
	}
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = g.nodes[n.ID()].ID
	}
	return ids, nil
}
