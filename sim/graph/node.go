package graph

// NodeKind classifies a transport node.
type NodeKind string

const (
	KindWarehouse  NodeKind = "warehouse"
	KindHub        NodeKind = "hub"
	KindPort       NodeKind = "port"
	KindInspection NodeKind = "inspection"
	KindCustomer   NodeKind = "customer"
)

// Kinds lists all node kinds in a fixed order, used by the random builder.
var Kinds = []NodeKind{KindWarehouse, KindHub, KindPort, KindInspection, KindCustomer}

// Node is a transport location. Identity is the stable string ID; the integer
// arena index is internal and doubles as the gonum node ID. BusyCount and
// Queue are the node's service state, mutated exclusively by the engine.
type Node struct {
	index int64

	ID           string
	Kind         NodeKind
	Lat          float64
	Lon          float64
	Capacity     int
	IsInspection bool

	BusyCount int
	Queue     []string // truck IDs waiting for a service slot, FIFO
}

// Index returns the node's arena slot.
func (n *Node) Index() int64 { return n.index }

// Edge is a directed connection between two nodes. Every edge added by the
// builders has a reverse twin with equal weights. Weights are immutable after
// the network is built.
type Edge struct {
	Source         string
	Target         string
	DistanceKm     float64
	BaseTravelTime float64 // minutes
}
