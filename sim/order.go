package sim

// OrderStatus is the order lifecycle status.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderAssigned  OrderStatus = "assigned"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

// Order is a transport request from an origin node to a distinct destination
// node. Transitions: pending -> assigned -> completed; pending -> cancelled
// when dispatch finds no viable route. Cancellation is terminal.
type Order struct {
	ID             string
	OriginNodeID   string
	DestNodeID     string
	CreationTime   float64
	CompletionTime float64 // set when the order completes
	Status         OrderStatus
}

// newOrder creates a pending order.
func newOrder(id, origin, destination string, creationTime float64) *Order {
	return &Order{
		ID:           id,
		OriginNodeID: origin,
		DestNodeID:   destination,
		CreationTime: creationTime,
		Status:       OrderPending,
	}
}
