package orders

const (
	// Outbound: every order snapshot this service emits (placed, updated,
	// status changes applied by the sync handler).
	TopicOrderOut = "order.events"

	// Inbound: order snapshots produced by the fulfillment domain.
	TopicFulfillmentIn = "restaurant.fulfillment"
)

// Partition key = order id so all events of one order keep their order.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
