package orders

import "context"

// OrderStore is the key-addressable order persistence the orchestrator
// needs. "Active" queries only see non-terminal orders; terminal orders are
// invisible to them by construction.
type OrderStore interface {
	Save(ctx context.Context, o *Order) (*Order, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Order, error)
	FindActive(ctx context.Context, id string) (*Order, error)
	FindActiveByCustomer(ctx context.Context, id, customerID string) (*Order, error)

	// UpdateStatusActive moves an active order owned by customerID to the
	// given status in one conditional write. false means there was no active
	// order to move, which is a normal outcome, not an error.
	UpdateStatusActive(ctx context.Context, id, customerID string, to Status) (bool, error)

	// ApplyActive overwrites an order's mutable fields only while it is
	// still active, in one conditional write. false means the order is
	// terminal or unknown.
	ApplyActive(ctx context.Context, o *Order) (bool, error)
}

type ItemStore interface {
	Save(ctx context.Context, it *OrderedItem) (*OrderedItem, error)
	DeleteByID(ctx context.Context, id string) error
	FindByOrderID(ctx context.Context, orderID string) ([]OrderedItem, error)
	SumPriceByOrderID(ctx context.Context, orderID string) (float64, error)
}
