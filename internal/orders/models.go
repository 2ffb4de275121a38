package orders

import "time"

type Order struct {
	ID           string    `json:"id"`
	CustomerID   string    `json:"customer_id"`
	RestaurantID string    `json:"restaurant_id"`
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// OrderedItem carries a value copy of the catalog name and unit price taken
// at validation time; it is never re-read from the catalog afterwards.
type OrderedItem struct {
	ID       string  `json:"id"`
	OrderID  string  `json:"order_id"`
	ItemID   string  `json:"item_id"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// ItemInput is one requested line of a place or update call.
type ItemInput struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

// UpdateResult is what updateOrder hands back: the saved order fields plus
// the item set persisted by this call.
type UpdateResult struct {
	OrderID      string        `json:"order_id"`
	CustomerID   string        `json:"customer_id"`
	Status       Status        `json:"status"`
	RestaurantID string        `json:"restaurant_id"`
	Items        []OrderedItem `json:"items"`
}
