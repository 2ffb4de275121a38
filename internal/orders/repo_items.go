package orders

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ItemRepo is the postgres ItemStore. Items are deleted individually by the
// orchestrator, never cascaded implicitly.
type ItemRepo struct{ DB *pgxpool.Pool }

var _ ItemStore = (*ItemRepo)(nil)

func (r *ItemRepo) Save(ctx context.Context, it *OrderedItem) (*OrderedItem, error) {
	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	_, err := r.DB.Exec(ctx, `
		INSERT INTO ordered_items (id, order_id, item_id, name, quantity, price)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		it.ID, it.OrderID, it.ItemID, it.Name, it.Quantity, it.Price)
	if err != nil {
		return nil, err
	}
	return it, nil
}

func (r *ItemRepo) DeleteByID(ctx context.Context, id string) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM ordered_items WHERE id = $1`, id)
	return err
}

func (r *ItemRepo) FindByOrderID(ctx context.Context, orderID string) ([]OrderedItem, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, order_id, item_id, name, quantity, price
		FROM ordered_items WHERE order_id = $1`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OrderedItem
	for rows.Next() {
		var it OrderedItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ItemID, &it.Name, &it.Quantity, &it.Price); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// SumPriceByOrderID sums unit prices for the order's items.
func (r *ItemRepo) SumPriceByOrderID(ctx context.Context, orderID string) (float64, error) {
	var sum float64
	err := r.DB.QueryRow(ctx, `
		SELECT COALESCE(SUM(price), 0) FROM ordered_items WHERE order_id = $1`,
		orderID).Scan(&sum)
	return sum, err
}
