package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo is the postgres OrderStore.
type Repo struct{ DB *pgxpool.Pool }

var _ OrderStore = (*Repo)(nil)

const orderCols = `id, customer_id, restaurant_id, status, created_at, updated_at`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.CustomerID, &o.RestaurantID, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Save inserts or overwrites the order and returns the row as persisted,
// with the server-assigned id and timestamps filled in.
func (r *Repo) Save(ctx context.Context, o *Order) (*Order, error) {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	row := r.DB.QueryRow(ctx, `
		INSERT INTO orders (id, customer_id, restaurant_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, COALESCE($5, now()), now())
		ON CONFLICT (id) DO UPDATE
		SET customer_id = EXCLUDED.customer_id,
		    restaurant_id = EXCLUDED.restaurant_id,
		    status = EXCLUDED.status,
		    updated_at = now()
		RETURNING `+orderCols,
		o.ID, o.CustomerID, o.RestaurantID, o.Status, nullTime(o.CreatedAt))
	return scanOrder(row)
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	return err
}

func (r *Repo) FindByID(ctx context.Context, id string) (*Order, error) {
	return scanOrder(r.DB.QueryRow(ctx,
		`SELECT `+orderCols+` FROM orders WHERE id = $1`, id))
}

func (r *Repo) FindActive(ctx context.Context, id string) (*Order, error) {
	return scanOrder(r.DB.QueryRow(ctx,
		`SELECT `+orderCols+` FROM orders
		 WHERE id = $1 AND status NOT IN ('CANCELLED', 'COMPLETED')`, id))
}

func (r *Repo) FindActiveByCustomer(ctx context.Context, id, customerID string) (*Order, error) {
	return scanOrder(r.DB.QueryRow(ctx,
		`SELECT `+orderCols+` FROM orders
		 WHERE id = $1 AND customer_id = $2
		   AND status NOT IN ('CANCELLED', 'COMPLETED')`, id, customerID))
}

// UpdateStatusActive is a single conditional write: the active check and the
// status change cannot interleave with a concurrent terminal transition.
func (r *Repo) UpdateStatusActive(ctx context.Context, id, customerID string, to Status) (bool, error) {
	tag, err := r.DB.Exec(ctx, `
		UPDATE orders SET status = $3, updated_at = now()
		WHERE id = $1 AND customer_id = $2
		  AND status NOT IN ('CANCELLED', 'COMPLETED')`,
		id, customerID, to)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *Repo) ApplyActive(ctx context.Context, o *Order) (bool, error) {
	tag, err := r.DB.Exec(ctx, `
		UPDATE orders SET customer_id = $2, restaurant_id = $3, status = $4, updated_at = now()
		WHERE id = $1 AND status NOT IN ('CANCELLED', 'COMPLETED')`,
		o.ID, o.CustomerID, o.RestaurantID, o.Status)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
