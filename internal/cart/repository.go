package cart

import (
	"context"
	"database/sql"
	"fmt"

	"pasalmart-be/internal/money"
)

type Repository interface {
	GetSnapshot(ctx context.Context, userID uint) ([]SnapshotItem, error)
	Clear(ctx context.Context, userID uint) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// GetSnapshot reads the buyer's cart joined with the live product price.
// Prices are stored in paisa, so the join result is already the exact
// value the order will snapshot.
func (r *repository) GetSnapshot(ctx context.Context, userID uint) ([]SnapshotItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.product_id, c.quantity, p.price
		FROM carts c
		JOIN products p ON p.id = c.product_id
		WHERE c.user_id = $1
		ORDER BY c.created_at
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedGetCart, err)
	}
	defer rows.Close()

	var items []SnapshotItem
	for rows.Next() {
		var item SnapshotItem
		var price int64
		if err := rows.Scan(&item.ProductID, &item.Quantity, &price); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFailedGetCart, err)
		}
		item.UnitPrice = money.FromPaisa(price)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedGetCart, err)
	}

	return items, nil
}

func (r *repository) Clear(ctx context.Context, userID uint) error {
	if _, err := r.db.ExecContext(ctx, `
		DELETE FROM carts WHERE user_id = $1
	`, userID); err != nil {
		return fmt.Errorf("%w: %v", ErrFailedClearCart, err)
	}
	return nil
}
