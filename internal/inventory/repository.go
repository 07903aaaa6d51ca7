package inventory

import (
	"context"
	"database/sql"
	"errors"
)

// StockChange records a single stock mutation, carried through to the
// event notifier.
type StockChange struct {
	ProductID uint
	Previous  int
	New       int
}

type Repository interface {
	CheckAvailability(ctx context.Context, productID uint, qty int) (bool, error)
	Decrement(ctx context.Context, productID uint, qty int) (*StockChange, error)
	Restore(ctx context.Context, productID uint, qty int) (*StockChange, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// CheckAvailability is advisory only. The conditional UPDATE in
// Decrement is what actually protects the stock floor.
func (r *repository) CheckAvailability(ctx context.Context, productID uint, qty int) (bool, error) {
	var ok bool
	err := r.db.QueryRowContext(ctx, `
		SELECT stock >= $1
		FROM products
		WHERE id = $2
	`, qty, productID).Scan(&ok)

	if errors.Is(err, sql.ErrNoRows) {
		return false, ErrProductNotFound
	}
	if err != nil {
		return false, err
	}

	return ok, nil
}

// Decrement subtracts qty from the product's stock in one conditional
// update. Zero rows updated means the stock would have gone negative.
func (r *repository) Decrement(ctx context.Context, productID uint, qty int) (*StockChange, error) {
	var newStock int
	err := r.db.QueryRowContext(ctx, `
		UPDATE products
		SET stock = stock - $1, updated_at = NOW()
		WHERE id = $2 AND stock >= $1
		RETURNING stock
	`, qty, productID).Scan(&newStock)

	if errors.Is(err, sql.ErrNoRows) {
		exists, existsErr := r.productExists(ctx, productID)
		if existsErr != nil {
			return nil, existsErr
		}
		if !exists {
			return nil, ErrProductNotFound
		}
		return nil, &InsufficientStockError{ProductID: productID, Requested: qty}
	}
	if err != nil {
		return nil, err
	}

	return &StockChange{
		ProductID: productID,
		Previous:  newStock + qty,
		New:       newStock,
	}, nil
}

// Restore adds qty back, used only by cancellation and by rollback of a
// partially decremented order.
func (r *repository) Restore(ctx context.Context, productID uint, qty int) (*StockChange, error) {
	var newStock int
	err := r.db.QueryRowContext(ctx, `
		UPDATE products
		SET stock = stock + $1, updated_at = NOW()
		WHERE id = $2
		RETURNING stock
	`, qty, productID).Scan(&newStock)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}

	return &StockChange{
		ProductID: productID,
		Previous:  newStock - qty,
		New:       newStock,
	}, nil
}

func (r *repository) productExists(ctx context.Context, productID uint) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)
	`, productID).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}
