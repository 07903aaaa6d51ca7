package order

import (
	"context"
	"database/sql"
	"errors"

	"pasalmart-be/internal/money"

	"github.com/google/uuid"
)

type Repository interface {
	CreateOrderTx(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	GetByCorrelationToken(ctx context.Context, token string) (*Order, error)
	ListByBuyer(ctx context.Context, buyerID uint) ([]*Order, error)
	ListAll(ctx context.Context) ([]*Order, error)

	// ClaimSettlement conditionally moves a still-processing PENDING
	// order to COMPLETED. False means another settlement already won
	// the row or the order was cancelled.
	ClaimSettlement(ctx context.Context, id uuid.UUID) (bool, error)
	ReleaseSettlement(ctx context.Context, id uuid.UUID) error
	SetStockDeducted(ctx context.Context, id uuid.UUID, deducted bool) error

	// CancelOrder conditionally cancels a still-processing order. The
	// second return is the row's stock_deducted at cancellation time,
	// so the restore decision cannot act on a stale read.
	CancelOrder(ctx context.Context, id uuid.UUID, reason string) (bool, bool, error)
	UpdateFulfillmentStatus(ctx context.Context, id uuid.UUID, from, to FulfillmentStatus) (bool, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// CreateOrderTx persists the order with its line items and clears the
// buyer's cart in the same transaction. Clearing here is what makes a
// blindly retried checkout see an empty cart instead of double-ordering.
func (r *repository) CreateOrderTx(ctx context.Context, o *Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (
			id, buyer_id, total_amount, payment_method,
			correlation_token, payment_status, fulfillment_status,
			stock_deducted, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,NOW(),NOW())
	`,
		o.ID,
		o.BuyerID,
		int64(o.TotalAmount),
		string(o.PaymentMethod),
		o.CorrelationToken,
		string(o.PaymentStatus),
		string(o.FulfillmentStatus),
		o.StockDeducted,
	)
	if err != nil {
		return err
	}

	for _, item := range o.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity, unit_price)
			VALUES ($1,$2,$3,$4)
		`,
			o.ID,
			item.ProductID,
			item.Quantity,
			int64(item.UnitPrice),
		)
		if err != nil {
			return err
		}
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM carts WHERE user_id = $1
	`, o.BuyerID)
	if err != nil {
		return err
	}

	return tx.Commit()
}

const orderColumns = `
	id, buyer_id, total_amount, payment_method,
	correlation_token, payment_status, fulfillment_status,
	stock_deducted, cancelled_reason, created_at, updated_at
`

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE id = $1
	`, id)

	return r.scanOrder(ctx, row)
}

func (r *repository) GetByCorrelationToken(ctx context.Context, token string) (*Order, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE correlation_token = $1
	`, token)

	return r.scanOrder(ctx, row)
}

func (r *repository) ListByBuyer(ctx context.Context, buyerID uint) ([]*Order, error) {
	return r.list(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE buyer_id = $1
		ORDER BY created_at DESC
	`, buyerID)
}

func (r *repository) ListAll(ctx context.Context) ([]*Order, error) {
	return r.list(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		ORDER BY created_at DESC
	`)
}

func (r *repository) ClaimSettlement(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET payment_status = 'COMPLETED',
		    fulfillment_status = 'PROCESSING',
		    updated_at = NOW()
		WHERE id = $1
		  AND payment_status = 'PENDING'
		  AND fulfillment_status = 'PROCESSING'
	`, id)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ReleaseSettlement undoes a claim when the stock decrement behind it
// failed, leaving the order pending for manual reconciliation.
func (r *repository) ReleaseSettlement(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET payment_status = 'PENDING', updated_at = NOW()
		WHERE id = $1
	`, id)
	return err
}

func (r *repository) SetStockDeducted(ctx context.Context, id uuid.UUID, deducted bool) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET stock_deducted = $2, updated_at = NOW()
		WHERE id = $1
	`, id, deducted)
	return err
}

func (r *repository) CancelOrder(ctx context.Context, id uuid.UUID, reason string) (bool, bool, error) {
	var stockDeducted bool
	err := r.db.QueryRowContext(ctx, `
		UPDATE orders
		SET fulfillment_status = 'CANCELLED',
		    cancelled_reason = $2,
		    updated_at = NOW()
		WHERE id = $1 AND fulfillment_status = 'PROCESSING'
		RETURNING stock_deducted
	`, id, reason).Scan(&stockDeducted)
	if errors.Is(err, sql.ErrNoRows) {
		return false, false, nil
	}
	if err != nil {
		return false, false, err
	}
	return true, stockDeducted, nil
}

func (r *repository) UpdateFulfillmentStatus(ctx context.Context, id uuid.UUID, from, to FulfillmentStatus) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET fulfillment_status = $3, updated_at = NOW()
		WHERE id = $1 AND fulfillment_status = $2
	`, id, string(from), string(to))
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *repository) scanOrder(ctx context.Context, row *sql.Row) (*Order, error) {
	var o Order
	var total int64
	var method, payStatus, fulfillStatus string

	err := row.Scan(
		&o.ID,
		&o.BuyerID,
		&total,
		&method,
		&o.CorrelationToken,
		&payStatus,
		&fulfillStatus,
		&o.StockDeducted,
		&o.CancelledReason,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	o.TotalAmount = money.FromPaisa(total)
	o.PaymentMethod = PaymentMethod(method)
	o.PaymentStatus = PaymentStatus(payStatus)
	o.FulfillmentStatus = FulfillmentStatus(fulfillStatus)

	if err := r.loadItems(ctx, &o); err != nil {
		return nil, err
	}

	return &o, nil
}

func (r *repository) list(ctx context.Context, query string, args ...interface{}) ([]*Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		var o Order
		var total int64
		var method, payStatus, fulfillStatus string

		err := rows.Scan(
			&o.ID,
			&o.BuyerID,
			&total,
			&method,
			&o.CorrelationToken,
			&payStatus,
			&fulfillStatus,
			&o.StockDeducted,
			&o.CancelledReason,
			&o.CreatedAt,
			&o.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}

		o.TotalAmount = money.FromPaisa(total)
		o.PaymentMethod = PaymentMethod(method)
		o.PaymentStatus = PaymentStatus(payStatus)
		o.FulfillmentStatus = FulfillmentStatus(fulfillStatus)
		orders = append(orders, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, o := range orders {
		if err := r.loadItems(ctx, o); err != nil {
			return nil, err
		}
	}

	return orders, nil
}

func (r *repository) loadItems(ctx context.Context, o *Order) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, product_id, quantity, unit_price
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`, o.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var item LineItem
		var price int64
		if err := rows.Scan(&item.ID, &item.ProductID, &item.Quantity, &price); err != nil {
			return err
		}
		item.UnitPrice = money.FromPaisa(price)
		o.Items = append(o.Items, item)
	}
	return rows.Err()
}
