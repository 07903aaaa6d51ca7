package inventory

import (
	"context"

	"pasalmart-be/internal/logger"

	"go.uber.org/zap"
)

// Line is one product/quantity pair of an order.
type Line struct {
	ProductID uint
	Quantity  int
}

// Ledger exposes multi-line stock adjustment with all-or-nothing
// semantics: a failed line rolls back every line decremented before it.
type Ledger interface {
	CheckAvailability(ctx context.Context, productID uint, qty int) (bool, error)
	DecrementAll(ctx context.Context, lines []Line) ([]StockChange, error)
	RestoreAll(ctx context.Context, lines []Line) ([]StockChange, error)
}

type ledger struct {
	repo Repository
}

func NewLedger(repo Repository) Ledger {
	return &ledger{repo: repo}
}

func (l *ledger) CheckAvailability(ctx context.Context, productID uint, qty int) (bool, error) {
	return l.repo.CheckAvailability(ctx, productID, qty)
}

// DecrementAll reserves every line or none. On the first failing line
// all prior decrements are restored before the error is returned, so a
// half-reserved order is never left behind.
func (l *ledger) DecrementAll(ctx context.Context, lines []Line) ([]StockChange, error) {
	changes := make([]StockChange, 0, len(lines))

	for _, line := range lines {
		change, err := l.repo.Decrement(ctx, line.ProductID, line.Quantity)
		if err != nil {
			l.rollback(ctx, changes)
			return nil, err
		}
		changes = append(changes, *change)
	}

	return changes, nil
}

// RestoreAll puts every line's quantity back. A failing line does not
// stop the remaining restores; the first error is reported after all
// lines were attempted.
func (l *ledger) RestoreAll(ctx context.Context, lines []Line) ([]StockChange, error) {
	changes := make([]StockChange, 0, len(lines))
	var firstErr error

	for _, line := range lines {
		change, err := l.repo.Restore(ctx, line.ProductID, line.Quantity)
		if err != nil {
			logger.FromCtx(ctx).Error("stock restore failed",
				zap.Uint("product_id", line.ProductID),
				zap.Int("quantity", line.Quantity),
				zap.Error(err),
			)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		changes = append(changes, *change)
	}

	return changes, firstErr
}

func (l *ledger) rollback(ctx context.Context, changes []StockChange) {
	for _, c := range changes {
		qty := c.Previous - c.New
		if _, err := l.repo.Restore(ctx, c.ProductID, qty); err != nil {
			logger.FromCtx(ctx).Error("rollback of stock decrement failed",
				zap.Uint("product_id", c.ProductID),
				zap.Int("quantity", qty),
				zap.Error(err),
			)
		}
	}
}
