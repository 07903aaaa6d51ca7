package cart

import (
	"pasalmart-be/internal/money"
)

// SnapshotItem is one line of the buyer's cart with the product's price
// captured at read time. Orders are built from these, never from live
// catalog rows, so later price edits cannot reach an existing order.
type SnapshotItem struct {
	ProductID uint
	Quantity  int
	UnitPrice money.Amount
}
