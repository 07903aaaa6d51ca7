package notifier

import "context"

// StockEvent is broadcast whenever a product's stock counter moves.
type StockEvent struct {
	ProductID       uint `json:"productId"`
	PreviousStock   int  `json:"previousStock"`
	NewStock        int  `json:"newStock"`
	QuantityChanged int  `json:"quantityChanged"`
}

// SettlementEvent is the buyer-facing notice that a payment settled.
type SettlementEvent struct {
	OrderID       string `json:"orderId"`
	BuyerID       uint   `json:"buyerId"`
	TotalAmount   string `json:"totalAmount"`
	PaymentStatus string `json:"paymentStatus"`
}

// Notifier is a fire-and-forget bridge to the real-time event sink.
// Implementations must never let a publish failure reach the caller;
// delivery is observability, not correctness.
type Notifier interface {
	StockChanged(ctx context.Context, ev StockEvent)
	PaymentSettled(ctx context.Context, ev SettlementEvent)
}
