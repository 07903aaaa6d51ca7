package order

import (
	"time"

	"pasalmart-be/internal/money"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
)

type FulfillmentStatus string

const (
	FulfillmentProcessing FulfillmentStatus = "PROCESSING"
	FulfillmentShipped    FulfillmentStatus = "SHIPPED"
	FulfillmentDelivered  FulfillmentStatus = "DELIVERED"
	FulfillmentCancelled  FulfillmentStatus = "CANCELLED"
)

type PaymentMethod string

const (
	// MethodEsewa defers settlement to the gateway callback; stock is
	// decremented when the callback lands.
	MethodEsewa PaymentMethod = "ESEWA"
	// MethodCOD settles out of band; stock is decremented at creation.
	MethodCOD PaymentMethod = "COD"
)

// DecrementsAtCreation reports which stock discipline the method uses.
// Exactly one of the two moments applies per order, never both.
func (m PaymentMethod) DecrementsAtCreation() bool {
	return m == MethodCOD
}

func (m PaymentMethod) Valid() bool {
	return m == MethodEsewa || m == MethodCOD
}

// LineItem snapshots one cart line at order time. UnitPrice is frozen
// here; later catalog price changes never reach an existing order.
type LineItem struct {
	ID        uint
	ProductID uint
	Quantity  int
	UnitPrice money.Amount
}

type Order struct {
	ID                uuid.UUID
	BuyerID           uint
	Items             []LineItem
	TotalAmount       money.Amount
	PaymentMethod     PaymentMethod
	CorrelationToken  string
	PaymentStatus     PaymentStatus
	FulfillmentStatus FulfillmentStatus
	// StockDeducted distinguishes an idempotent re-settlement from a
	// double decrement, and tells cancellation whether to restore.
	StockDeducted   bool
	CancelledReason *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Total recomputes the sum of the snapshotted line items. Equal to
// TotalAmount at creation by construction; exposed for auditing.
func (o *Order) Total() money.Amount {
	var total money.Amount
	for _, item := range o.Items {
		total += item.UnitPrice.MulQty(item.Quantity)
	}
	return total
}

// CanTransitionPayment guards the payment state machine: Pending may
// move to Completed or Failed, both of which are terminal.
func (o *Order) CanTransitionPayment(to PaymentStatus) bool {
	if o.PaymentStatus != PaymentPending {
		return false
	}
	return to == PaymentCompleted || to == PaymentFailed
}

// CanTransitionFulfillment guards the fulfillment chain: forward along
// Processing→Shipped→Delivered, or out to Cancelled while still
// Processing. Delivered and Cancelled are terminal.
func (o *Order) CanTransitionFulfillment(to FulfillmentStatus) bool {
	switch o.FulfillmentStatus {
	case FulfillmentProcessing:
		return to == FulfillmentShipped || to == FulfillmentCancelled
	case FulfillmentShipped:
		return to == FulfillmentDelivered
	default:
		return false
	}
}

// Cancellable reports whether the order may still be cancelled.
func (o *Order) Cancellable() bool {
	return o.CanTransitionFulfillment(FulfillmentCancelled)
}
