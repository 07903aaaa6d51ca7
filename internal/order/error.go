package order

import "errors"

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrAmountMismatch     = errors.New("settlement amount mismatch")
	ErrPaymentIncomplete  = errors.New("gateway did not report payment complete")
	ErrInvalidMethod      = errors.New("unknown payment method")
	ErrSettlementConflict = errors.New("settlement already in progress")
)
