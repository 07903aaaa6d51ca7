package notifier

import "context"

type nopNotifier struct{}

// NewNop returns a Notifier that drops everything. Used when no event
// sink is configured.
func NewNop() Notifier {
	return nopNotifier{}
}

func (nopNotifier) StockChanged(context.Context, StockEvent) {}

func (nopNotifier) PaymentSettled(context.Context, SettlementEvent) {}
