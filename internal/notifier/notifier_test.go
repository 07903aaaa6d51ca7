package notifier

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Field names are consumed by the frontend bridge; keep them stable.
func TestStockEventJSON(t *testing.T) {
	body, err := json.Marshal(StockEvent{
		ProductID:       1,
		PreviousStock:   5,
		NewStock:        3,
		QuantityChanged: -2,
	})
	require.NoError(t, err)

	assert.JSONEq(t, `{"productId":1,"previousStock":5,"newStock":3,"quantityChanged":-2}`, string(body))
}

func TestSettlementEventJSON(t *testing.T) {
	body, err := json.Marshal(SettlementEvent{
		OrderID:       "o-1",
		BuyerID:       7,
		TotalAmount:   "200.00",
		PaymentStatus: "COMPLETED",
	})
	require.NoError(t, err)

	assert.JSONEq(t, `{"orderId":"o-1","buyerId":7,"totalAmount":"200.00","paymentStatus":"COMPLETED"}`, string(body))
}
