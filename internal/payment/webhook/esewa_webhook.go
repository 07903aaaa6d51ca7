package webhook

import (
	"errors"
	"net/http"

	"pasalmart-be/internal/inventory"
	"pasalmart-be/internal/logger"
	"pasalmart-be/internal/order"
	"pasalmart-be/internal/payment"
	"pasalmart-be/internal/utils"

	"go.uber.org/zap"
)

// Handler terminates the eSewa callback redirect.
type Handler struct {
	OrderSvc order.Service
	Gateway  payment.Gateway
}

func NewWebhookHandler(orderSvc order.Service, gateway payment.Gateway) *Handler {
	return &Handler{
		OrderSvc: orderSvc,
		Gateway:  gateway,
	}
}

type callbackResponse struct {
	OrderID       string `json:"order_id"`
	PaymentStatus string `json:"payment_status"`
	TotalAmount   string `json:"total_amount"`
}

// EsewaCallbackHandler handles GET /payment/esewa/callback?data=<base64>.
// eSewa delivers the callback through the buyer's browser, so the same
// blob can arrive any number of times; Settle absorbs the duplicates.
func (h *Handler) EsewaCallbackHandler(w http.ResponseWriter, r *http.Request) {
	log := logger.FromCtx(r.Context())

	data := r.URL.Query().Get("data")
	if data == "" {
		utils.WriteJSONError(w, "missing data parameter", http.StatusBadRequest)
		return
	}

	cb, err := h.Gateway.DecodeCallback(data)
	if err != nil {
		log.Warn("undecodable gateway callback", zap.Error(err))
		utils.WriteJSONError(w, "malformed callback", http.StatusBadRequest)
		return
	}

	if err := h.Gateway.VerifyCallback(cb); err != nil {
		log.Warn("callback signature rejected",
			zap.String("transaction_uuid", cb.TransactionUUID))
		utils.WriteJSONError(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	o, err := h.OrderSvc.Settle(r.Context(), cb.TransactionUUID, cb.Status, cb.TotalAmount)
	if err != nil {
		writeSettleError(w, log, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, callbackResponse{
		OrderID:       o.ID.String(),
		PaymentStatus: string(o.PaymentStatus),
		TotalAmount:   o.TotalAmount.String(),
	})
}

func writeSettleError(w http.ResponseWriter, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, order.ErrOrderNotFound):
		utils.WriteJSONError(w, "unknown transaction", http.StatusNotFound)
	case errors.Is(err, order.ErrPaymentIncomplete):
		// Not a failure on our side; the gateway retries with a final
		// status and the order stays pending until then.
		utils.WriteJSONError(w, "payment not complete", http.StatusConflict)
	case errors.Is(err, order.ErrAmountMismatch):
		log.Error("callback amount rejected", zap.Error(err))
		utils.WriteJSONError(w, "amount mismatch", http.StatusConflict)
	case errors.Is(err, inventory.ErrInsufficientStock):
		utils.WriteJSONError(w, "insufficient stock", http.StatusConflict)
	default:
		log.Error("settlement failed", zap.Error(err))
		utils.WriteJSONError(w, "failed to settle payment", http.StatusInternalServerError)
	}
}
