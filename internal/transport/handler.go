package transport

import (
	"encoding/json"
	"errors"
	"net/http"

	"pasalmart-be/internal/cart"
	"pasalmart-be/internal/inventory"
	"pasalmart-be/internal/logger"
	"pasalmart-be/internal/order"
	"pasalmart-be/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler exposes the order lifecycle over REST.
type Handler struct {
	OrderSvc order.Service
}

func NewHandler(orderSvc order.Service) *Handler {
	return &Handler{OrderSvc: orderSvc}
}

type checkoutRequest struct {
	PaymentMethod string `json:"payment_method"`
}

type checkoutResponse struct {
	Order    *orderResponse `json:"order"`
	Redirect interface{}    `json:"redirect,omitempty"`
}

type orderResponse struct {
	ID                string             `json:"id"`
	BuyerID           uint               `json:"buyer_id"`
	Items             []lineItemResponse `json:"items"`
	TotalAmount       string             `json:"total_amount"`
	PaymentMethod     string             `json:"payment_method"`
	PaymentStatus     string             `json:"payment_status"`
	FulfillmentStatus string             `json:"fulfillment_status"`
	CancelledReason   *string            `json:"cancelled_reason,omitempty"`
}

type lineItemResponse struct {
	ProductID uint   `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

func toOrderResponse(o *order.Order) *orderResponse {
	items := make([]lineItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, lineItemResponse{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.String(),
		})
	}
	return &orderResponse{
		ID:                o.ID.String(),
		BuyerID:           o.BuyerID,
		Items:             items,
		TotalAmount:       o.TotalAmount.String(),
		PaymentMethod:     string(o.PaymentMethod),
		PaymentStatus:     string(o.PaymentStatus),
		FulfillmentStatus: string(o.FulfillmentStatus),
		CancelledReason:   o.CancelledReason,
	}
}

func actorFrom(r *http.Request) order.Actor {
	id, _ := utils.GetUserIDFromContext(r.Context())
	return order.Actor{ID: id, Role: utils.GetUserRoleFromContext(r.Context())}
}

// Checkout handles POST /checkout.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	actor := actorFrom(r)
	res, err := h.OrderSvc.Checkout(r.Context(), actor.ID, order.PaymentMethod(req.PaymentMethod))
	if err != nil {
		writeOrderError(w, r, err)
		return
	}

	resp := checkoutResponse{Order: toOrderResponse(res.Order)}
	if res.Redirect != nil {
		resp.Redirect = res.Redirect
	}
	utils.WriteJSON(w, http.StatusCreated, resp)
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

// CancelOrder handles POST /orders/{id}/cancel.
func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteJSONError(w, "invalid order id", http.StatusBadRequest)
		return
	}

	var req cancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.Reason == "" {
		utils.WriteJSONError(w, "reason is required", http.StatusBadRequest)
		return
	}

	o, err := h.OrderSvc.Cancel(r.Context(), orderID, actorFrom(r), req.Reason)
	if err != nil {
		writeOrderError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, toOrderResponse(o))
}

type fulfillmentRequest struct {
	Status string `json:"status"`
}

// UpdateFulfillment handles PATCH /orders/{id}/fulfillment.
func (h *Handler) UpdateFulfillment(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteJSONError(w, "invalid order id", http.StatusBadRequest)
		return
	}

	var req fulfillmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	o, err := h.OrderSvc.UpdateFulfillment(r.Context(), orderID, actorFrom(r), order.FulfillmentStatus(req.Status))
	if err != nil {
		writeOrderError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, toOrderResponse(o))
}

// GetOrder handles GET /orders/{id}.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteJSONError(w, "invalid order id", http.StatusBadRequest)
		return
	}

	o, err := h.OrderSvc.GetOrder(r.Context(), orderID, actorFrom(r))
	if err != nil {
		writeOrderError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, toOrderResponse(o))
}

// ListOrders handles GET /orders.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.OrderSvc.ListOrders(r.Context(), actorFrom(r))
	if err != nil {
		writeOrderError(w, r, err)
		return
	}

	resp := make([]*orderResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, toOrderResponse(o))
	}
	utils.WriteJSON(w, http.StatusOK, resp)
}

func writeOrderError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, order.ErrOrderNotFound):
		utils.WriteJSONError(w, "order not found", http.StatusNotFound)
	case errors.Is(err, order.ErrForbidden):
		utils.WriteJSONError(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, order.ErrInvalidTransition):
		utils.WriteJSONError(w, "invalid status transition", http.StatusConflict)
	case errors.Is(err, order.ErrInvalidMethod):
		utils.WriteJSONError(w, "unsupported payment method", http.StatusBadRequest)
	case errors.Is(err, cart.ErrCartEmpty):
		utils.WriteJSONError(w, "cart is empty", http.StatusBadRequest)
	case errors.Is(err, inventory.ErrInsufficientStock):
		utils.WriteJSONError(w, err.Error(), http.StatusConflict)
	default:
		logger.FromCtx(r.Context()).Error("request failed", zap.Error(err))
		utils.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
	}
}
