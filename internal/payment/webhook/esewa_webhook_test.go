package webhook

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"pasalmart-be/internal/inventory"
	"pasalmart-be/internal/money"
	"pasalmart-be/internal/order"
	"pasalmart-be/internal/payment"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestHandler_EsewaCallbackHandler(t *testing.T) {
	settledOrder := &order.Order{
		ID:            uuid.New(),
		BuyerID:       7,
		TotalAmount:   money.FromPaisa(20000),
		PaymentStatus: order.PaymentCompleted,
	}

	validCallback := &payment.Callback{
		TransactionCode: "000ABC",
		Status:          payment.StatusComplete,
		TotalAmount:     "200.00",
		TransactionUUID: "TXN-1",
		ProductCode:     "EPAYTEST",
		Signature:       "sig",
	}

	newHandler := func() (*Handler, *MockOrderService, *MockGateway) {
		svc := new(MockOrderService)
		gw := new(MockGateway)
		return NewWebhookHandler(svc, gw), svc, gw
	}

	do := func(h *Handler, target string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("GET", target, nil)
		w := httptest.NewRecorder()
		h.EsewaCallbackHandler(w, req)
		return w
	}

	t.Run("Success", func(t *testing.T) {
		h, svc, gw := newHandler()
		gw.On("DecodeCallback", "blob").Return(validCallback, nil)
		gw.On("VerifyCallback", validCallback).Return(nil)
		svc.On("Settle", mock.Anything, "TXN-1", payment.StatusComplete, "200.00").
			Return(settledOrder, nil)

		w := do(h, "/payment/esewa/callback?data=blob")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), settledOrder.ID.String())
		assert.Contains(t, w.Body.String(), "COMPLETED")
		svc.AssertExpectations(t)
	})

	t.Run("MissingData", func(t *testing.T) {
		h, svc, _ := newHandler()

		w := do(h, "/payment/esewa/callback")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "Settle", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("MalformedBlob", func(t *testing.T) {
		h, svc, gw := newHandler()
		gw.On("DecodeCallback", "not-base64").Return(nil, payment.ErrMalformedCallback)

		w := do(h, "/payment/esewa/callback?data=not-base64")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "Settle", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("BadSignature", func(t *testing.T) {
		h, svc, gw := newHandler()
		gw.On("DecodeCallback", "blob").Return(validCallback, nil)
		gw.On("VerifyCallback", validCallback).Return(payment.ErrInvalidSignature)

		w := do(h, "/payment/esewa/callback?data=blob")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		svc.AssertNotCalled(t, "Settle", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("UnknownTransaction", func(t *testing.T) {
		h, svc, gw := newHandler()
		gw.On("DecodeCallback", "blob").Return(validCallback, nil)
		gw.On("VerifyCallback", validCallback).Return(nil)
		svc.On("Settle", mock.Anything, "TXN-1", payment.StatusComplete, "200.00").
			Return(nil, order.ErrOrderNotFound)

		w := do(h, "/payment/esewa/callback?data=blob")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("AmountMismatch", func(t *testing.T) {
		h, svc, gw := newHandler()
		gw.On("DecodeCallback", "blob").Return(validCallback, nil)
		gw.On("VerifyCallback", validCallback).Return(nil)
		svc.On("Settle", mock.Anything, "TXN-1", payment.StatusComplete, "200.00").
			Return(nil, order.ErrAmountMismatch)

		w := do(h, "/payment/esewa/callback?data=blob")

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("PaymentIncomplete", func(t *testing.T) {
		h, svc, gw := newHandler()
		pending := &payment.Callback{
			Status:          "PENDING",
			TotalAmount:     "200.00",
			TransactionUUID: "TXN-1",
		}
		gw.On("DecodeCallback", "blob").Return(pending, nil)
		gw.On("VerifyCallback", pending).Return(nil)
		svc.On("Settle", mock.Anything, "TXN-1", "PENDING", "200.00").
			Return(nil, order.ErrPaymentIncomplete)

		w := do(h, "/payment/esewa/callback?data=blob")

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("StockRanOut", func(t *testing.T) {
		h, svc, gw := newHandler()
		gw.On("DecodeCallback", "blob").Return(validCallback, nil)
		gw.On("VerifyCallback", validCallback).Return(nil)
		svc.On("Settle", mock.Anything, "TXN-1", payment.StatusComplete, "200.00").
			Return(nil, &inventory.InsufficientStockError{ProductID: 1, Requested: 2})

		w := do(h, "/payment/esewa/callback?data=blob")

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("InternalError", func(t *testing.T) {
		h, svc, gw := newHandler()
		gw.On("DecodeCallback", "blob").Return(validCallback, nil)
		gw.On("VerifyCallback", validCallback).Return(nil)
		svc.On("Settle", mock.Anything, "TXN-1", payment.StatusComplete, "200.00").
			Return(nil, errors.New("db down"))

		w := do(h, "/payment/esewa/callback?data=blob")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

// --- Mocks ---

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) Checkout(ctx context.Context, buyerID uint, method order.PaymentMethod) (*order.CheckoutResult, error) {
	args := m.Called(ctx, buyerID, method)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.CheckoutResult), args.Error(1)
}

func (m *MockOrderService) Settle(ctx context.Context, correlationToken, gatewayStatus, gatewayAmount string) (*order.Order, error) {
	args := m.Called(ctx, correlationToken, gatewayStatus, gatewayAmount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) Cancel(ctx context.Context, orderID uuid.UUID, actor order.Actor, reason string) (*order.Order, error) {
	args := m.Called(ctx, orderID, actor, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) UpdateFulfillment(ctx context.Context, orderID uuid.UUID, actor order.Actor, status order.FulfillmentStatus) (*order.Order, error) {
	args := m.Called(ctx, orderID, actor, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) GetOrder(ctx context.Context, orderID uuid.UUID, actor order.Actor) (*order.Order, error) {
	args := m.Called(ctx, orderID, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) ListOrders(ctx context.Context, actor order.Actor) ([]*order.Order, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) BuildRedirect(correlationToken string, total money.Amount) *payment.RedirectPayload {
	args := m.Called(correlationToken, total)
	return args.Get(0).(*payment.RedirectPayload)
}

func (m *MockGateway) DecodeCallback(data string) (*payment.Callback, error) {
	args := m.Called(data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Callback), args.Error(1)
}

func (m *MockGateway) VerifyCallback(cb *payment.Callback) error {
	args := m.Called(cb)
	return args.Error(0)
}
