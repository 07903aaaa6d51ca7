package order

import (
	"context"
	"fmt"

	"pasalmart-be/internal/cart"
	"pasalmart-be/internal/inventory"
	"pasalmart-be/internal/logger"
	"pasalmart-be/internal/money"
	"pasalmart-be/internal/notifier"
	"pasalmart-be/internal/payment"
	"pasalmart-be/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// amountTolerancePaisa absorbs gateway rounding of two-decimal amount
// strings. Anything beyond it is treated as an integrity signal.
const amountTolerancePaisa = 1

// Actor is the authenticated caller, as resolved by the identity
// middleware.
type Actor struct {
	ID   uint
	Role string
}

func (a Actor) isAdmin() bool {
	return a.Role == utils.RoleAdmin
}

// CheckoutResult carries the persisted order plus, for the gateway
// flow, the signed redirect form the buyer's browser forwards.
type CheckoutResult struct {
	Order    *Order
	Redirect *payment.RedirectPayload
}

type Service interface {
	Checkout(ctx context.Context, buyerID uint, method PaymentMethod) (*CheckoutResult, error)
	Settle(ctx context.Context, correlationToken, gatewayStatus, gatewayAmount string) (*Order, error)
	Cancel(ctx context.Context, orderID uuid.UUID, actor Actor, reason string) (*Order, error)
	UpdateFulfillment(ctx context.Context, orderID uuid.UUID, actor Actor, status FulfillmentStatus) (*Order, error)
	GetOrder(ctx context.Context, orderID uuid.UUID, actor Actor) (*Order, error)
	ListOrders(ctx context.Context, actor Actor) ([]*Order, error)
}

type service struct {
	repo     Repository
	cartRepo cart.Repository
	ledger   inventory.Ledger
	gateway  payment.Gateway
	events   notifier.Notifier
}

func NewService(
	repo Repository,
	cartRepo cart.Repository,
	ledger inventory.Ledger,
	gateway payment.Gateway,
	events notifier.Notifier,
) Service {
	return &service{
		repo:     repo,
		cartRepo: cartRepo,
		ledger:   ledger,
		gateway:  gateway,
		events:   events,
	}
}

// Checkout turns the buyer's cart into a durable pending order. COD
// decrements stock here; the eSewa flow only pre-checks availability
// and defers the decrement to Settle, so each order deducts exactly
// once no matter which moment applies.
func (s *service) Checkout(ctx context.Context, buyerID uint, method PaymentMethod) (*CheckoutResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.Uint("buyer_id", buyerID),
		zap.String("method", string(method)),
	)

	if !method.Valid() {
		return nil, ErrInvalidMethod
	}

	snapshot, err := s.cartRepo.GetSnapshot(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	if len(snapshot) == 0 {
		return nil, cart.ErrCartEmpty
	}

	items := make([]LineItem, 0, len(snapshot))
	var total money.Amount
	for _, row := range snapshot {
		if row.Quantity <= 0 {
			return nil, fmt.Errorf("invalid cart quantity %d for product %d", row.Quantity, row.ProductID)
		}
		items = append(items, LineItem{
			ProductID: row.ProductID,
			Quantity:  row.Quantity,
			UnitPrice: row.UnitPrice,
		})
		total += row.UnitPrice.MulQty(row.Quantity)
	}

	o := &Order{
		ID:                uuid.New(),
		BuyerID:           buyerID,
		Items:             items,
		TotalAmount:       total,
		PaymentMethod:     method,
		CorrelationToken:  utils.GenerateCorrelationToken(),
		PaymentStatus:     PaymentPending,
		FulfillmentStatus: FulfillmentProcessing,
		StockDeducted:     method.DecrementsAtCreation(),
	}

	var changes []inventory.StockChange
	if method.DecrementsAtCreation() {
		changes, err = s.ledger.DecrementAll(ctx, invLines(items))
		if err != nil {
			return nil, err
		}
	} else {
		// Advisory only; the decrement at settlement is the real guard.
		for _, item := range items {
			ok, err := s.ledger.CheckAvailability(ctx, item.ProductID, item.Quantity)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, &inventory.InsufficientStockError{ProductID: item.ProductID, Requested: item.Quantity}
			}
		}
	}

	if err := s.repo.CreateOrderTx(ctx, o); err != nil {
		if method.DecrementsAtCreation() {
			// Order never persisted; give the stock back.
			_, _ = s.ledger.RestoreAll(ctx, invLines(items))
		}
		return nil, err
	}

	for _, c := range changes {
		s.events.StockChanged(ctx, stockEvent(c))
	}

	result := &CheckoutResult{Order: o}
	if method == MethodEsewa {
		result.Redirect = s.gateway.BuildRedirect(o.CorrelationToken, o.TotalAmount)
	}

	log.Info("order created",
		zap.String("order_id", o.ID.String()),
		zap.String("correlation_token", o.CorrelationToken),
		zap.String("total", o.TotalAmount.String()),
		zap.Int("line_items", len(items)),
	)

	return result, nil
}

// Settle processes one gateway callback for the order behind the
// correlation token. Safe to call any number of times: a Completed
// order short-circuits to success before anything is touched.
func (s *service) Settle(ctx context.Context, correlationToken, gatewayStatus, gatewayAmount string) (*Order, error) {
	log := logger.FromCtx(ctx).With(zap.String("correlation_token", correlationToken))

	o, err := s.repo.GetByCorrelationToken(ctx, correlationToken)
	if err != nil {
		return nil, err
	}

	if o.PaymentStatus == PaymentCompleted {
		log.Info("duplicate settlement, already completed")
		return o, nil
	}

	// Cancelled is terminal. A late callback for a cancelled order must
	// not resurrect it; its stock has already been restored.
	if o.FulfillmentStatus == FulfillmentCancelled {
		log.Warn("settlement rejected, order already cancelled")
		return nil, ErrInvalidTransition
	}

	if gatewayStatus != payment.StatusComplete {
		// No terminal failure from one ambiguous callback; the gateway
		// may retry with a final status.
		log.Warn("gateway status not complete, order left pending",
			zap.String("gateway_status", gatewayStatus))
		return nil, ErrPaymentIncomplete
	}

	amount, err := money.Parse(gatewayAmount)
	if err != nil {
		return nil, fmt.Errorf("%w: unparseable gateway amount %q", ErrAmountMismatch, gatewayAmount)
	}
	if !money.WithinTolerance(amount, o.TotalAmount, amountTolerancePaisa) {
		// Integrity signal, not a transient error. Frozen pending for
		// manual reconciliation.
		log.Error("settlement amount mismatch",
			zap.String("gateway_amount", amount.String()),
			zap.String("order_amount", o.TotalAmount.String()),
		)
		return nil, ErrAmountMismatch
	}

	claimed, err := s.repo.ClaimSettlement(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	if !claimed {
		// Either a concurrent callback got there first or the order was
		// cancelled under us; re-read to tell the two apart.
		cur, err := s.repo.GetByID(ctx, o.ID)
		if err != nil {
			return nil, err
		}
		if cur.FulfillmentStatus == FulfillmentCancelled {
			log.Warn("settlement rejected, order cancelled under claim")
			return nil, ErrInvalidTransition
		}
		log.Info("settlement lost race, treating as duplicate")
		return cur, nil
	}

	var changes []inventory.StockChange
	if !o.StockDeducted {
		changes, err = s.ledger.DecrementAll(ctx, invLines(o.Items))
		if err != nil {
			if relErr := s.repo.ReleaseSettlement(ctx, o.ID); relErr != nil {
				log.Error("failed to release settlement claim", zap.Error(relErr))
			}
			log.Error("stock decrement failed at settlement, order left pending", zap.Error(err))
			return nil, err
		}
		if err := s.repo.SetStockDeducted(ctx, o.ID, true); err != nil {
			// Claim and decrement are committed; only the bookkeeping
			// flag is stale. Surface loudly, do not unwind money.
			log.Error("failed to record stock deduction", zap.Error(err))
		}
	}

	// Defensive: the buyer may have re-added items between redirect and
	// callback, and the callback must leave a clean cart behind.
	if err := s.cartRepo.Clear(ctx, o.BuyerID); err != nil {
		log.Warn("defensive cart clear failed", zap.Error(err))
	}

	o.PaymentStatus = PaymentCompleted
	o.FulfillmentStatus = FulfillmentProcessing
	o.StockDeducted = true

	for _, c := range changes {
		s.events.StockChanged(ctx, stockEvent(c))
	}
	s.events.PaymentSettled(ctx, notifier.SettlementEvent{
		OrderID:       o.ID.String(),
		BuyerID:       o.BuyerID,
		TotalAmount:   o.TotalAmount.String(),
		PaymentStatus: string(PaymentCompleted),
	})

	log.Info("payment settled", zap.String("order_id", o.ID.String()))
	return o, nil
}

// Cancel moves a still-processing order to Cancelled and restores stock
// if this order's stock was ever deducted.
func (s *service) Cancel(ctx context.Context, orderID uuid.UUID, actor Actor, reason string) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("order_id", orderID.String()),
		zap.Uint("actor_id", actor.ID),
	)

	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if actor.ID != o.BuyerID && !actor.isAdmin() {
		return nil, ErrForbidden
	}
	if !o.Cancellable() {
		return nil, ErrInvalidTransition
	}

	// The restore decision rides on the stock_deducted the cancel UPDATE
	// itself returned; a concurrent settlement may have decremented
	// after our read above.
	ok, stockDeducted, err := s.repo.CancelOrder(ctx, orderID, reason)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Shipped or cancelled since we loaded it.
		return nil, ErrInvalidTransition
	}

	o.StockDeducted = stockDeducted
	if stockDeducted {
		changes, restoreErr := s.ledger.RestoreAll(ctx, invLines(o.Items))
		if restoreErr != nil {
			log.Error("stock restore incomplete after cancellation", zap.Error(restoreErr))
		}
		for _, c := range changes {
			s.events.StockChanged(ctx, stockEvent(c))
		}
	}

	o.FulfillmentStatus = FulfillmentCancelled
	o.CancelledReason = &reason

	log.Info("order cancelled", zap.String("reason", reason))
	return o, nil
}

// UpdateFulfillment advances the fulfillment chain. Cancellation has
// its own path because of the stock restore.
func (s *service) UpdateFulfillment(ctx context.Context, orderID uuid.UUID, actor Actor, status FulfillmentStatus) (*Order, error) {
	if actor.Role != utils.RoleSeller && !actor.isAdmin() {
		return nil, ErrForbidden
	}
	if status == FulfillmentCancelled {
		return nil, ErrInvalidTransition
	}

	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.CanTransitionFulfillment(status) {
		return nil, ErrInvalidTransition
	}

	ok, err := s.repo.UpdateFulfillmentStatus(ctx, orderID, o.FulfillmentStatus, status)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidTransition
	}

	o.FulfillmentStatus = status
	return o, nil
}

func (s *service) GetOrder(ctx context.Context, orderID uuid.UUID, actor Actor) (*Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.BuyerID != actor.ID && !actor.isAdmin() {
		return nil, ErrForbidden
	}
	return o, nil
}

func (s *service) ListOrders(ctx context.Context, actor Actor) ([]*Order, error) {
	if actor.isAdmin() {
		return s.repo.ListAll(ctx)
	}
	return s.repo.ListByBuyer(ctx, actor.ID)
}

func invLines(items []LineItem) []inventory.Line {
	lines := make([]inventory.Line, 0, len(items))
	for _, item := range items {
		lines = append(lines, inventory.Line{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return lines
}

func stockEvent(c inventory.StockChange) notifier.StockEvent {
	return notifier.StockEvent{
		ProductID:       c.ProductID,
		PreviousStock:   c.Previous,
		NewStock:        c.New,
		QuantityChanged: c.New - c.Previous,
	}
}
