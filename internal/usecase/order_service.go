package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"oms-backend/internal/domain"
)

type OrderRepo interface {
	// CreateOrderWithLegs persists a batch of facility orders and their
	// payment legs as one atomic unit; either everything lands or nothing.
	CreateOrderWithLegs(orders []*domain.Order, legs []*domain.PaymentLeg) error
	GetOrder(orderID string) (*domain.Order, bool)
	OrdersByParent(parentOrderID string) []*domain.Order
	UpdateOrderStatus(orderID string, status domain.OrderStatus) error
	UpdateOrderCancel(orderID string, status domain.OrderStatus, reason, remarks string) error
}

type PaymentRepo interface {
	LegsByOrder(orderID string) []*domain.PaymentLeg
	LegsByExternalRef(externalRef string) []*domain.PaymentLeg
	UpdateLegStatus(legID string, status domain.PaymentStatus) error
	UpdateLegGatewayPayment(legID, gatewayPaymentID string) error
}

// Customer is the slice of customer detail a gateway needs on its side.
type Customer struct {
	ID    string
	Name  string
	Phone string
}

// GatewayOrder is the gateway-side handle for a created payment order.
// PaymentURL is the fallback checkout link when no session id is issued.
type GatewayOrder struct {
	ExternalRef      string
	PaymentSessionID string
	PaymentURL       string
}

// GatewayProof carries whatever the gateway hands back for verification.
type GatewayProof struct {
	PaymentID string
	Signature string
}

type GatewayAdapter interface {
	Mode() domain.PaymentMode
	CreateOrder(ctx context.Context, orderRef string, amount decimal.Decimal, customer Customer) (GatewayOrder, error)
	Verify(ctx context.Context, externalRef string, proof GatewayProof) error
}

type WalletAdapter interface {
	// Debit returns ErrInsufficientBalance when the wallet cannot cover the
	// amount. relatedRef keys at-most-once semantics on the wallet side.
	Debit(ctx context.Context, customerID string, amount decimal.Decimal, relatedRef string) error
	Credit(ctx context.Context, customerID string, amount decimal.Decimal, relatedRef string) error
}

// DownstreamSync hands fully-paid orders to the warehouse system. Both calls
// are fire-and-forget; retries are the downstream's problem and come back as
// WMS_SYNC_FAILED status updates.
type DownstreamSync interface {
	Enqueue(orderID string)
	EnqueueCancel(orderID string)
}

type OrderService struct {
	Orders   OrderRepo
	Payments PaymentRepo
	Gateways map[domain.PaymentMode]GatewayAdapter
	Wallet   WalletAdapter
	Sync     DownstreamSync
	Log      *slog.Logger
}

type CreateOrderRequest struct {
	Origin        domain.Origin
	CustomerID    string
	CustomerName  string
	CustomerPhone string
	Items         []domain.OrderItem
	TotalAmount   decimal.Decimal
	Payment       []ProposedLeg
	PromotionCode string
}

type CreatedOrder struct {
	OrderID      string               `json:"orderId"`
	FacilityName string               `json:"facilityName"`
	TotalAmount  decimal.Decimal      `json:"totalAmount"`
	Status       domain.OrderStatus   `json:"status"`
	StatusLabel  string               `json:"statusLabel"`
	Payments     []*domain.PaymentLeg `json:"payments"`
}

type CreateOrderResult struct {
	ParentOrderID string         `json:"parentOrderId"`
	Orders        []CreatedOrder `json:"orders"`
}

func (s *OrderService) logger() *slog.Logger {
	if s.Log != nil {
		return s.Log
	}
	return slog.Default()
}

// CreateOrder validates the payment split, creates one order per facility,
// performs immediate settlement for settleable modes, and persists the whole
// unit of work. External side effects run before persistence so a fatal
// settlement failure leaves no partial order behind; wallet debits taken
// before a later fatal failure are credited back as compensation.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResult, error) {
	if strings.TrimSpace(req.CustomerID) == "" {
		return nil, ErrBadRequest("customer_id required")
	}
	if len(req.Items) == 0 {
		return nil, ErrBadRequest("items required")
	}
	itemsTotal := decimal.Zero
	for _, it := range req.Items {
		if it.Quantity <= 0 || strings.TrimSpace(it.SKU) == "" || strings.TrimSpace(it.FacilityName) == "" {
			return nil, ErrBadRequest("each item needs sku, facility_name and a positive quantity")
		}
		itemsTotal = itemsTotal.Add(it.LineTotal())
	}
	// The facility allocation divides by the items total.
	if !itemsTotal.IsPositive() {
		return nil, ErrBadRequest("items must total a positive amount")
	}
	if _, ok := domain.ParseOrigin(string(req.Origin)); !ok {
		return nil, ErrBadRequest("origin must be app or pos")
	}

	validated, err := ValidateSplit(req.Origin, req.Payment, req.TotalAmount)
	if err != nil {
		return nil, err
	}

	parentID := newOrderID()
	now := time.Now().UTC()
	orders, legsByOrder := buildFacilityOrders(req, parentID, validated, now)

	anyGateway := false
	for _, v := range validated {
		if v.Mode.IsGateway() {
			anyGateway = true
		}
	}

	customer := Customer{ID: req.CustomerID, Name: req.CustomerName, Phone: req.CustomerPhone}
	var compensations []func()

	fail := func(serr error) (*CreateOrderResult, error) {
		for i := len(compensations) - 1; i >= 0; i-- {
			compensations[i]()
		}
		return nil, serr
	}

	// Gateway legs: create one gateway-side order per mode for the combined
	// amount, shared across facility orders. Wallet debits are deferred until
	// the gateway leg verifies, so the total stays collectable as one unit.
	for _, v := range validated {
		if !v.Mode.IsGateway() {
			continue
		}
		gw := s.Gateways[v.Mode]
		if gw == nil {
			return fail(&SettlementError{Code: CodeGatewayCreateFailed, Mode: v.Mode, Cause: errors.New("gateway not configured")})
		}
		gwOrder, err := gw.CreateOrder(ctx, parentID, v.Amount, customer)
		if err != nil {
			s.logger().Error("gateway order create failed", "parent_order_id", parentID, "mode", v.Mode, "err", err)
			return fail(&SettlementError{Code: CodeGatewayCreateFailed, Mode: v.Mode, Cause: err})
		}
		s.logger().Info("gateway order created", "parent_order_id", parentID, "mode", v.Mode, "external_ref", gwOrder.ExternalRef, "amount", v.Amount)
		for _, legs := range legsByOrder {
			for _, leg := range legs {
				if leg.Mode == v.Mode {
					leg.ExternalRef = gwOrder.ExternalRef
					leg.PaymentSessionID = gwOrder.PaymentSessionID
					leg.PaymentURL = gwOrder.PaymentURL
				}
			}
		}
	}

	if !anyGateway {
		for _, o := range orders {
			for _, leg := range legsByOrder[o.OrderID] {
				if leg.Mode != domain.ModeWallet {
					continue
				}
				leg := leg
				ref := "oms_" + leg.PaymentID + "_" + o.OrderID
				if err := s.Wallet.Debit(ctx, req.CustomerID, leg.Amount, ref); err != nil {
					s.logger().Error("wallet debit failed", "order_id", o.OrderID, "amount", leg.Amount, "err", err)
					code := CodeWalletDebitFailed
					if errors.Is(err, ErrInsufficientBalance) {
						code = CodeWalletInsufficientBalance
					}
					return fail(&SettlementError{Code: code, Mode: domain.ModeWallet, Cause: err})
				}
				compensations = append(compensations, func() {
					if cerr := s.Wallet.Credit(ctx, req.CustomerID, leg.Amount, ref+"_reversal"); cerr != nil {
						s.logger().Error("wallet compensation credit failed", "order_id", leg.OrderID, "err", cerr)
					}
				})
				leg.Status = domain.PaymentCompleted
			}
		}
	}

	var allLegs []*domain.PaymentLeg
	syncNow := make([]string, 0, len(orders))
	for _, o := range orders {
		legs := legsByOrder[o.OrderID]
		if syncReady(o.TotalAmount, legs) {
			o.Status = domain.StatusOpen
			syncNow = append(syncNow, o.OrderID)
		}
		allLegs = append(allLegs, legs...)
	}

	if err := s.Orders.CreateOrderWithLegs(orders, allLegs); err != nil {
		return fail(err)
	}

	for _, id := range syncNow {
		s.Sync.Enqueue(id)
	}

	res := &CreateOrderResult{ParentOrderID: parentID}
	for _, o := range orders {
		res.Orders = append(res.Orders, CreatedOrder{
			OrderID:      o.OrderID,
			FacilityName: o.FacilityName,
			TotalAmount:  o.TotalAmount,
			Status:       o.Status,
			StatusLabel:  o.Status.CustomerLabel(),
			Payments:     legsByOrder[o.OrderID],
		})
	}
	s.logger().Info("order created", "parent_order_id", parentID, "orders", len(orders), "legs", len(allLegs), "synced_immediately", len(syncNow))
	return res, nil
}

// buildFacilityOrders groups items by facility and allocates the payment
// split proportionally across the resulting orders. Per-leg allocations are
// rounded half-up to 2dp with the last mode absorbing the remainder so each
// order's legs sum exactly to its total, and facility totals sum exactly to
// the parent total.
func buildFacilityOrders(req CreateOrderRequest, parentID string, validated []ValidatedLeg, now time.Time) ([]*domain.Order, map[string][]*domain.PaymentLeg) {
	byFacility := map[string][]domain.OrderItem{}
	var facilities []string
	for _, it := range req.Items {
		if _, ok := byFacility[it.FacilityName]; !ok {
			facilities = append(facilities, it.FacilityName)
		}
		byFacility[it.FacilityName] = append(byFacility[it.FacilityName], it)
	}

	itemsTotal := decimal.Zero
	for _, it := range req.Items {
		itemsTotal = itemsTotal.Add(it.LineTotal())
	}

	// Facility totals: proportional share of the order total, remainder to
	// the last facility.
	totals := make([]decimal.Decimal, len(facilities))
	assigned := decimal.Zero
	for i, f := range facilities {
		if i == len(facilities)-1 {
			totals[i] = req.TotalAmount.Sub(assigned)
			break
		}
		sub := decimal.Zero
		for _, it := range byFacility[f] {
			sub = sub.Add(it.LineTotal())
		}
		totals[i] = req.TotalAmount.Mul(sub).Div(itemsTotal).Round(2)
		assigned = assigned.Add(totals[i])
	}

	// One shared public payment id per mode across facility orders.
	paymentIDs := map[domain.PaymentMode]string{}
	for _, v := range validated {
		paymentIDs[v.Mode] = newPaymentID(v.Mode)
	}

	orders := make([]*domain.Order, 0, len(facilities))
	legsByOrder := map[string][]*domain.PaymentLeg{}
	for i, f := range facilities {
		o := &domain.Order{
			ID:            uuid.NewString(),
			OrderID:       newOrderID(),
			ParentOrderID: parentID,
			CustomerID:    req.CustomerID,
			CustomerName:  req.CustomerName,
			CustomerPhone: req.CustomerPhone,
			Origin:        req.Origin,
			FacilityName:  f,
			Items:         byFacility[f],
			TotalAmount:   totals[i],
			Status:        domain.StatusDraft,
			PromotionCode: req.PromotionCode,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if len(facilities) == 1 {
			o.OrderID = parentID
		}
		orders = append(orders, o)

		allocated := decimal.Zero
		for j, v := range validated {
			var amount decimal.Decimal
			if j == len(validated)-1 {
				amount = o.TotalAmount.Sub(allocated)
			} else {
				amount = o.TotalAmount.Mul(v.Amount).Div(req.TotalAmount).Round(2)
				allocated = allocated.Add(amount)
			}
			legsByOrder[o.OrderID] = append(legsByOrder[o.OrderID], &domain.PaymentLeg{
				ID:                 uuid.NewString(),
				OrderID:            o.OrderID,
				PaymentID:          paymentIDs[v.Mode],
				Mode:               v.Mode,
				Amount:             amount,
				CreatePaymentOrder: v.CreatePaymentOrder,
				Status:             v.InitialStatus,
				CreatedAt:          now,
				UpdatedAt:          now,
			})
		}
	}
	return orders, legsByOrder
}

// syncReady reports whether an order may be released to the warehouse: every
// leg COMPLETED, except cod which is collected at the door and does not gate
// release, and the covered amounts summing exactly to the order total. Any
// mismatch blocks sync; silent under- or over-collection never ships.
func syncReady(total decimal.Decimal, legs []*domain.PaymentLeg) bool {
	if len(legs) == 0 {
		return false
	}
	covered := decimal.Zero
	for _, leg := range legs {
		switch {
		case leg.Status == domain.PaymentCompleted:
			covered = covered.Add(leg.Amount)
		case leg.Mode == domain.ModeCOD && leg.Status == domain.PaymentPending:
			covered = covered.Add(leg.Amount)
		default:
			return false
		}
	}
	return covered.Equal(total)
}

// VerifyGatewayPayment settles a gateway leg after the client (or a webhook)
// presents proof of payment. Re-verifying an already-completed leg is a
// no-op. On success the deferred non-gateway legs are processed and, once
// every leg is settled, the order syncs downstream — the only path by which
// a gateway-containing order reaches the warehouse.
func (s *OrderService) VerifyGatewayPayment(ctx context.Context, externalRef string, proof GatewayProof) error {
	legs := s.Payments.LegsByExternalRef(externalRef)
	if len(legs) == 0 {
		return ErrNotFound("payment")
	}
	mode := legs[0].Mode

	done := true
	for _, leg := range legs {
		if leg.Status != domain.PaymentCompleted {
			done = false
		}
	}
	if done {
		// The gateway side is settled; still re-attempt any deferred leg
		// that failed on an earlier pass.
		for _, leg := range legs {
			if err := s.settleDeferredLegs(ctx, leg.OrderID); err != nil {
				return err
			}
		}
		return nil
	}

	gw := s.Gateways[mode]
	if gw == nil {
		return &SettlementError{Code: CodeGatewayVerifyFailed, Mode: mode, Cause: errors.New("gateway not configured")}
	}
	if err := gw.Verify(ctx, externalRef, proof); err != nil {
		s.logger().Warn("gateway verification failed", "external_ref", externalRef, "mode", mode, "err", err)
		for _, leg := range legs {
			_ = s.Payments.UpdateLegStatus(leg.ID, domain.PaymentFailed)
		}
		return &SettlementError{Code: CodeGatewayVerifyFailed, Mode: mode, Cause: err}
	}
	return s.completeGatewayLegs(ctx, legs, proof.PaymentID)
}

// ApplyGatewayWebhook applies a signature-verified webhook status. The server
// layer owns signature verification; by the time this runs the event is
// trusted.
func (s *OrderService) ApplyGatewayWebhook(ctx context.Context, externalRef, gatewayPaymentID string, status domain.PaymentStatus) error {
	legs := s.Payments.LegsByExternalRef(externalRef)
	if len(legs) == 0 {
		return ErrNotFound("payment")
	}
	switch status {
	case domain.PaymentCompleted:
		return s.completeGatewayLegs(ctx, legs, gatewayPaymentID)
	case domain.PaymentFailed:
		for _, leg := range legs {
			if leg.Status == domain.PaymentCompleted {
				continue
			}
			_ = s.Payments.UpdateLegStatus(leg.ID, domain.PaymentFailed)
		}
		return nil
	}
	return nil
}

func (s *OrderService) completeGatewayLegs(ctx context.Context, legs []*domain.PaymentLeg, gatewayPaymentID string) error {
	orderIDs := make([]string, 0, len(legs))
	for _, leg := range legs {
		if leg.Status != domain.PaymentCompleted {
			if err := s.Payments.UpdateLegStatus(leg.ID, domain.PaymentCompleted); err != nil {
				return err
			}
			if gatewayPaymentID != "" {
				_ = s.Payments.UpdateLegGatewayPayment(leg.ID, gatewayPaymentID)
			}
			leg.Status = domain.PaymentCompleted
		}
		orderIDs = append(orderIDs, leg.OrderID)
	}
	for _, orderID := range orderIDs {
		if err := s.settleDeferredLegs(ctx, orderID); err != nil {
			return err
		}
	}
	return nil
}

// settleDeferredLegs processes the non-gateway legs of an order whose
// gateway leg just completed, in gateway -> wallet -> cash order, then
// releases the order downstream if everything is covered. Wallet legs in
// FAILED state are retried; the relatedRef keeps the wallet-side entry
// at-most-once, so a repeat verify after a failed debit can recover.
func (s *OrderService) settleDeferredLegs(ctx context.Context, orderID string) error {
	order, ok := s.Orders.GetOrder(orderID)
	if !ok {
		return ErrNotFound("order")
	}
	legs := s.Payments.LegsByOrder(orderID)

	for _, leg := range legs {
		if leg.Mode != domain.ModeWallet {
			continue
		}
		if leg.Status != domain.PaymentPending && leg.Status != domain.PaymentFailed {
			continue
		}
		ref := "oms_" + leg.PaymentID + "_" + orderID
		if err := s.Wallet.Debit(ctx, order.CustomerID, leg.Amount, ref); err != nil {
			_ = s.Payments.UpdateLegStatus(leg.ID, domain.PaymentFailed)
			leg.Status = domain.PaymentFailed
			s.logger().Error("deferred wallet debit failed", "order_id", orderID, "err", err)
			code := CodeWalletDebitFailed
			if errors.Is(err, ErrInsufficientBalance) {
				code = CodeWalletInsufficientBalance
			}
			return &SettlementError{Code: code, Mode: domain.ModeWallet, Cause: err}
		}
		if err := s.Payments.UpdateLegStatus(leg.ID, domain.PaymentCompleted); err != nil {
			return err
		}
		leg.Status = domain.PaymentCompleted
	}

	if order.Status == domain.StatusDraft && syncReady(order.TotalAmount, legs) {
		if err := s.Orders.UpdateOrderStatus(orderID, domain.StatusOpen); err != nil {
			return err
		}
		s.Sync.Enqueue(orderID)
		s.logger().Info("order released downstream", "order_id", orderID)
	}
	return nil
}

type LegSummary struct {
	PaymentID   string             `json:"paymentId"`
	Mode        domain.PaymentMode `json:"paymentMode"`
	Amount      decimal.Decimal    `json:"amount"`
	Status      string             `json:"status"`
	StatusLabel string             `json:"statusLabel"`
}

type PaymentSummary struct {
	OrderID        string       `json:"orderId"`
	CompletedCount int          `json:"completedCount"`
	PendingCount   int          `json:"pendingCount"`
	FailedCount    int          `json:"failedCount"`
	RefundedCount  int          `json:"refundedCount"`
	Overall        string       `json:"overallStatus"`
	Legs           []LegSummary `json:"payments"`
}

// PaymentStatus returns per-leg detail plus counts by status and a derived
// overall label for an order.
func (s *OrderService) PaymentStatus(orderID string) (*PaymentSummary, error) {
	if _, ok := s.Orders.GetOrder(orderID); !ok {
		return nil, ErrNotFound("order")
	}
	legs := s.Payments.LegsByOrder(orderID)
	sum := &PaymentSummary{OrderID: orderID}
	for _, leg := range legs {
		switch leg.Status {
		case domain.PaymentCompleted:
			sum.CompletedCount++
		case domain.PaymentFailed:
			sum.FailedCount++
		case domain.PaymentRefunded:
			sum.RefundedCount++
		default:
			sum.PendingCount++
		}
		sum.Legs = append(sum.Legs, LegSummary{
			PaymentID:   leg.PaymentID,
			Mode:        leg.Mode,
			Amount:      leg.Amount,
			Status:      leg.Status.String(),
			StatusLabel: leg.Status.Description(),
		})
	}
	switch {
	case len(legs) == 0:
		sum.Overall = "No Payments"
	case sum.RefundedCount == len(legs):
		sum.Overall = "Payment Refunded"
	case sum.FailedCount > 0:
		sum.Overall = "Payment Failed"
	case sum.PendingCount > 0:
		sum.Overall = "Payment Pending"
	default:
		sum.Overall = "Payment Completed"
	}
	return sum, nil
}

// CancelOrder cancels an order if picking has not started. Cancelling twice
// is a no-op. When a completed leg holds collected money the order parks in
// CANCELLED_PENDING_REFUND until the refund workflow clears it.
func (s *OrderService) CancelOrder(orderID, reason, remarks string) (domain.OrderStatus, error) {
	order, ok := s.Orders.GetOrder(orderID)
	if !ok {
		return 0, ErrNotFound("order")
	}
	if order.Status == domain.StatusCanceled || order.Status == domain.StatusCancelledPendingRefund {
		return order.Status, nil
	}
	if !order.Status.CanCancel() {
		return 0, ErrConflict("order can no longer be cancelled")
	}

	target := domain.StatusCanceled
	for _, leg := range s.Payments.LegsByOrder(orderID) {
		if leg.Status == domain.PaymentCompleted {
			target = domain.StatusCancelledPendingRefund
			break
		}
	}
	if err := s.Orders.UpdateOrderCancel(orderID, target, reason, remarks); err != nil {
		return 0, err
	}
	if order.Status.Band() != domain.BandOMS || order.Status == domain.StatusOpen {
		// The warehouse already knows about this order.
		s.Sync.EnqueueCancel(orderID)
	}
	s.logger().Info("order cancelled", "order_id", orderID, "status", int(target), "reason", reason)
	return target, nil
}

// RefundLeg moves a completed leg to REFUNDED; only the explicit refund
// workflow calls this, never settlement. Once no completed leg remains on a
// cancelled-pending-refund order it settles to CANCELED.
func (s *OrderService) RefundLeg(orderID, paymentID string) error {
	order, ok := s.Orders.GetOrder(orderID)
	if !ok {
		return ErrNotFound("order")
	}
	legs := s.Payments.LegsByOrder(orderID)
	var target *domain.PaymentLeg
	for _, leg := range legs {
		if leg.PaymentID == paymentID {
			target = leg
			break
		}
	}
	if target == nil {
		return ErrNotFound("payment")
	}
	if target.Status == domain.PaymentRefunded {
		return nil
	}
	if target.Status != domain.PaymentCompleted {
		return ErrConflict("only completed payments can be refunded")
	}
	if err := s.Payments.UpdateLegStatus(target.ID, domain.PaymentRefunded); err != nil {
		return err
	}
	target.Status = domain.PaymentRefunded

	if order.Status == domain.StatusCancelledPendingRefund {
		for _, leg := range legs {
			if leg.Status == domain.PaymentCompleted {
				return nil
			}
		}
		return s.Orders.UpdateOrderStatus(orderID, domain.StatusCanceled)
	}
	return nil
}

// AdvanceStatus applies a downstream (WMS/TMS) status callback, enforcing
// the forward transition table.
func (s *OrderService) AdvanceStatus(orderID string, to domain.OrderStatus) error {
	order, ok := s.Orders.GetOrder(orderID)
	if !ok {
		return ErrNotFound("order")
	}
	if order.Status == to {
		return nil
	}
	if !domain.CanTransition(order.Status, to) {
		return ErrConflict("illegal status transition")
	}
	return s.Orders.UpdateOrderStatus(orderID, to)
}

type OrderView struct {
	*domain.Order
	StatusLabel string               `json:"statusLabel"`
	CanCancel   bool                 `json:"canCancel"`
	Payments    []*domain.PaymentLeg `json:"payments"`
}

func (s *OrderService) GetOrder(orderID string) (*OrderView, error) {
	order, ok := s.Orders.GetOrder(orderID)
	if !ok {
		return nil, ErrNotFound("order")
	}
	return &OrderView{
		Order:       order,
		StatusLabel: order.Status.CustomerLabel(),
		CanCancel:   order.Status.CanCancel(),
		Payments:    s.Payments.LegsByOrder(orderID),
	}, nil
}

// CancelReasons is the fixed catalog surfaced to clients.
func CancelReasons() map[string]string {
	return map[string]string{
		"NO_LONGER_NEED":         "No longer need the order / Ordered by mistake",
		"STORE_ASKED_TO_CANCEL":  "Store asked to cancel",
		"FOUND_BETTER_PRICE":     "Found a better price elsewhere",
		"DELIVERY_TIME_TOO_LONG": "Delivery time too long",
		"DELIVERY_DELAY":         "Not Delivered on Time",
		"ADDRESS_CHANGE":         "Need to change delivery address",
		"PAYMENT_ISSUE":          "Payment issues",
		"OTHER":                  "Other",
	}
}

func newOrderID() string {
	return "ORD" + strings.ToUpper(randomHex(5))
}

func newPaymentID(mode domain.PaymentMode) string {
	return strings.ToUpper(string(mode)) + "_" + strings.ToUpper(randomHex(4))
}

func randomHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
