package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"oms-backend/internal/domain"
)

type fakeStore struct {
	orders map[string]*domain.Order
	legs   map[string]*domain.PaymentLeg
	fail   bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{orders: map[string]*domain.Order{}, legs: map[string]*domain.PaymentLeg{}}
}

func (s *fakeStore) CreateOrderWithLegs(orders []*domain.Order, legs []*domain.PaymentLeg) error {
	if s.fail {
		return errors.New("store down")
	}
	for _, o := range orders {
		cp := *o
		s.orders[o.OrderID] = &cp
	}
	for _, l := range legs {
		cp := *l
		s.legs[l.ID] = &cp
	}
	return nil
}

func (s *fakeStore) GetOrder(id string) (*domain.Order, bool) {
	o, ok := s.orders[id]
	if !ok {
		return nil, false
	}
	cp := *o
	return &cp, true
}

func (s *fakeStore) OrdersByParent(parent string) []*domain.Order {
	var out []*domain.Order
	for _, o := range s.orders {
		if o.ParentOrderID == parent {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out
}

func (s *fakeStore) UpdateOrderStatus(id string, st domain.OrderStatus) error {
	o, ok := s.orders[id]
	if !ok {
		return ErrNotFound("order")
	}
	o.Status = st
	return nil
}

func (s *fakeStore) UpdateOrderCancel(id string, st domain.OrderStatus, reason, remarks string) error {
	o, ok := s.orders[id]
	if !ok {
		return ErrNotFound("order")
	}
	o.Status = st
	o.CancelReason = reason
	o.CancelRemarks = remarks
	return nil
}

func (s *fakeStore) LegsByOrder(id string) []*domain.PaymentLeg {
	var out []*domain.PaymentLeg
	for _, l := range s.legs {
		if l.OrderID == id {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out
}

func (s *fakeStore) LegsByExternalRef(ref string) []*domain.PaymentLeg {
	var out []*domain.PaymentLeg
	for _, l := range s.legs {
		if ref != "" && l.ExternalRef == ref {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out
}

func (s *fakeStore) UpdateLegStatus(id string, st domain.PaymentStatus) error {
	l, ok := s.legs[id]
	if !ok {
		return ErrNotFound("payment")
	}
	l.Status = st
	return nil
}

func (s *fakeStore) UpdateLegGatewayPayment(id, gatewayPaymentID string) error {
	l, ok := s.legs[id]
	if !ok {
		return ErrNotFound("payment")
	}
	l.GatewayPaymentID = gatewayPaymentID
	return nil
}

type fakeWallet struct {
	balance decimal.Decimal
	debits  []decimal.Decimal
	credits []decimal.Decimal
}

func (w *fakeWallet) Debit(_ context.Context, _ string, amount decimal.Decimal, _ string) error {
	if amount.GreaterThan(w.balance) {
		return ErrInsufficientBalance
	}
	w.balance = w.balance.Sub(amount)
	w.debits = append(w.debits, amount)
	return nil
}

func (w *fakeWallet) Credit(_ context.Context, _ string, amount decimal.Decimal, _ string) error {
	w.balance = w.balance.Add(amount)
	w.credits = append(w.credits, amount)
	return nil
}

type fakeGateway struct {
	mode      domain.PaymentMode
	createErr error
	verifyErr error
	created   []decimal.Decimal
}

func (g *fakeGateway) Mode() domain.PaymentMode { return g.mode }

func (g *fakeGateway) CreateOrder(_ context.Context, orderRef string, amount decimal.Decimal, _ Customer) (GatewayOrder, error) {
	if g.createErr != nil {
		return GatewayOrder{}, g.createErr
	}
	g.created = append(g.created, amount)
	return GatewayOrder{ExternalRef: "gw_" + orderRef, PaymentURL: "https://pay.example/" + orderRef}, nil
}

func (g *fakeGateway) Verify(_ context.Context, _ string, _ GatewayProof) error {
	return g.verifyErr
}

type fakeSync struct {
	synced    []string
	cancelled []string
}

func (s *fakeSync) Enqueue(orderID string)       { s.synced = append(s.synced, orderID) }
func (s *fakeSync) EnqueueCancel(orderID string) { s.cancelled = append(s.cancelled, orderID) }

func newService(store *fakeStore, wallet *fakeWallet, sync *fakeSync, gws ...*fakeGateway) *OrderService {
	m := map[domain.PaymentMode]GatewayAdapter{}
	for _, g := range gws {
		m[g.mode] = g
	}
	return &OrderService{Orders: store, Payments: store, Gateways: m, Wallet: wallet, Sync: sync}
}

func items(facility string) []domain.OrderItem {
	return []domain.OrderItem{
		{SKU: "SKU1", Name: "Rice 5kg", SalePrice: dec("60.00"), Quantity: 1, FacilityName: facility},
		{SKU: "SKU2", Name: "Oil 1l", SalePrice: dec("40.00"), Quantity: 1, FacilityName: facility},
	}
}

func TestCreateOrderPOSCashPlusWalletSyncsImmediately(t *testing.T) {
	store := newFakeStore()
	wallet := &fakeWallet{balance: dec("500")}
	sync := &fakeSync{}
	svc := newService(store, wallet, sync)

	res, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		Origin:      domain.OriginPOS,
		CustomerID:  "c1",
		Items:       items("F1"),
		TotalAmount: dec("100.00"),
		Payment: []ProposedLeg{
			{Mode: domain.ModeCash, Amount: dec("60.00")},
			{Mode: domain.ModeWallet, Amount: dec("40.00")},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Orders) != 1 {
		t.Fatalf("orders = %d, want 1", len(res.Orders))
	}
	if res.Orders[0].Status != domain.StatusOpen {
		t.Errorf("status = %d, want OPEN", res.Orders[0].Status)
	}
	if len(sync.synced) != 1 {
		t.Fatalf("expected immediate downstream sync, got %d", len(sync.synced))
	}
	if !wallet.balance.Equal(dec("460")) {
		t.Errorf("wallet balance = %s, want 460", wallet.balance)
	}
	for _, leg := range store.LegsByOrder(res.Orders[0].OrderID) {
		if leg.Status != domain.PaymentCompleted {
			t.Errorf("leg %s status = %d, want completed", leg.PaymentID, leg.Status)
		}
	}
}

func TestCreateOrderWalletInsufficientLeavesNothingBehind(t *testing.T) {
	store := newFakeStore()
	wallet := &fakeWallet{balance: dec("10")}
	sync := &fakeSync{}
	svc := newService(store, wallet, sync)

	_, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		Origin:      domain.OriginPOS,
		CustomerID:  "c1",
		Items:       items("F1"),
		TotalAmount: dec("100.00"),
		Payment: []ProposedLeg{
			{Mode: domain.ModeCash, Amount: dec("60.00")},
			{Mode: domain.ModeWallet, Amount: dec("40.00")},
		},
	})
	var serr *SettlementError
	if !errors.As(err, &serr) || serr.Code != CodeWalletInsufficientBalance {
		t.Fatalf("expected WALLET_INSUFFICIENT_BALANCE, got %v", err)
	}
	if len(store.orders) != 0 || len(store.legs) != 0 {
		t.Error("no order or leg may persist after a fatal settlement failure")
	}
	if len(sync.synced) != 0 {
		t.Error("nothing may sync after a failed creation")
	}
}

func TestCreateOrderStoreFailureRefundsWallet(t *testing.T) {
	store := newFakeStore()
	store.fail = true
	wallet := &fakeWallet{balance: dec("100")}
	svc := newService(store, wallet, &fakeSync{})

	_, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		Origin:      domain.OriginPOS,
		CustomerID:  "c1",
		Items:       items("F1"),
		TotalAmount: dec("100.00"),
		Payment:     []ProposedLeg{{Mode: domain.ModeCash, Amount: dec("60.00")}, {Mode: domain.ModeWallet, Amount: dec("40.00")}},
	})
	if err == nil {
		t.Fatal("expected persistence error")
	}
	if !wallet.balance.Equal(dec("100")) {
		t.Errorf("wallet balance = %s, want the debit credited back", wallet.balance)
	}
	if len(wallet.credits) != 1 {
		t.Errorf("credits = %d, want 1 compensation entry", len(wallet.credits))
	}
}

func TestCreateOrderGatewayDefersWalletAndSync(t *testing.T) {
	store := newFakeStore()
	wallet := &fakeWallet{balance: dec("500")}
	sync := &fakeSync{}
	gw := &fakeGateway{mode: domain.ModeRazorpay}
	svc := newService(store, wallet, sync, gw)

	res, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		Origin:      domain.OriginApp,
		CustomerID:  "c1",
		Items:       items("F1"),
		TotalAmount: dec("100.00"),
		Payment: []ProposedLeg{
			{Mode: domain.ModeRazorpay, Amount: dec("70.00")},
			{Mode: domain.ModeWallet, Amount: dec("30.00")},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(wallet.debits) != 0 {
		t.Error("wallet debit must defer until gateway verification")
	}
	if len(sync.synced) != 0 {
		t.Error("sync must defer until gateway verification")
	}
	if res.Orders[0].Status != domain.StatusDraft {
		t.Errorf("status = %d, want DRAFT while payment pending", res.Orders[0].Status)
	}
	if len(gw.created) != 1 || !gw.created[0].Equal(dec("70.00")) {
		t.Fatalf("gateway order amounts = %v, want one for 70.00", gw.created)
	}

	// Verification settles the gateway leg, debits the wallet and releases
	// the order.
	if err := svc.VerifyGatewayPayment(context.Background(), "gw_"+res.ParentOrderID, GatewayProof{PaymentID: "pay_1", Signature: "sig"}); err != nil {
		t.Fatal(err)
	}
	if len(wallet.debits) != 1 || !wallet.debits[0].Equal(dec("30.00")) {
		t.Fatalf("wallet debits = %v, want one for 30.00", wallet.debits)
	}
	if len(sync.synced) != 1 {
		t.Fatalf("synced = %v, want the order released", sync.synced)
	}
	order, _ := store.GetOrder(res.Orders[0].OrderID)
	if order.Status != domain.StatusOpen {
		t.Errorf("status = %d, want OPEN after settlement", order.Status)
	}

	// Re-verifying is a no-op.
	if err := svc.VerifyGatewayPayment(context.Background(), "gw_"+res.ParentOrderID, GatewayProof{PaymentID: "pay_1", Signature: "sig"}); err != nil {
		t.Fatal(err)
	}
	if len(wallet.debits) != 1 {
		t.Error("re-verification must not debit the wallet again")
	}
	if len(sync.synced) != 1 {
		t.Error("re-verification must not sync again")
	}
}

func TestCreateOrderZeroPricedItemsRejected(t *testing.T) {
	store := newFakeStore()
	svc := newService(store, &fakeWallet{balance: dec("500")}, &fakeSync{})

	free := []domain.OrderItem{
		{SKU: "A", Name: "Sample A", SalePrice: dec("0"), Quantity: 1, FacilityName: "F1"},
		{SKU: "B", Name: "Sample B", SalePrice: dec("0"), Quantity: 2, FacilityName: "F2"},
	}
	_, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		Origin:      domain.OriginPOS,
		CustomerID:  "c1",
		Items:       free,
		TotalAmount: dec("100.00"),
		Payment:     []ProposedLeg{{Mode: domain.ModeCash, Amount: dec("100.00")}},
	})
	var br ErrBadRequest
	if !errors.As(err, &br) {
		t.Fatalf("expected bad-request for a zero-value cart, got %v", err)
	}
	if len(store.orders) != 0 || len(store.legs) != 0 {
		t.Error("nothing may persist from a rejected cart")
	}
}

func TestDeferredWalletFailureRecoversOnReverify(t *testing.T) {
	store := newFakeStore()
	wallet := &fakeWallet{balance: dec("0")}
	sync := &fakeSync{}
	gw := &fakeGateway{mode: domain.ModeRazorpay}
	svc := newService(store, wallet, sync, gw)

	res, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		Origin:      domain.OriginApp,
		CustomerID:  "c1",
		Items:       items("F1"),
		TotalAmount: dec("100.00"),
		Payment: []ProposedLeg{
			{Mode: domain.ModeRazorpay, Amount: dec("70.00")},
			{Mode: domain.ModeWallet, Amount: dec("30.00")},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	orderID := res.Orders[0].OrderID
	ref := "gw_" + res.ParentOrderID

	err = svc.VerifyGatewayPayment(context.Background(), ref, GatewayProof{PaymentID: "pay_1", Signature: "sig"})
	var serr *SettlementError
	if !errors.As(err, &serr) || serr.Code != CodeWalletInsufficientBalance {
		t.Fatalf("expected WALLET_INSUFFICIENT_BALANCE, got %v", err)
	}
	order, _ := store.GetOrder(orderID)
	if order.Status != domain.StatusDraft {
		t.Fatalf("status = %d, want DRAFT while the wallet leg is unsettled", order.Status)
	}
	if len(sync.synced) != 0 {
		t.Fatal("an order with a failed wallet leg must not sync")
	}

	// The customer tops up and the caller retries the same verification.
	wallet.balance = dec("100")
	if err := svc.VerifyGatewayPayment(context.Background(), ref, GatewayProof{PaymentID: "pay_1", Signature: "sig"}); err != nil {
		t.Fatal(err)
	}
	if len(wallet.debits) != 1 || !wallet.debits[0].Equal(dec("30.00")) {
		t.Fatalf("wallet debits = %v, want one retry debit of 30.00", wallet.debits)
	}
	if len(sync.synced) != 1 {
		t.Fatalf("synced = %v, want the order released after the retry", sync.synced)
	}
	order, _ = store.GetOrder(orderID)
	if order.Status != domain.StatusOpen {
		t.Errorf("status = %d, want OPEN after recovery", order.Status)
	}
	for _, leg := range store.LegsByOrder(orderID) {
		if leg.Status != domain.PaymentCompleted {
			t.Errorf("leg %s status = %d, want completed", leg.PaymentID, leg.Status)
		}
	}
}

func TestCreateOrderGatewayCreateFailureIsFatal(t *testing.T) {
	store := newFakeStore()
	gw := &fakeGateway{mode: domain.ModeCashfree, createErr: errors.New("upstream 500")}
	svc := newService(store, &fakeWallet{balance: dec("500")}, &fakeSync{}, gw)

	_, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		Origin:      domain.OriginApp,
		CustomerID:  "c1",
		Items:       items("F1"),
		TotalAmount: dec("100.00"),
		Payment:     []ProposedLeg{{Mode: domain.ModeCashfree, Amount: dec("100.00")}},
	})
	var serr *SettlementError
	if !errors.As(err, &serr) || serr.Code != CodeGatewayCreateFailed {
		t.Fatalf("expected GATEWAY_CREATE_FAILED, got %v", err)
	}
	if len(store.orders) != 0 {
		t.Error("no order may persist when the gateway order cannot be created")
	}
}

func TestCreateOrderCODOnlySyncsImmediately(t *testing.T) {
	store := newFakeStore()
	sync := &fakeSync{}
	svc := newService(store, &fakeWallet{}, sync)

	res, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		Origin:      domain.OriginApp,
		CustomerID:  "c1",
		Items:       items("F1"),
		TotalAmount: dec("100.00"),
		Payment:     []ProposedLeg{{Mode: domain.ModeCOD, Amount: dec("100.00")}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Orders[0].Status != domain.StatusOpen {
		t.Errorf("status = %d, want OPEN; cod does not gate release", res.Orders[0].Status)
	}
	if len(sync.synced) != 1 {
		t.Error("cod-only order must sync immediately")
	}
	legs := store.LegsByOrder(res.Orders[0].OrderID)
	if len(legs) != 1 || legs[0].Status != domain.PaymentPending {
		t.Errorf("cod leg must stay pending until delivery, got %+v", legs)
	}
}

func TestCreateOrderMultiFacilitySplit(t *testing.T) {
	store := newFakeStore()
	wallet := &fakeWallet{balance: dec("1000")}
	sync := &fakeSync{}
	svc := newService(store, wallet, sync)

	mixed := []domain.OrderItem{
		{SKU: "A", Name: "A", SalePrice: dec("33.35"), Quantity: 1, FacilityName: "F1"},
		{SKU: "B", Name: "B", SalePrice: dec("33.35"), Quantity: 1, FacilityName: "F2"},
		{SKU: "C", Name: "C", SalePrice: dec("33.30"), Quantity: 1, FacilityName: "F3"},
	}
	res, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		Origin:      domain.OriginPOS,
		CustomerID:  "c1",
		Items:       mixed,
		TotalAmount: dec("100.00"),
		Payment: []ProposedLeg{
			{Mode: domain.ModeCash, Amount: dec("50.00")},
			{Mode: domain.ModeWallet, Amount: dec("50.00")},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Orders) != 3 {
		t.Fatalf("orders = %d, want one per facility", len(res.Orders))
	}

	facilityTotal := decimal.Zero
	for _, o := range res.Orders {
		facilityTotal = facilityTotal.Add(o.TotalAmount)
		legSum := decimal.Zero
		for _, leg := range store.LegsByOrder(o.OrderID) {
			legSum = legSum.Add(leg.Amount)
		}
		if !legSum.Equal(o.TotalAmount) {
			t.Errorf("order %s legs sum to %s, want %s", o.OrderID, legSum, o.TotalAmount)
		}
	}
	if !facilityTotal.Equal(dec("100.00")) {
		t.Errorf("facility totals sum to %s, want 100.00", facilityTotal)
	}

	// Shared payment ids: one per mode across the whole split.
	ids := map[domain.PaymentMode]map[string]bool{}
	for _, l := range store.legs {
		if ids[l.Mode] == nil {
			ids[l.Mode] = map[string]bool{}
		}
		ids[l.Mode][l.PaymentID] = true
	}
	for mode, set := range ids {
		if len(set) != 1 {
			t.Errorf("mode %s has %d payment ids, want one shared id", mode, len(set))
		}
	}
}

func TestCancelOrderStates(t *testing.T) {
	store := newFakeStore()
	wallet := &fakeWallet{balance: dec("100")}
	sync := &fakeSync{}
	svc := newService(store, wallet, sync)

	res, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		Origin:      domain.OriginPOS,
		CustomerID:  "c1",
		Items:       items("F1"),
		TotalAmount: dec("100.00"),
		Payment:     []ProposedLeg{{Mode: domain.ModeWallet, Amount: dec("100.00")}},
	})
	if err != nil {
		t.Fatal(err)
	}
	orderID := res.Orders[0].OrderID

	// Completed wallet leg means money is held: cancel parks pending refund.
	status, err := svc.CancelOrder(orderID, "OTHER", "changed mind")
	if err != nil {
		t.Fatal(err)
	}
	if status != domain.StatusCancelledPendingRefund {
		t.Fatalf("status = %d, want CANCELLED_PENDING_REFUND", status)
	}
	if len(sync.cancelled) != 1 {
		t.Error("downstream cancel should be enqueued")
	}

	// Cancelling again is a no-op.
	again, err := svc.CancelOrder(orderID, "OTHER", "")
	if err != nil || again != domain.StatusCancelledPendingRefund {
		t.Fatalf("repeat cancel = (%d, %v), want idempotent success", again, err)
	}

	// Refunding the only completed leg settles the order to CANCELED.
	legs := store.LegsByOrder(orderID)
	if err := svc.RefundLeg(orderID, legs[0].PaymentID); err != nil {
		t.Fatal(err)
	}
	order, _ := store.GetOrder(orderID)
	if order.Status != domain.StatusCanceled {
		t.Errorf("status = %d, want CANCELED after refund", order.Status)
	}
}

func TestCancelOrderRejectedAfterPicking(t *testing.T) {
	store := newFakeStore()
	svc := newService(store, &fakeWallet{}, &fakeSync{})
	store.orders["O1"] = &domain.Order{OrderID: "O1", Status: domain.StatusWMSPicked}

	_, err := svc.CancelOrder("O1", "OTHER", "")
	var cf ErrConflict
	if !errors.As(err, &cf) {
		t.Fatalf("expected conflict after picking, got %v", err)
	}
}

func TestPaymentStatusSummary(t *testing.T) {
	store := newFakeStore()
	sync := &fakeSync{}
	gw := &fakeGateway{mode: domain.ModeRazorpay}
	svc := newService(store, &fakeWallet{balance: dec("500")}, sync, gw)

	res, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		Origin:      domain.OriginApp,
		CustomerID:  "c1",
		Items:       items("F1"),
		TotalAmount: dec("100.00"),
		Payment: []ProposedLeg{
			{Mode: domain.ModeRazorpay, Amount: dec("70.00")},
			{Mode: domain.ModeWallet, Amount: dec("30.00")},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	orderID := res.Orders[0].OrderID

	sum, err := svc.PaymentStatus(orderID)
	if err != nil {
		t.Fatal(err)
	}
	if sum.PendingCount != 2 || sum.Overall != "Payment Pending" {
		t.Errorf("summary = %+v, want 2 pending", sum)
	}

	if err := svc.VerifyGatewayPayment(context.Background(), "gw_"+res.ParentOrderID, GatewayProof{PaymentID: "pay_1"}); err != nil {
		t.Fatal(err)
	}
	sum, err = svc.PaymentStatus(orderID)
	if err != nil {
		t.Fatal(err)
	}
	if sum.CompletedCount != 2 || sum.Overall != "Payment Completed" {
		t.Errorf("summary after settlement = %+v, want all completed", sum)
	}
}

func TestVerifyGatewayFailureMarksLegsFailed(t *testing.T) {
	store := newFakeStore()
	gw := &fakeGateway{mode: domain.ModeRazorpay, verifyErr: errors.New("signature mismatch")}
	svc := newService(store, &fakeWallet{}, &fakeSync{}, gw)

	res, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		Origin:      domain.OriginApp,
		CustomerID:  "c1",
		Items:       items("F1"),
		TotalAmount: dec("100.00"),
		Payment:     []ProposedLeg{{Mode: domain.ModeRazorpay, Amount: dec("100.00")}},
	})
	if err != nil {
		t.Fatal(err)
	}
	err = svc.VerifyGatewayPayment(context.Background(), "gw_"+res.ParentOrderID, GatewayProof{PaymentID: "pay_1", Signature: "bad"})
	var serr *SettlementError
	if !errors.As(err, &serr) || serr.Code != CodeGatewayVerifyFailed {
		t.Fatalf("expected GATEWAY_VERIFY_FAILED, got %v", err)
	}
	for _, leg := range store.LegsByOrder(res.Orders[0].OrderID) {
		if leg.Status != domain.PaymentFailed {
			t.Errorf("leg status = %d, want failed", leg.Status)
		}
	}
}

func TestAdvanceStatusEnforcesTransitions(t *testing.T) {
	store := newFakeStore()
	svc := newService(store, &fakeWallet{}, &fakeSync{})
	store.orders["O1"] = &domain.Order{OrderID: "O1", Status: domain.StatusOpen}

	if err := svc.AdvanceStatus("O1", domain.StatusWMSSynced); err != nil {
		t.Fatal(err)
	}
	if err := svc.AdvanceStatus("O1", domain.StatusTMSDelivered); err == nil {
		t.Fatal("skipping the WMS flow must be rejected")
	}
	// Same-status callback retries are tolerated.
	if err := svc.AdvanceStatus("O1", domain.StatusWMSSynced); err != nil {
		t.Fatal(err)
	}
}
