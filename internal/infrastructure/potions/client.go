package potions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"oms-backend/internal/domain"
)

// OrderSource is what the syncer needs to assemble a sync payload.
type OrderSource interface {
	GetOrder(orderID string) (*domain.Order, bool)
	LegsByOrder(orderID string) []*domain.PaymentLeg
}

// StatusSink records the sync outcome back on the order.
type StatusSink interface {
	AdvanceStatus(orderID string, to domain.OrderStatus) error
}

// Syncer pushes released orders to the Potions warehouse service. Enqueue
// and EnqueueCancel return immediately; delivery happens on a goroutine and
// the outcome lands on the order as WMS_SYNCED or WMS_SYNC_FAILED.
type Syncer struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
	Source  OrderSource
	Status  StatusSink
	Log     *slog.Logger
}

func (s *Syncer) client() *http.Client {
	if s.HTTP != nil {
		return s.HTTP
	}
	return &http.Client{Timeout: 15 * time.Second}
}

func (s *Syncer) logger() *slog.Logger {
	if s.Log != nil {
		return s.Log
	}
	return slog.Default()
}

type syncItem struct {
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	SalePrice decimal.Decimal `json:"sale_price"`
	Quantity  int             `json:"quantity"`
}

type syncPayment struct {
	PaymentID string          `json:"payment_id"`
	Mode      string          `json:"payment_mode"`
	Amount    decimal.Decimal `json:"amount"`
	Status    string          `json:"status"`
}

type syncOrderReq struct {
	OrderID       string          `json:"order_id"`
	ParentOrderID string          `json:"parent_order_id,omitempty"`
	CustomerID    string          `json:"customer_id"`
	CustomerName  string          `json:"customer_name,omitempty"`
	CustomerPhone string          `json:"customer_phone,omitempty"`
	FacilityName  string          `json:"facility_name"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Items         []syncItem      `json:"items"`
	Payments      []syncPayment   `json:"payments"`
}

func (s *Syncer) Enqueue(orderID string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		if err := s.syncOrder(ctx, orderID); err != nil {
			s.logger().Error("warehouse sync failed", "order_id", orderID, "err", err)
			_ = s.Status.AdvanceStatus(orderID, domain.StatusWMSSyncFailed)
			return
		}
		_ = s.Status.AdvanceStatus(orderID, domain.StatusWMSSynced)
		s.logger().Info("warehouse sync ok", "order_id", orderID)
	}()
}

func (s *Syncer) EnqueueCancel(orderID string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		if err := s.post(ctx, "/api/orders/"+orderID+"/cancel", nil); err != nil {
			s.logger().Error("warehouse cancel failed", "order_id", orderID, "err", err)
		}
	}()
}

func (s *Syncer) syncOrder(ctx context.Context, orderID string) error {
	order, ok := s.Source.GetOrder(orderID)
	if !ok {
		return fmt.Errorf("order %s not found", orderID)
	}
	req := syncOrderReq{
		OrderID:       order.OrderID,
		ParentOrderID: order.ParentOrderID,
		CustomerID:    order.CustomerID,
		CustomerName:  order.CustomerName,
		CustomerPhone: order.CustomerPhone,
		FacilityName:  order.FacilityName,
		TotalAmount:   order.TotalAmount,
	}
	for _, it := range order.Items {
		req.Items = append(req.Items, syncItem{SKU: it.SKU, Name: it.Name, SalePrice: it.SalePrice, Quantity: it.Quantity})
	}
	for _, leg := range s.Source.LegsByOrder(orderID) {
		req.Payments = append(req.Payments, syncPayment{
			PaymentID: leg.PaymentID,
			Mode:      string(leg.Mode),
			Amount:    leg.Amount,
			Status:    leg.Status.String(),
		})
	}
	return s.post(ctx, "/api/orders", req)
}

func (s *Syncer) post(ctx context.Context, path string, payload any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(s.BaseURL, "/")+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", s.APIKey)
	resp, err := s.client().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("potions %s: %s", path, strings.TrimSpace(string(raw)))
	}
	return nil
}
