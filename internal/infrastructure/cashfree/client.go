package cashfree

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"oms-backend/internal/domain"
	"oms-backend/internal/usecase"
)

// Client talks to the Cashfree PG orders API. Amounts are rupee decimals on
// the wire.
type Client struct {
	BaseURL    string
	AppID      string
	SecretKey  string
	APIVersion string
	HTTP       *http.Client
}

func (c *Client) Mode() domain.PaymentMode { return domain.ModeCashfree }

func (c *Client) base() string {
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/")
	}
	return "https://sandbox.cashfree.com/pg"
}

func (c *Client) version() string {
	if c.APIVersion != "" {
		return c.APIVersion
	}
	return "2023-08-01"
}

func (c *Client) client() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return &http.Client{Timeout: 10 * time.Second}
}

func (c *Client) setAuth(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-version", c.version())
	req.Header.Set("x-client-id", c.AppID)
	req.Header.Set("x-client-secret", c.SecretKey)
}

type customerDetails struct {
	CustomerID    string `json:"customer_id"`
	CustomerName  string `json:"customer_name,omitempty"`
	CustomerPhone string `json:"customer_phone"`
}

type createOrderReq struct {
	OrderID       string          `json:"order_id"`
	OrderAmount   decimal.Decimal `json:"order_amount"`
	OrderCurrency string          `json:"order_currency"`
	Customer      customerDetails `json:"customer_details"`
}

type orderResp struct {
	CFOrderID        json.Number `json:"cf_order_id"`
	OrderID          string      `json:"order_id"`
	OrderStatus      string      `json:"order_status"`
	PaymentSessionID string      `json:"payment_session_id"`
	PaymentLink      string      `json:"payment_link"`
}

func (c *Client) CreateOrder(ctx context.Context, orderRef string, amount decimal.Decimal, customer usecase.Customer) (usecase.GatewayOrder, error) {
	reqBody := createOrderReq{
		OrderID:       orderRef,
		OrderAmount:   amount,
		OrderCurrency: "INR",
		Customer: customerDetails{
			CustomerID:    customer.ID,
			CustomerName:  customer.Name,
			CustomerPhone: customer.Phone,
		},
	}
	raw, err := json.Marshal(reqBody)
	if err != nil {
		return usecase.GatewayOrder{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base()+"/orders", bytes.NewReader(raw))
	if err != nil {
		return usecase.GatewayOrder{}, err
	}
	c.setAuth(req)
	resp, err := c.client().Do(req)
	if err != nil {
		return usecase.GatewayOrder{}, err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return usecase.GatewayOrder{}, fmt.Errorf("cashfree order create: %s", strings.TrimSpace(string(body)))
	}
	var out orderResp
	if err := json.Unmarshal(body, &out); err != nil {
		return usecase.GatewayOrder{}, err
	}
	if out.OrderID == "" {
		return usecase.GatewayOrder{}, fmt.Errorf("cashfree order create: missing order id")
	}
	return usecase.GatewayOrder{
		ExternalRef:      out.OrderID,
		PaymentSessionID: out.PaymentSessionID,
		PaymentURL:       out.PaymentLink,
	}, nil
}

// Verify fetches the order from Cashfree and requires a PAID status; there
// is no client-side signature to check, the source of truth is the API.
func (c *Client) Verify(ctx context.Context, externalRef string, proof usecase.GatewayProof) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base()+"/orders/"+externalRef, nil)
	if err != nil {
		return err
	}
	c.setAuth(req)
	resp, err := c.client().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("cashfree order fetch: %s", strings.TrimSpace(string(body)))
	}
	var out orderResp
	if err := json.Unmarshal(body, &out); err != nil {
		return err
	}
	if !strings.EqualFold(out.OrderStatus, "PAID") {
		return fmt.Errorf("cashfree verify: order status %s", out.OrderStatus)
	}
	return nil
}
