package razorpay

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
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

// Client talks to the Razorpay Orders API. Amounts cross the wire in paise.
type Client struct {
	BaseURL       string
	KeyID         string
	KeySecret     string
	WebhookSecret string
	HTTP          *http.Client
}

func (c *Client) Mode() domain.PaymentMode { return domain.ModeRazorpay }

func (c *Client) base() string {
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/")
	}
	return "https://api.razorpay.com"
}

func (c *Client) client() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return &http.Client{Timeout: 10 * time.Second}
}

type createOrderReq struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type createOrderResp struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func (c *Client) CreateOrder(ctx context.Context, orderRef string, amount decimal.Decimal, customer usecase.Customer) (usecase.GatewayOrder, error) {
	reqBody := createOrderReq{
		Amount:   toPaise(amount),
		Currency: "INR",
		Receipt:  orderRef,
		Notes:    map[string]string{"customer_id": customer.ID, "customer_phone": customer.Phone},
	}
	raw, err := json.Marshal(reqBody)
	if err != nil {
		return usecase.GatewayOrder{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base()+"/v1/orders", bytes.NewReader(raw))
	if err != nil {
		return usecase.GatewayOrder{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.KeyID, c.KeySecret)
	resp, err := c.client().Do(req)
	if err != nil {
		return usecase.GatewayOrder{}, err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return usecase.GatewayOrder{}, fmt.Errorf("razorpay order create: %s", strings.TrimSpace(string(body)))
	}
	var out createOrderResp
	if err := json.Unmarshal(body, &out); err != nil {
		return usecase.GatewayOrder{}, err
	}
	if out.ID == "" {
		return usecase.GatewayOrder{}, fmt.Errorf("razorpay order create: missing order id")
	}
	return usecase.GatewayOrder{ExternalRef: out.ID}, nil
}

// Verify checks the checkout callback signature:
// HMAC-SHA256(order_id + "|" + payment_id, key_secret).
func (c *Client) Verify(ctx context.Context, externalRef string, proof usecase.GatewayProof) error {
	if proof.PaymentID == "" || proof.Signature == "" {
		return fmt.Errorf("razorpay verify: payment id and signature required")
	}
	expected := hmacHex(c.KeySecret, externalRef+"|"+proof.PaymentID)
	if !hmac.Equal([]byte(expected), []byte(proof.Signature)) {
		return fmt.Errorf("razorpay verify: signature mismatch")
	}
	return nil
}

// VerifyWebhook checks the X-Razorpay-Signature header over the raw body.
func (c *Client) VerifyWebhook(body []byte, signature string) error {
	if signature == "" {
		return fmt.Errorf("razorpay webhook: signature header required")
	}
	expected := hmacHex(c.WebhookSecret, string(body))
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return fmt.Errorf("razorpay webhook: signature mismatch")
	}
	return nil
}

func hmacHex(secret, message string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

func toPaise(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
