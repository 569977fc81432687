package razorpay

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"oms-backend/internal/usecase"
)

func sign(secret, message string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestCreateOrderSendsPaise(t *testing.T) {
	var got createOrderReq
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/orders" {
			t.Errorf("path = %s", r.URL.Path)
		}
		user, pass, _ := r.BasicAuth()
		if user != "key" || pass != "secret" {
			t.Error("basic auth credentials not forwarded")
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "order_abc", "status": "created"})
	}))
	defer ts.Close()

	c := &Client{BaseURL: ts.URL, KeyID: "key", KeySecret: "secret"}
	out, err := c.CreateOrder(context.Background(), "ORD1", decimal.RequireFromString("123.45"), usecase.Customer{ID: "c1"})
	if err != nil {
		t.Fatal(err)
	}
	if out.ExternalRef != "order_abc" {
		t.Errorf("external ref = %s", out.ExternalRef)
	}
	if got.Amount != 12345 {
		t.Errorf("amount = %d paise, want 12345", got.Amount)
	}
	if got.Currency != "INR" || got.Receipt != "ORD1" {
		t.Errorf("request = %+v", got)
	}
}

func TestVerifySignature(t *testing.T) {
	c := &Client{KeySecret: "secret"}
	proof := usecase.GatewayProof{
		PaymentID: "pay_1",
		Signature: sign("secret", "order_abc|pay_1"),
	}
	if err := c.Verify(context.Background(), "order_abc", proof); err != nil {
		t.Fatalf("valid signature rejected: %v", err)
	}

	proof.Signature = sign("wrong", "order_abc|pay_1")
	if err := c.Verify(context.Background(), "order_abc", proof); err == nil {
		t.Fatal("forged signature accepted")
	}

	if err := c.Verify(context.Background(), "order_abc", usecase.GatewayProof{PaymentID: "pay_1"}); err == nil {
		t.Fatal("missing signature accepted")
	}
}

func TestVerifyWebhook(t *testing.T) {
	c := &Client{WebhookSecret: "whsec"}
	body := []byte(`{"event":"payment.captured"}`)
	if err := c.VerifyWebhook(body, sign("whsec", string(body))); err != nil {
		t.Fatalf("valid webhook rejected: %v", err)
	}
	if err := c.VerifyWebhook(body, sign("other", string(body))); err == nil {
		t.Fatal("forged webhook accepted")
	}
}
