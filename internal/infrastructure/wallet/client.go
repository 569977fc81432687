package wallet

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

	"oms-backend/internal/usecase"
)

// Client talks to the customer wallet service. Debits and credits post
// ledger entries; relatedRef keys duplicate suppression on the wallet side.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

func (c *Client) client() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return &http.Client{Timeout: 8 * time.Second}
}

type entryReq struct {
	CustomerID string          `json:"customer_id"`
	EntryType  string          `json:"entry_type"`
	Amount     decimal.Decimal `json:"amount"`
	RelatedID  string          `json:"related_id"`
}

type entryResp struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type balanceResp struct {
	Balance decimal.Decimal `json:"balance"`
}

func (c *Client) addEntry(ctx context.Context, entryType, customerID string, amount decimal.Decimal, relatedRef string) error {
	raw, err := json.Marshal(entryReq{
		CustomerID: customerID,
		EntryType:  entryType,
		Amount:     amount,
		RelatedID:  relatedRef,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(c.BaseURL, "/")+"/wallet/entries", bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.APIKey)
	resp, err := c.client().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	var out entryResp
	_ = json.Unmarshal(body, &out)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !out.Success {
		if out.Code == "INSUFFICIENT_BALANCE" || resp.StatusCode == http.StatusPaymentRequired {
			return usecase.ErrInsufficientBalance
		}
		if out.Message != "" {
			return fmt.Errorf("wallet %s: %s", entryType, out.Message)
		}
		return fmt.Errorf("wallet %s: status %d", entryType, resp.StatusCode)
	}
	return nil
}

func (c *Client) Debit(ctx context.Context, customerID string, amount decimal.Decimal, relatedRef string) error {
	return c.addEntry(ctx, "debit", customerID, amount, relatedRef)
}

func (c *Client) Credit(ctx context.Context, customerID string, amount decimal.Decimal, relatedRef string) error {
	return c.addEntry(ctx, "credit", customerID, amount, relatedRef)
}

func (c *Client) Balance(ctx context.Context, customerID string) (decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(c.BaseURL, "/")+"/wallet/"+customerID+"/balance", nil)
	if err != nil {
		return decimal.Zero, err
	}
	req.Header.Set("x-api-key", c.APIKey)
	resp, err := c.client().Do(req)
	if err != nil {
		return decimal.Zero, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("wallet balance: status %d", resp.StatusCode)
	}
	var out balanceResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return decimal.Zero, err
	}
	return out.Balance, nil
}
