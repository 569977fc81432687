package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Origin is the sales channel an order was placed through.
type Origin string

const (
	OriginApp Origin = "app"
	OriginPOS Origin = "pos"
)

func ParseOrigin(s string) (Origin, bool) {
	switch Origin(s) {
	case OriginApp, OriginPOS:
		return Origin(s), true
	}
	return "", false
}

type OrderItem struct {
	SKU          string          `json:"sku"`
	Name         string          `json:"name,omitempty"`
	SalePrice    decimal.Decimal `json:"salePrice"`
	Quantity     int             `json:"quantity"`
	FacilityName string          `json:"facilityName"`
}

func (it OrderItem) LineTotal() decimal.Decimal {
	return it.SalePrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// Order is a facility-scoped order. A multi-facility request produces several
// orders sharing one ParentOrderID; their totals sum to the parent total.
type Order struct {
	ID            string          `json:"-"`
	OrderID       string          `json:"orderId"`
	ParentOrderID string          `json:"parentOrderId"`
	CustomerID    string          `json:"customerId"`
	CustomerName  string          `json:"customerName,omitempty"`
	CustomerPhone string          `json:"customerPhone,omitempty"`
	Origin        Origin          `json:"origin"`
	FacilityName  string          `json:"facilityName"`
	Items         []OrderItem     `json:"items"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	Status        OrderStatus     `json:"status"`
	PromotionCode string          `json:"promotionCode,omitempty"`
	CancelReason  string          `json:"cancelReason,omitempty"`
	CancelRemarks string          `json:"cancelRemarks,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}
