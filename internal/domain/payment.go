package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMode is the closed set of payment instruments an order leg can use.
type PaymentMode string

const (
	ModeCash     PaymentMode = "cash"
	ModeCOD      PaymentMode = "cod"
	ModeWallet   PaymentMode = "wallet"
	ModeRazorpay PaymentMode = "razorpay"
	ModeCashfree PaymentMode = "cashfree"
)

func ParsePaymentMode(s string) (PaymentMode, bool) {
	switch PaymentMode(s) {
	case ModeCash, ModeCOD, ModeWallet, ModeRazorpay, ModeCashfree:
		return PaymentMode(s), true
	}
	return "", false
}

// IsGateway reports whether the mode settles through an external payment
// processor with an asynchronous create+verify cycle.
func (m PaymentMode) IsGateway() bool {
	return m == ModeRazorpay || m == ModeCashfree
}

// PaymentStatus codes share the numbering scheme of the payment_details table.
type PaymentStatus int

const (
	PaymentPending   PaymentStatus = 50
	PaymentCompleted PaymentStatus = 51
	PaymentFailed    PaymentStatus = 52
	PaymentRefunded  PaymentStatus = 53
)

func (s PaymentStatus) String() string {
	switch s {
	case PaymentPending:
		return "pending"
	case PaymentCompleted:
		return "completed"
	case PaymentFailed:
		return "failed"
	case PaymentRefunded:
		return "refunded"
	}
	return "pending"
}

func (s PaymentStatus) Description() string {
	switch s {
	case PaymentPending:
		return "Payment Pending"
	case PaymentCompleted:
		return "Payment Completed"
	case PaymentFailed:
		return "Payment Failed"
	case PaymentRefunded:
		return "Payment Refunded"
	}
	return "Payment Pending"
}

// IsFinal reports whether the status is terminal for settlement purposes.
func (s PaymentStatus) IsFinal() bool {
	return s == PaymentCompleted || s == PaymentFailed || s == PaymentRefunded
}

// PaymentLeg is one payment-mode component of a possibly split order payment.
type PaymentLeg struct {
	ID                 string          `json:"-"`
	OrderID            string          `json:"orderId"`
	PaymentID          string          `json:"paymentId"`
	Mode               PaymentMode     `json:"paymentMode"`
	Amount             decimal.Decimal `json:"amount"`
	CreatePaymentOrder bool            `json:"createPaymentOrder"`
	Status             PaymentStatus   `json:"-"`
	ExternalRef        string          `json:"paymentOrderId,omitempty"`
	PaymentSessionID   string          `json:"paymentSessionId,omitempty"`
	PaymentURL         string          `json:"paymentUrl,omitempty"`
	GatewayPaymentID   string          `json:"-"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}
