package usecase

import "oms-backend/internal/domain"

// Payment mode policy: the static rule table governing which modes are legal
// per sales channel, split limits, and per-mode creation behavior. All
// functions are total over the known mode enumeration.

// AllowedModes returns the payment modes legal for an origin. App orders pay
// by cod, gateway, or wallet; POS replaces cod with counter cash.
func AllowedModes(origin domain.Origin) []domain.PaymentMode {
	switch origin {
	case domain.OriginApp:
		return []domain.PaymentMode{domain.ModeCOD, domain.ModeRazorpay, domain.ModeCashfree, domain.ModeWallet}
	case domain.OriginPOS:
		return []domain.PaymentMode{domain.ModeCash, domain.ModeRazorpay, domain.ModeCashfree, domain.ModeWallet}
	}
	return nil
}

func modeAllowed(origin domain.Origin, mode domain.PaymentMode) bool {
	for _, m := range AllowedModes(origin) {
		if m == mode {
			return true
		}
	}
	return false
}

// MaxSplit returns the maximum leg count for an origin; 0 means unlimited.
// App splits are capped at 2 and the pair must be gateway+wallet; POS has no
// documented cap.
func MaxSplit(origin domain.Origin) int {
	if origin == domain.OriginApp {
		return 2
	}
	return 0
}

// RequiresPaymentOrder reports whether the mode needs an upstream payment
// order created before it can settle.
func RequiresPaymentOrder(mode domain.PaymentMode) bool {
	switch mode {
	case domain.ModeRazorpay, domain.ModeCashfree, domain.ModeWallet:
		return true
	case domain.ModeCash, domain.ModeCOD:
		return false
	}
	return false
}

// InitialStatus returns the status a leg carries at creation time. Cash is
// collected at the counter before the order is keyed in; everything else
// settles later.
func InitialStatus(mode domain.PaymentMode) domain.PaymentStatus {
	if mode == domain.ModeCash {
		return domain.PaymentCompleted
	}
	return domain.PaymentPending
}
