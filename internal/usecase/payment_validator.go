package usecase

import (
	"github.com/shopspring/decimal"

	"oms-backend/internal/domain"
)

// ProposedLeg is one (mode, amount) pair of a requested payment split.
type ProposedLeg struct {
	Mode   domain.PaymentMode
	Amount decimal.Decimal
}

// ValidatedLeg is a proposed leg accepted by the policy, tagged with the
// derived creation behavior. CreatePaymentOrder is never user-settable.
type ValidatedLeg struct {
	Mode               domain.PaymentMode
	Amount             decimal.Decimal
	CreatePaymentOrder bool
	InitialStatus      domain.PaymentStatus
}

// ValidateSplit checks a proposed payment split against the mode policy and
// the order total. Checks run in a fixed order and fail fast; no side
// effects. The amount check uses exact decimal equality, not a tolerance.
func ValidateSplit(origin domain.Origin, legs []ProposedLeg, total decimal.Decimal) ([]ValidatedLeg, error) {
	if len(legs) == 0 {
		return nil, validationErrf(CodeInvalidSplitCombination, "at least one payment leg is required")
	}

	for _, leg := range legs {
		if !modeAllowed(origin, leg.Mode) {
			return nil, validationErrf(CodeModeNotAllowed, "payment mode %q is not allowed for origin %q", leg.Mode, origin)
		}
	}

	seen := map[domain.PaymentMode]bool{}
	for _, leg := range legs {
		if seen[leg.Mode] {
			return nil, validationErrf(CodeDuplicateMode, "duplicate payment mode %q; each mode can appear once", leg.Mode)
		}
		seen[leg.Mode] = true
	}

	if max := MaxSplit(origin); max > 0 && len(legs) > max {
		return nil, validationErrf(CodeInvalidSplitCombination, "origin %q allows at most %d payment legs", origin, max)
	}
	if origin == domain.OriginApp && len(legs) == 2 {
		// The only legal app pair is one gateway leg plus the wallet.
		if !(seen[domain.ModeWallet] && (seen[domain.ModeRazorpay] || seen[domain.ModeCashfree])) {
			return nil, validationErrf(CodeInvalidSplitCombination, "app origin allows only a gateway + wallet split")
		}
	}
	if seen[domain.ModeRazorpay] && seen[domain.ModeCashfree] {
		return nil, validationErrf(CodeInvalidSplitCombination, "two gateway modes cannot be combined in one order")
	}

	for _, leg := range legs {
		if !leg.Amount.IsPositive() {
			return nil, validationErrf(CodeNonPositiveAmount, "payment amount for mode %q must be positive", leg.Mode)
		}
	}

	sum := decimal.Zero
	for _, leg := range legs {
		sum = sum.Add(leg.Amount)
	}
	if !sum.Equal(total) {
		return nil, validationErrf(CodeAmountMismatch, "payment amounts sum (%s) does not match order total (%s)", sum, total)
	}

	out := make([]ValidatedLeg, 0, len(legs))
	for _, leg := range legs {
		out = append(out, ValidatedLeg{
			Mode:               leg.Mode,
			Amount:             leg.Amount,
			CreatePaymentOrder: RequiresPaymentOrder(leg.Mode),
			InitialStatus:      InitialStatus(leg.Mode),
		})
	}
	return out, nil
}
