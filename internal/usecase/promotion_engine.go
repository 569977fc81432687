package usecase

import (
	"strings"

	"github.com/shopspring/decimal"

	"oms-backend/internal/domain"
)

type PromotionRepo interface {
	ByCode(code string) (*domain.Promotion, bool)
}

// ItemDiscount is the per-item outcome of a promotion calculation.
// DiscountAmount carries the exact item share; PerUnitPrice is the derived
// display price and may round.
type ItemDiscount struct {
	SKU             string          `json:"sku"`
	OfferApplied    bool            `json:"offerApplied"`
	DiscountAmount  decimal.Decimal `json:"discountAmount"`
	LineTotal       decimal.Decimal `json:"lineTotal"`
	CalculatedTotal decimal.Decimal `json:"calculatedTotal"`
	PerUnitPrice    decimal.Decimal `json:"calculatedSalePrice"`
}

// DiscountResult summarises a promotion applied to a cart. A cart that does
// not qualify still gets a normal result with Applied=false and a Reason.
type DiscountResult struct {
	Code             string          `json:"code"`
	Applied          bool            `json:"applied"`
	Reason           string          `json:"reason,omitempty"`
	CartValue        decimal.Decimal `json:"cartValue"`
	EligibleSubtotal decimal.Decimal `json:"eligibleSubtotal"`
	TotalDiscount    decimal.Decimal `json:"totalDiscount"`
	FinalCartValue   decimal.Decimal `json:"finalCartValue"`
	Items            []ItemDiscount  `json:"items"`
}

type PromotionEngine struct {
	Promotions PromotionRepo
}

// Calculate applies the named promotion to the cart. Eligibility filtering,
// the minimum-purchase threshold and the discount computation all operate on
// the eligible subset only; ineligible items pass through untouched.
func (e *PromotionEngine) Calculate(code string, items []domain.CartItem) (*DiscountResult, error) {
	if len(items) == 0 {
		return nil, ErrBadRequest("items required")
	}
	promo, ok := e.Promotions.ByCode(code)
	if !ok {
		return nil, ErrNotFound("promotion")
	}

	res := &DiscountResult{Code: promo.Code}
	eligible := make([]bool, len(items))
	for i, it := range items {
		res.CartValue = res.CartValue.Add(it.LineTotal())
		eligible[i] = itemEligible(promo, it)
		if eligible[i] {
			res.EligibleSubtotal = res.EligibleSubtotal.Add(it.LineTotal())
		}
	}

	passthrough := func(reason string) *DiscountResult {
		res.Reason = reason
		res.FinalCartValue = res.CartValue
		for _, it := range items {
			res.Items = append(res.Items, ItemDiscount{
				SKU:             it.SKU,
				DiscountAmount:  decimal.Zero,
				LineTotal:       it.LineTotal(),
				CalculatedTotal: it.LineTotal(),
				PerUnitPrice:    it.SalePrice,
			})
		}
		return res
	}

	if !promo.Active {
		return passthrough("promotion inactive"), nil
	}
	if res.EligibleSubtotal.IsZero() {
		return passthrough("no eligible items"), nil
	}
	if promo.MinPurchase.IsPositive() && res.EligibleSubtotal.LessThan(promo.MinPurchase) {
		return passthrough("minimum purchase not met"), nil
	}

	discount := e.discountFor(promo, res.EligibleSubtotal)
	if !discount.IsPositive() {
		return passthrough("no discount applicable"), nil
	}

	res.Applied = true
	res.TotalDiscount = discount
	res.Items = distribute(items, eligible, res.EligibleSubtotal, discount)
	res.FinalCartValue = res.CartValue.Sub(discount)
	return res, nil
}

func (e *PromotionEngine) discountFor(p *domain.Promotion, eligibleSubtotal decimal.Decimal) decimal.Decimal {
	var d decimal.Decimal
	switch p.OfferSubType {
	case domain.SubTypePercentage:
		d = eligibleSubtotal.Mul(p.DiscountPercentage).Div(decimal.NewFromInt(100)).Round(2)
		if p.MaxDiscount.IsPositive() && d.GreaterThan(p.MaxDiscount) {
			d = p.MaxDiscount
		}
	default:
		d = p.DiscountAmount
	}
	// A discount never exceeds what the eligible items are worth.
	if d.GreaterThan(eligibleSubtotal) {
		d = eligibleSubtotal
	}
	return d
}

// itemEligible decides whether a promotion covers a cart item. SKU filters
// take priority: when either SKU list is set, category filters are ignored
// entirely. Exclusion always wins over inclusion, and category matching is
// case-insensitive across category, sub-category and sub-sub-category.
func itemEligible(p *domain.Promotion, it domain.CartItem) bool {
	if len(p.ApplicableSKUs) > 0 || len(p.ExcludedSKUs) > 0 {
		if containsFold(p.ExcludedSKUs, it.SKU) {
			return false
		}
		if len(p.ApplicableSKUs) > 0 {
			return containsFold(p.ApplicableSKUs, it.SKU)
		}
		return true
	}

	cats := []string{it.Category, it.SubCategory, it.SubSubCategory}
	for _, c := range cats {
		if c != "" && containsFold(p.ExcludedCategories, c) {
			return false
		}
	}
	if len(p.ApplicableCategories) == 0 {
		return true
	}
	for _, c := range cats {
		if c != "" && containsFold(p.ApplicableCategories, c) {
			return true
		}
	}
	return false
}

func containsFold(list []string, v string) bool {
	for _, s := range list {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}

// distribute spreads the discount across eligible items proportionally to
// line total, rounding half-to-even to 2dp, with any residual assigned to
// the eligible item with the largest line total so the per-item amounts sum
// exactly to the total discount.
func distribute(items []domain.CartItem, eligible []bool, eligibleSubtotal, discount decimal.Decimal) []ItemDiscount {
	out := make([]ItemDiscount, len(items))
	assigned := decimal.Zero
	largest := -1
	for i, it := range items {
		line := it.LineTotal()
		out[i] = ItemDiscount{SKU: it.SKU, LineTotal: line, CalculatedTotal: line, PerUnitPrice: it.SalePrice, DiscountAmount: decimal.Zero}
		if !eligible[i] {
			continue
		}
		if largest == -1 || line.GreaterThan(items[largest].LineTotal()) {
			largest = i
		}
		share := discount.Mul(line).Div(eligibleSubtotal).RoundBank(2)
		out[i].DiscountAmount = share
		assigned = assigned.Add(share)
	}

	if residual := discount.Sub(assigned); !residual.IsZero() && largest >= 0 {
		out[largest].DiscountAmount = out[largest].DiscountAmount.Add(residual)
	}

	for i, it := range items {
		if !eligible[i] || out[i].DiscountAmount.IsZero() {
			continue
		}
		out[i].OfferApplied = true
		out[i].CalculatedTotal = out[i].LineTotal.Sub(out[i].DiscountAmount)
		qty := decimal.NewFromInt(int64(it.Quantity))
		out[i].PerUnitPrice = out[i].CalculatedTotal.Div(qty).Round(2)
	}
	return out
}
