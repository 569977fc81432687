package domain

import "github.com/shopspring/decimal"

type PromotionOfferType string

const (
	OfferFlatDiscount PromotionOfferType = "flat_discount"
	OfferCoupon       PromotionOfferType = "coupon"
)

type PromotionSubType string

const (
	SubTypeFlat       PromotionSubType = "flat"
	SubTypePercentage PromotionSubType = "percentage"
)

// Promotion is read-only reference data looked up by code.
type Promotion struct {
	Code                 string             `json:"code"`
	OfferType            PromotionOfferType `json:"offerType"`
	OfferSubType         PromotionSubType   `json:"offerSubType"`
	DiscountAmount       decimal.Decimal    `json:"discountAmount"`
	DiscountPercentage   decimal.Decimal    `json:"discountPercentage"`
	MaxDiscount          decimal.Decimal    `json:"maxDiscount"`
	MinPurchase          decimal.Decimal    `json:"minPurchase"`
	ApplicableSKUs       []string           `json:"applicableSkus"`
	ExcludedSKUs         []string           `json:"excludedSkus"`
	ApplicableCategories []string           `json:"applicableCategories"`
	ExcludedCategories   []string           `json:"excludedCategories"`
	Active               bool               `json:"active"`
}

// CartItem is request-scoped input to the discount engine; it is never
// persisted. Category levels mirror what the storefront sends.
type CartItem struct {
	SKU            string          `json:"sku"`
	SalePrice      decimal.Decimal `json:"salePrice"`
	Quantity       int             `json:"quantity"`
	Category       string          `json:"category"`
	SubCategory    string          `json:"subCategory"`
	SubSubCategory string          `json:"subSubCategory"`
}

func (it CartItem) LineTotal() decimal.Decimal {
	return it.SalePrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
}
