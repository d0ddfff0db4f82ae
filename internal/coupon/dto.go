package coupon

import (
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

type ValidateCouponRequest struct {
	Code     string          `json:"code" validate:"required,max=50"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type ValidateCouponResponse struct {
	Valid          bool            `json:"valid"`
	Coupon         CouponDTO       `json:"coupon"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
}

type ListCouponsResponse struct {
	Coupons []CouponDTO `json:"coupons"`
}

type CouponDTO struct {
	ID                string           `json:"id"`
	Code              string           `json:"code"`
	Name              *string          `json:"name"`
	DiscountType      string           `json:"discountType"`
	DiscountValue     decimal.Decimal  `json:"discountValue"`
	MinPurchaseAmount *decimal.Decimal `json:"minPurchaseAmount"`
	MaxDiscountAmount *decimal.Decimal `json:"maxDiscountAmount"`
	UsageLimit        *int             `json:"usageLimit"`
	UsedCount         int              `json:"usedCount"`
	ValidFrom         *time.Time       `json:"validFrom"`
	ValidUntil        *time.Time       `json:"validUntil"`
	IsActive          bool             `json:"isActive"`
	CreatedAt         time.Time        `json:"createdAt"`
	UpdatedAt         time.Time        `json:"updatedAt"`
}

type CreateCouponRequest struct {
	Code              string           `json:"code" validate:"required,max=50"`
	Name              *string          `json:"name" validate:"omitempty,max=255"`
	DiscountType      string           `json:"discount_type" validate:"required,oneof=percentage fixed"`
	DiscountValue     decimal.Decimal  `json:"discount_value"`
	MinPurchaseAmount *decimal.Decimal `json:"min_purchase_amount"`
	MaxDiscountAmount *decimal.Decimal `json:"max_discount_amount"`
	UsageLimit        *int             `json:"usage_limit" validate:"omitempty,min=1"`
	ValidFrom         *time.Time       `json:"valid_from"`
	ValidUntil        *time.Time       `json:"valid_until"`
	IsActive          *bool            `json:"is_active"`
}

// UpdateCouponRequest changes only the fields that are present.
type UpdateCouponRequest struct {
	Code              *string          `json:"code" validate:"omitempty,min=1,max=50"`
	Name              *string          `json:"name" validate:"omitempty,max=255"`
	DiscountType      *string          `json:"discount_type" validate:"omitempty,oneof=percentage fixed"`
	DiscountValue     *decimal.Decimal `json:"discount_value"`
	MinPurchaseAmount *decimal.Decimal `json:"min_purchase_amount"`
	MaxDiscountAmount *decimal.Decimal `json:"max_discount_amount"`
	UsageLimit        *int             `json:"usage_limit" validate:"omitempty,min=1"`
	ValidFrom         *time.Time       `json:"valid_from"`
	ValidUntil        *time.Time       `json:"valid_until"`
	IsActive          *bool            `json:"is_active"`
}

func toCouponDTO(c domain.Coupon) CouponDTO {
	return CouponDTO{
		ID:                c.ID,
		Code:              c.Code,
		Name:              c.Name,
		DiscountType:      string(c.DiscountType),
		DiscountValue:     c.DiscountValue,
		MinPurchaseAmount: nullable(c.MinPurchaseAmount),
		MaxDiscountAmount: nullable(c.MaxDiscountAmount),
		UsageLimit:        c.UsageLimit,
		UsedCount:         c.UsedCount,
		ValidFrom:         c.ValidFrom,
		ValidUntil:        c.ValidUntil,
		IsActive:          c.IsActive,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}
}

func nullable(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	return &d.Decimal
}

func toNull(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}
