package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	apperrors "storefront/internal/errors"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

var hundred = decimal.NewFromInt(100)

type Coupon struct {
	ID                string              `db:"id"`
	Code              string              `db:"code"`
	Name              *string             `db:"name"`
	DiscountType      DiscountType        `db:"discount_type"`
	DiscountValue     decimal.Decimal     `db:"discount_value"`
	MinPurchaseAmount decimal.NullDecimal `db:"min_purchase_amount"`
	MaxDiscountAmount decimal.NullDecimal `db:"max_discount_amount"`
	UsageLimit        *int                `db:"usage_limit"`
	UsedCount         int                 `db:"used_count"`
	ValidFrom         *time.Time          `db:"valid_from"`
	ValidUntil        *time.Time          `db:"valid_until"`
	IsActive          bool                `db:"is_active"`
	CreatedAt         time.Time           `db:"created_at"`
	UpdatedAt         time.Time           `db:"updated_at"`
}

func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Discount computes the discount the coupon grants on subtotal, rounded to
// cents.
func (c Coupon) Discount(subtotal decimal.Decimal) decimal.Decimal {
	var discount decimal.Decimal
	switch c.DiscountType {
	case DiscountPercentage:
		discount = subtotal.Mul(c.DiscountValue).Div(hundred)
		if c.MaxDiscountAmount.Valid && discount.GreaterThan(c.MaxDiscountAmount.Decimal) {
			discount = c.MaxDiscountAmount.Decimal
		}
	default:
		discount = c.DiscountValue
	}
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}
	return discount.Round(2)
}

// CheckApplicable validates everything about the coupon that does not need
// the caller's usage history.
func (c Coupon) CheckApplicable(now time.Time, subtotal decimal.Decimal) error {
	if !c.IsActive {
		return apperrors.NewValidationError("coupon is not active",
			apperrors.ValidationDetail{Field: "code", Message: "coupon is not active"})
	}
	if c.ValidFrom != nil && now.Before(*c.ValidFrom) {
		return apperrors.NewValidationError("coupon is not yet valid",
			apperrors.ValidationDetail{Field: "code", Message: "coupon is not yet valid"})
	}
	if c.ValidUntil != nil && now.After(*c.ValidUntil) {
		return apperrors.NewValidationError("coupon has expired",
			apperrors.ValidationDetail{Field: "code", Message: "coupon has expired"})
	}
	if c.UsageLimit != nil && c.UsedCount >= *c.UsageLimit {
		return apperrors.NewValidationError("coupon usage limit reached",
			apperrors.ValidationDetail{Field: "code", Message: "coupon usage limit reached"})
	}
	if c.MinPurchaseAmount.Valid && subtotal.LessThan(c.MinPurchaseAmount.Decimal) {
		msg := "minimum purchase amount is " + c.MinPurchaseAmount.Decimal.StringFixed(2)
		return apperrors.NewValidationError(msg,
			apperrors.ValidationDetail{Field: "subtotal", Message: msg})
	}
	return nil
}

type CouponUsage struct {
	ID             string          `db:"id"`
	CouponID       string          `db:"coupon_id"`
	UserID         string          `db:"user_id"`
	OrderID        string          `db:"order_id"`
	DiscountAmount decimal.Decimal `db:"discount_amount"`
	CreatedAt      time.Time       `db:"created_at"`
}
