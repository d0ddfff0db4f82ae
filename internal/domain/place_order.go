package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	apperrors "storefront/internal/errors"
)

const (
	MaxOrderItems   = 100
	MaxItemQuantity = 10000
)

var subtotalTolerance = decimal.NewFromFloat(0.01)

type PlaceOrderItem struct {
	ProductID    string
	Quantity     int
	UnitPrice    decimal.Decimal
	ProductName  string
	ProductSKU   *string
	ProductImage *string
}

func (i PlaceOrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// PlaceOrder is the checkout command. UserID is nil for guest checkout.
type PlaceOrder struct {
	UserID          *string
	Items           []PlaceOrderItem
	ShippingAddress *Address
	BillingAddress  *Address
	PaymentMethod   PaymentMethod
	Subtotal        decimal.Decimal
	TaxAmount       decimal.Decimal
	ShippingAmount  decimal.Decimal
	DiscountAmount  decimal.Decimal
	CouponID        *string
	Notes           *string
}

func (c PlaceOrder) Guest() bool {
	return c.UserID == nil
}

func (c PlaceOrder) Total() decimal.Decimal {
	return OrderTotal(c.Subtotal, c.TaxAmount, c.DiscountAmount, c.ShippingAmount)
}

// RecordsCouponUsage reports whether the order consumes a coupon use.
func (c PlaceOrder) RecordsCouponUsage() bool {
	return c.CouponID != nil && c.DiscountAmount.IsPositive() && !c.Guest()
}

// Validate checks the cross-field rules of a checkout. It returns a
// ValidationError listing every problem found.
func (c PlaceOrder) Validate() error {
	var details []apperrors.ValidationDetail
	add := func(field, msg string) {
		details = append(details, apperrors.ValidationDetail{Field: field, Message: msg})
	}

	if len(c.Items) == 0 {
		add("items", "items must not be empty")
	}
	if len(c.Items) > MaxOrderItems {
		add("items", fmt.Sprintf("items exceeds maximum of %d", MaxOrderItems))
	}

	seen := make(map[string]bool, len(c.Items))
	sum := decimal.Zero
	for idx, item := range c.Items {
		prefix := fmt.Sprintf("items[%d]", idx)
		if strings.TrimSpace(item.ProductID) == "" {
			add(prefix+".product_id", "product_id is required")
		} else if seen[item.ProductID] {
			add(prefix+".product_id", "product_id must not be duplicated")
		}
		seen[item.ProductID] = true

		if item.Quantity < 1 || item.Quantity > MaxItemQuantity {
			add(prefix+".quantity", fmt.Sprintf("quantity must be between 1 and %d", MaxItemQuantity))
		}
		if item.UnitPrice.IsNegative() {
			add(prefix+".price", "price must be non-negative")
		} else if subCent(item.UnitPrice) {
			add(prefix+".price", "price must have at most 2 decimal places")
		}
		sum = sum.Add(item.LineTotal())
	}

	if c.ShippingAddress == nil {
		add("shipping_address", "shipping_address is required")
	} else if c.Guest() {
		if strings.TrimSpace(c.ShippingAddress.Name) == "" ||
			strings.TrimSpace(c.ShippingAddress.Email) == "" ||
			strings.TrimSpace(c.ShippingAddress.Phone) == "" {
			add("shipping_address", "guest checkout requires name, email and phone in shipping address")
		}
	}

	switch c.PaymentMethod {
	case PaymentCOD, PaymentCard, PaymentUPI, PaymentNetBanking, PaymentWallet:
	default:
		add("payment_method", "payment_method must be one of cod, card, upi, netbanking, wallet")
	}

	amounts := []struct {
		field string
		value decimal.Decimal
	}{
		{"subtotal", c.Subtotal},
		{"tax_amount", c.TaxAmount},
		{"shipping_amount", c.ShippingAmount},
		{"discount_amount", c.DiscountAmount},
	}
	for _, a := range amounts {
		if a.value.IsNegative() {
			add(a.field, a.field+" must be non-negative")
		} else if subCent(a.value) {
			add(a.field, a.field+" must have at most 2 decimal places")
		}
	}

	if len(c.Items) > 0 && c.Subtotal.Sub(sum).Abs().GreaterThan(subtotalTolerance) {
		add("subtotal", fmt.Sprintf("subtotal %s does not match item total %s", c.Subtotal.StringFixed(2), sum.StringFixed(2)))
	}

	if c.Total().IsNegative() {
		add("discount_amount", "discount_amount exceeds order amount")
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}
	return nil
}

// subCent reports whether d carries a fraction of a cent. Amounts are stored
// with two decimals, so such values would be rounded column by column.
func subCent(d decimal.Decimal) bool {
	return !d.Equal(d.Round(2))
}
