package domain

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "storefront/internal/errors"
)

func validPlaceOrder() PlaceOrder {
	userID := "user-1"
	return PlaceOrder{
		UserID: &userID,
		Items: []PlaceOrderItem{
			{ProductID: "p1", Quantity: 2, UnitPrice: decimal.RequireFromString("10.00")},
			{ProductID: "p2", Quantity: 1, UnitPrice: decimal.RequireFromString("5.25")},
		},
		ShippingAddress: &Address{Line1: "1 Main St", City: "Pune"},
		PaymentMethod:   PaymentCOD,
		Subtotal:        decimal.RequireFromString("25.25"),
		TaxAmount:       decimal.RequireFromString("2.00"),
		ShippingAmount:  decimal.RequireFromString("3.00"),
	}
}

func detailFields(t *testing.T, err error) []string {
	t.Helper()
	ve, ok := apperrors.IsValidationError(err)
	require.True(t, ok, "expected ValidationError, got %v", err)
	fields := make([]string, 0, len(ve.Details))
	for _, d := range ve.Details {
		fields = append(fields, d.Field)
	}
	return fields
}

func TestPlaceOrder_Validate_OK(t *testing.T) {
	cmd := validPlaceOrder()

	assert.NoError(t, cmd.Validate())
	assert.True(t, decimal.RequireFromString("30.25").Equal(cmd.Total()))
}

func TestPlaceOrder_Validate_SubtotalTolerance(t *testing.T) {
	cmd := validPlaceOrder()
	cmd.Subtotal = decimal.RequireFromString("25.26")
	assert.NoError(t, cmd.Validate())

	cmd.Subtotal = decimal.RequireFromString("25.50")
	assert.Contains(t, detailFields(t, cmd.Validate()), "subtotal")
}

func TestPlaceOrder_Validate_Items(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*PlaceOrder)
		field  string
	}{
		{"empty items", func(c *PlaceOrder) { c.Items = nil; c.Subtotal = decimal.Zero }, "items"},
		{"duplicate product", func(c *PlaceOrder) { c.Items[1].ProductID = "p1" }, "items[1].product_id"},
		{"missing product id", func(c *PlaceOrder) { c.Items[0].ProductID = " " }, "items[0].product_id"},
		{"zero quantity", func(c *PlaceOrder) { c.Items[0].Quantity = 0 }, "items[0].quantity"},
		{"quantity above max", func(c *PlaceOrder) { c.Items[0].Quantity = MaxItemQuantity + 1 }, "items[0].quantity"},
		{"negative price", func(c *PlaceOrder) { c.Items[1].UnitPrice = decimal.NewFromInt(-1) }, "items[1].price"},
		{"bad payment method", func(c *PlaceOrder) { c.PaymentMethod = "barter" }, "payment_method"},
		{"missing shipping", func(c *PlaceOrder) { c.ShippingAddress = nil }, "shipping_address"},
		{"negative tax", func(c *PlaceOrder) { c.TaxAmount = decimal.NewFromInt(-1) }, "tax_amount"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := validPlaceOrder()
			tt.mutate(&cmd)
			assert.Contains(t, detailFields(t, cmd.Validate()), tt.field)
		})
	}
}

func TestPlaceOrder_Validate_SubCentAmounts(t *testing.T) {
	guest := validPlaceOrder()
	guest.UserID = nil
	guest.ShippingAddress = &Address{Name: "Guest", Email: "guest@example.com", Phone: "555-0100", Line1: "1 Main St"}
	guest.Items = []PlaceOrderItem{{ProductID: "p1", Quantity: 1, UnitPrice: decimal.RequireFromString("10.005")}}
	guest.Subtotal = decimal.RequireFromString("10.005")
	guest.TaxAmount = decimal.RequireFromString("0.005")
	guest.ShippingAmount = decimal.Zero

	fields := detailFields(t, guest.Validate())
	assert.Contains(t, fields, "items[0].price")
	assert.Contains(t, fields, "subtotal")
	assert.Contains(t, fields, "tax_amount")

	tests := []struct {
		name   string
		mutate func(*PlaceOrder)
		field  string
	}{
		{"shipping", func(c *PlaceOrder) { c.ShippingAmount = decimal.RequireFromString("3.001") }, "shipping_amount"},
		{"discount", func(c *PlaceOrder) { c.DiscountAmount = decimal.RequireFromString("0.999") }, "discount_amount"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := validPlaceOrder()
			tt.mutate(&cmd)
			assert.Contains(t, detailFields(t, cmd.Validate()), tt.field)
		})
	}

	trailingZeros := validPlaceOrder()
	trailingZeros.TaxAmount = decimal.RequireFromString("2.000")
	assert.NoError(t, trailingZeros.Validate())
}

func TestPlaceOrder_Validate_TooManyItems(t *testing.T) {
	cmd := validPlaceOrder()
	cmd.Items = make([]PlaceOrderItem, MaxOrderItems+1)
	for i := range cmd.Items {
		cmd.Items[i] = PlaceOrderItem{ProductID: fmt.Sprintf("p%d", i), Quantity: 1, UnitPrice: decimal.Zero}
	}
	cmd.Subtotal = decimal.Zero

	assert.Contains(t, detailFields(t, cmd.Validate()), "items")
}

func TestPlaceOrder_Validate_Guest(t *testing.T) {
	cmd := validPlaceOrder()
	cmd.UserID = nil

	assert.Contains(t, detailFields(t, cmd.Validate()), "shipping_address")

	cmd.ShippingAddress = &Address{Name: "Guest", Email: "guest@example.com", Phone: "555-0100", Line1: "1 Main St"}
	assert.NoError(t, cmd.Validate())
}

func TestPlaceOrder_RecordsCouponUsage(t *testing.T) {
	couponID := "c1"

	cmd := validPlaceOrder()
	assert.False(t, cmd.RecordsCouponUsage())

	cmd.CouponID = &couponID
	assert.False(t, cmd.RecordsCouponUsage(), "no discount")

	cmd.DiscountAmount = decimal.RequireFromString("5.00")
	assert.True(t, cmd.RecordsCouponUsage())

	cmd.UserID = nil
	assert.False(t, cmd.RecordsCouponUsage(), "guest")
}
