package dto

import (
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

type PlaceOrderRequest struct {
	Items           []PlaceOrderItem `json:"items" validate:"required,min=1,max=100,dive"`
	ShippingAddress *AddressRequest  `json:"shipping_address" validate:"required"`
	BillingAddress  *AddressRequest  `json:"billing_address" validate:"omitempty"`
	PaymentMethod   string           `json:"payment_method" validate:"omitempty,oneof=cod card upi netbanking wallet"`
	Subtotal        decimal.Decimal  `json:"subtotal"`
	TaxAmount       decimal.Decimal  `json:"tax_amount"`
	ShippingAmount  decimal.Decimal  `json:"shipping_amount"`
	DiscountAmount  decimal.Decimal  `json:"discount_amount"`
	CouponID        *string          `json:"coupon_id" validate:"omitempty,min=1"`
	Notes           *string          `json:"notes" validate:"omitempty,max=1000"`
}

type PlaceOrderItem struct {
	ProductID string          `json:"product_id" validate:"required"`
	Quantity  int             `json:"quantity" validate:"min=1,max=10000"`
	Price     decimal.Decimal `json:"price"`
	Name      string          `json:"name" validate:"max=255"`
	SKU       *string         `json:"sku" validate:"omitempty,max=64"`
	Image     *string         `json:"image" validate:"omitempty,max=2048"`
}

type AddressRequest struct {
	Name       string `json:"name" validate:"max=255"`
	Email      string `json:"email" validate:"omitempty,email"`
	Phone      string `json:"phone" validate:"max=32"`
	Line1      string `json:"line1" validate:"max=255"`
	Line2      string `json:"line2" validate:"max=255"`
	City       string `json:"city" validate:"max=100"`
	State      string `json:"state" validate:"max=100"`
	PostalCode string `json:"postal_code" validate:"max=20"`
	Country    string `json:"country" validate:"max=100"`
}

func (a *AddressRequest) toDomain() *domain.Address {
	if a == nil {
		return nil
	}
	return &domain.Address{
		Name:       a.Name,
		Email:      a.Email,
		Phone:      a.Phone,
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
}

// ToCommand builds the checkout command for userID, which is nil for guests.
func (r PlaceOrderRequest) ToCommand(userID *string) domain.PlaceOrder {
	items := make([]domain.PlaceOrderItem, len(r.Items))
	for i, item := range r.Items {
		items[i] = domain.PlaceOrderItem{
			ProductID:    item.ProductID,
			Quantity:     item.Quantity,
			UnitPrice:    item.Price,
			ProductName:  item.Name,
			ProductSKU:   item.SKU,
			ProductImage: item.Image,
		}
	}

	method := domain.PaymentMethod(r.PaymentMethod)
	if method == "" {
		method = domain.PaymentCOD
	}

	return domain.PlaceOrder{
		UserID:          userID,
		Items:           items,
		ShippingAddress: r.ShippingAddress.toDomain(),
		BillingAddress:  r.BillingAddress.toDomain(),
		PaymentMethod:   method,
		Subtotal:        r.Subtotal,
		TaxAmount:       r.TaxAmount,
		ShippingAmount:  r.ShippingAmount,
		DiscountAmount:  r.DiscountAmount,
		CouponID:        r.CouponID,
		Notes:           r.Notes,
	}
}

type UpdateOrderRequest struct {
	Status          *string `json:"status" validate:"omitempty,oneof=pending confirmed processing shipped delivered cancelled refunded"`
	PaymentStatus   *string `json:"payment_status" validate:"omitempty,oneof=pending paid failed refunded"`
	TrackingNumber  *string `json:"tracking_number" validate:"omitempty,max=100"`
	Carrier         *string `json:"carrier" validate:"omitempty,max=100"`
	Notes           *string `json:"notes" validate:"omitempty,max=1000"`
	CancelledReason *string `json:"cancelled_reason" validate:"omitempty,max=500"`
}

func (r UpdateOrderRequest) ToUpdate() domain.OrderUpdate {
	upd := domain.OrderUpdate{
		TrackingNumber:  r.TrackingNumber,
		Carrier:         r.Carrier,
		Notes:           r.Notes,
		CancelledReason: r.CancelledReason,
	}
	if r.Status != nil {
		s := domain.OrderStatus(*r.Status)
		upd.Status = &s
	}
	if r.PaymentStatus != nil {
		s := domain.PaymentStatus(*r.PaymentStatus)
		upd.PaymentStatus = &s
	}
	return upd
}
