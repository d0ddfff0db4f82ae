package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/httpx"
)

type PlaceOrderResponse struct {
	TraceID   string    `json:"traceId"`
	Success   bool      `json:"success"`
	Order     OrderDTO  `json:"order"`
	Timestamp time.Time `json:"timestamp"`
}

type ListOrdersResponse struct {
	Orders     []OrderDTO       `json:"orders"`
	Pagination httpx.Pagination `json:"pagination"`
}

type OrderDTO struct {
	ID              string             `json:"id"`
	OrderNumber     string             `json:"orderNumber"`
	UserID          *string            `json:"userId"`
	Status          string             `json:"status"`
	PaymentStatus   string             `json:"paymentStatus"`
	PaymentMethod   string             `json:"paymentMethod"`
	ShippingAddress domain.Address     `json:"shippingAddress"`
	BillingAddress  *domain.Address    `json:"billingAddress"`
	CustomerName    *string            `json:"customerName"`
	CustomerEmail   *string            `json:"customerEmail"`
	CustomerPhone   *string            `json:"customerPhone"`
	Subtotal        decimal.Decimal    `json:"subtotal"`
	TaxAmount       decimal.Decimal    `json:"taxAmount"`
	ShippingAmount  decimal.Decimal    `json:"shippingAmount"`
	DiscountAmount  decimal.Decimal    `json:"discountAmount"`
	TotalAmount     decimal.Decimal    `json:"totalAmount"`
	CouponID        *string            `json:"couponId"`
	Notes           *string            `json:"notes"`
	TrackingNumber  *string            `json:"trackingNumber"`
	Carrier         *string            `json:"carrier"`
	CancelledReason *string            `json:"cancelledReason"`
	ShippedAt       *time.Time         `json:"shippedAt"`
	DeliveredAt     *time.Time         `json:"deliveredAt"`
	CancelledAt     *time.Time         `json:"cancelledAt"`
	CreatedAt       time.Time          `json:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt"`
	Items           []domain.OrderItem `json:"items"`
	History         []StatusChangeDTO  `json:"history,omitempty"`
}

type StatusChangeDTO struct {
	Status         string    `json:"status"`
	PreviousStatus *string   `json:"previousStatus"`
	Notes          *string   `json:"notes"`
	ChangedBy      *string   `json:"changedBy"`
	CreatedAt      time.Time `json:"createdAt"`
}

func NewOrderDTO(o domain.Order) OrderDTO {
	items := o.Items
	if items == nil {
		items = []domain.OrderItem{}
	}

	dto := OrderDTO{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		UserID:          o.UserID,
		Status:          string(o.Status),
		PaymentStatus:   string(o.PaymentStatus),
		PaymentMethod:   string(o.PaymentMethod),
		ShippingAddress: o.ShippingAddress,
		BillingAddress:  o.BillingAddress,
		CustomerName:    o.CustomerName,
		CustomerEmail:   o.CustomerEmail,
		CustomerPhone:   o.CustomerPhone,
		Subtotal:        o.Subtotal,
		TaxAmount:       o.TaxAmount,
		ShippingAmount:  o.ShippingAmount,
		DiscountAmount:  o.DiscountAmount,
		TotalAmount:     o.TotalAmount,
		CouponID:        o.CouponID,
		Notes:           o.Notes,
		TrackingNumber:  o.TrackingNumber,
		Carrier:         o.Carrier,
		CancelledReason: o.CancelledReason,
		ShippedAt:       o.ShippedAt,
		DeliveredAt:     o.DeliveredAt,
		CancelledAt:     o.CancelledAt,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
		Items:           items,
	}

	for _, h := range o.History {
		change := StatusChangeDTO{
			Status:    string(h.Status),
			Notes:     h.Notes,
			ChangedBy: h.ChangedBy,
			CreatedAt: h.CreatedAt,
		}
		if h.PreviousStatus != nil {
			prev := string(*h.PreviousStatus)
			change.PreviousStatus = &prev
		}
		dto.History = append(dto.History, change)
	}
	return dto
}

func NewOrderDTOs(orders []domain.Order) []OrderDTO {
	out := make([]OrderDTO, 0, len(orders))
	for _, o := range orders {
		out = append(out, NewOrderDTO(o))
	}
	return out
}
