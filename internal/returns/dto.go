package returns

import (
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/httpx"
)

type CreateReturnRequest struct {
	OrderID           string  `json:"order_id" validate:"required"`
	OrderItemID       *string `json:"order_item_id" validate:"omitempty,min=1"`
	Reason            string  `json:"reason" validate:"required,max=500"`
	Description       *string `json:"description" validate:"omitempty,max=2000"`
	ReturnType        string  `json:"return_type" validate:"omitempty,oneof=refund exchange"`
	ExchangeProductID *string `json:"exchange_product_id" validate:"omitempty,min=1"`
}

type UpdateReturnRequest struct {
	Status          *string `json:"status" validate:"omitempty,oneof=pending approved rejected picked_up received processed refunded cancelled"`
	RejectionReason *string `json:"rejection_reason" validate:"omitempty,max=500"`
	TrackingNumber  *string `json:"tracking_number" validate:"omitempty,max=100"`
}

func (r UpdateReturnRequest) toUpdate() ReturnUpdate {
	upd := ReturnUpdate{
		RejectionReason: r.RejectionReason,
		TrackingNumber:  r.TrackingNumber,
	}
	if r.Status != nil {
		s := domain.ReturnStatus(*r.Status)
		upd.Status = &s
	}
	return upd
}

type ReturnDTO struct {
	ID                string          `json:"id"`
	OrderID           string          `json:"orderId"`
	OrderItemID       *string         `json:"orderItemId"`
	UserID            string          `json:"userId"`
	Reason            string          `json:"reason"`
	Description       *string         `json:"description"`
	ReturnType        string          `json:"returnType"`
	ExchangeProductID *string         `json:"exchangeProductId"`
	Status            string          `json:"status"`
	RefundAmount      decimal.Decimal `json:"refundAmount"`
	RejectionReason   *string         `json:"rejectionReason"`
	TrackingNumber    *string         `json:"trackingNumber"`
	PickedUpAt        *time.Time      `json:"pickedUpAt"`
	ReceivedAt        *time.Time      `json:"receivedAt"`
	ProcessedAt       *time.Time      `json:"processedAt"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

type ListReturnsResponse struct {
	Returns    []ReturnDTO      `json:"returns"`
	Pagination httpx.Pagination `json:"pagination"`
}

func toReturnDTO(r domain.Return) ReturnDTO {
	return ReturnDTO{
		ID:                r.ID,
		OrderID:           r.OrderID,
		OrderItemID:       r.OrderItemID,
		UserID:            r.UserID,
		Reason:            r.Reason,
		Description:       r.Description,
		ReturnType:        string(r.ReturnType),
		ExchangeProductID: r.ExchangeProductID,
		Status:            string(r.Status),
		RefundAmount:      r.RefundAmount,
		RejectionReason:   r.RejectionReason,
		TrackingNumber:    r.TrackingNumber,
		PickedUpAt:        r.PickedUpAt,
		ReceivedAt:        r.ReceivedAt,
		ProcessedAt:       r.ProcessedAt,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}
