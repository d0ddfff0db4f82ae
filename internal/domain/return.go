package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ReturnStatus string

const (
	ReturnPending   ReturnStatus = "pending"
	ReturnApproved  ReturnStatus = "approved"
	ReturnRejected  ReturnStatus = "rejected"
	ReturnPickedUp  ReturnStatus = "picked_up"
	ReturnReceived  ReturnStatus = "received"
	ReturnProcessed ReturnStatus = "processed"
	ReturnRefunded  ReturnStatus = "refunded"
	ReturnCancelled ReturnStatus = "cancelled"
)

var returnTransitions = map[ReturnStatus][]ReturnStatus{
	ReturnPending:   {ReturnApproved, ReturnRejected, ReturnCancelled},
	ReturnApproved:  {ReturnPickedUp, ReturnCancelled},
	ReturnPickedUp:  {ReturnReceived},
	ReturnReceived:  {ReturnProcessed},
	ReturnProcessed: {ReturnRefunded},
}

// ActiveReturnStatuses block a second return for the same order or item.
var ActiveReturnStatuses = []ReturnStatus{ReturnPending, ReturnApproved, ReturnPickedUp, ReturnReceived}

func (s ReturnStatus) Valid() bool {
	switch s {
	case ReturnPending, ReturnApproved, ReturnRejected, ReturnPickedUp,
		ReturnReceived, ReturnProcessed, ReturnRefunded, ReturnCancelled:
		return true
	}
	return false
}

func (s ReturnStatus) CanTransitionTo(next ReturnStatus) bool {
	for _, allowed := range returnTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type ReturnType string

const (
	ReturnTypeRefund   ReturnType = "refund"
	ReturnTypeExchange ReturnType = "exchange"
)

type Return struct {
	ID                string          `db:"id"`
	OrderID           string          `db:"order_id"`
	OrderItemID       *string         `db:"order_item_id"`
	UserID            string          `db:"user_id"`
	Reason            string          `db:"reason"`
	Description       *string         `db:"description"`
	ReturnType        ReturnType      `db:"return_type"`
	ExchangeProductID *string         `db:"exchange_product_id"`
	Status            ReturnStatus    `db:"status"`
	RefundAmount      decimal.Decimal `db:"refund_amount"`
	RejectionReason   *string         `db:"rejection_reason"`
	TrackingNumber    *string         `db:"tracking_number"`
	PickedUpAt        *time.Time      `db:"picked_up_at"`
	ReceivedAt        *time.Time      `db:"received_at"`
	ProcessedAt       *time.Time      `db:"processed_at"`
	CreatedAt         time.Time       `db:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at"`
}

// WholeOrder reports whether the return covers the entire order rather than
// a single line.
func (r Return) WholeOrder() bool {
	return r.OrderItemID == nil
}

// Stamp records the time of the milestone reached by moving to status.
func (r *Return) Stamp(status ReturnStatus, now time.Time) {
	switch status {
	case ReturnPickedUp:
		r.PickedUpAt = &now
	case ReturnReceived:
		r.ReceivedAt = &now
	case ReturnProcessed:
		r.ProcessedAt = &now
	}
}

type ReturnFilter struct {
	UserID  string
	Status  string
	OrderID string
	Search  string
	Page    int
	Limit   int
}
