package domain

import "time"

type ModerationStatus string

const (
	ModerationPending  ModerationStatus = "pending"
	ModerationApproved ModerationStatus = "approved"
	ModerationRejected ModerationStatus = "rejected"
)

func (s ModerationStatus) Valid() bool {
	switch s {
	case ModerationPending, ModerationApproved, ModerationRejected:
		return true
	}
	return false
}

type Review struct {
	ID                 string           `db:"id"`
	ProductID          string           `db:"product_id"`
	UserID             string           `db:"user_id"`
	OrderID            *string          `db:"order_id"`
	Rating             int              `db:"rating"`
	Title              *string          `db:"title"`
	Comment            *string          `db:"comment"`
	IsVerifiedPurchase bool             `db:"is_verified_purchase"`
	ModerationStatus   ModerationStatus `db:"moderation_status"`
	AdminResponse      *string          `db:"admin_response"`
	AdminResponseAt    *time.Time       `db:"admin_response_at"`
	HelpfulCount       int              `db:"helpful_count"`
	CreatedAt          time.Time        `db:"created_at"`
	UpdatedAt          time.Time        `db:"updated_at"`
}

// VerifiesPurchase reports whether an order in status counts as proof that
// the reviewer bought the product.
func VerifiesPurchase(status OrderStatus) bool {
	return status == OrderStatusShipped || status == OrderStatusDelivered
}

type ReviewFilter struct {
	ProductID string
	Status    string
	Page      int
	Limit     int
}
