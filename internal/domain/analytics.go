package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderSnapshot is the slice of an order the dashboard aggregates.
type OrderSnapshot struct {
	UserID        *string         `db:"user_id"`
	Status        OrderStatus     `db:"status"`
	PaymentStatus PaymentStatus   `db:"payment_status"`
	PaymentMethod PaymentMethod   `db:"payment_method"`
	TotalAmount   decimal.Decimal `db:"total_amount"`
	CreatedAt     time.Time       `db:"created_at"`
	DeliveredAt   *time.Time      `db:"delivered_at"`
}

// Revenue reports whether the order counts towards revenue.
func (o OrderSnapshot) Revenue() bool {
	return o.Status == OrderStatusShipped || o.Status == OrderStatusDelivered
}

// Paid reports whether the order was paid and not cancelled afterwards.
func (o OrderSnapshot) Paid() bool {
	return o.PaymentStatus == PaymentStatusPaid && o.Status != OrderStatusCancelled
}

type ItemSale struct {
	ProductID    string          `db:"product_id"`
	ProductName  string          `db:"product_name"`
	ProductImage *string         `db:"product_image"`
	Quantity     int             `db:"quantity"`
	TotalPrice   decimal.Decimal `db:"total_price"`
}

type ProductStat struct {
	ID           string          `db:"id"`
	Name         string          `db:"name"`
	SalesCount   int             `db:"sales_count"`
	Rating       decimal.Decimal `db:"rating"`
	ReviewsCount int             `db:"reviews_count"`
}
