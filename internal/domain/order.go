package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRefunded   OrderStatus = "refunded"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusConfirmed, OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusConfirmed:  {OrderStatusProcessing, OrderStatusShipped, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
	OrderStatusDelivered:  {OrderStatusRefunded},
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled, OrderStatusRefunded:
		return true
	}
	return false
}

// CanTransitionTo reports whether an order may move from s to next. Staying
// in the same status is always allowed and has no effect.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	return len(orderTransitions[s]) == 0
}

// HoldsReservation reports whether items of an order in this status still
// occupy reserved inventory.
func (s OrderStatus) HoldsReservation() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentCOD        PaymentMethod = "cod"
	PaymentCard       PaymentMethod = "card"
	PaymentUPI        PaymentMethod = "upi"
	PaymentNetBanking PaymentMethod = "netbanking"
	PaymentWallet     PaymentMethod = "wallet"
)

// Address is stored as a JSON document in the orders table.
type Address struct {
	Name       string `json:"name,omitempty"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Line1      string `json:"line1,omitempty"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
}

func (a Address) Value() (driver.Value, error) {
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (a *Address) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*a = Address{}
		return nil
	case string:
		return json.Unmarshal([]byte(v), a)
	case []byte:
		return json.Unmarshal(v, a)
	default:
		return fmt.Errorf("cannot scan %T into Address", src)
	}
}

type Order struct {
	ID              string          `db:"id"`
	OrderNumber     string          `db:"order_number"`
	UserID          *string         `db:"user_id"`
	Status          OrderStatus     `db:"status"`
	PaymentStatus   PaymentStatus   `db:"payment_status"`
	PaymentMethod   PaymentMethod   `db:"payment_method"`
	ShippingAddress Address         `db:"shipping_address"`
	BillingAddress  *Address        `db:"billing_address"`
	CustomerName    *string         `db:"customer_name"`
	CustomerEmail   *string         `db:"customer_email"`
	CustomerPhone   *string         `db:"customer_phone"`
	Subtotal        decimal.Decimal `db:"subtotal"`
	TaxAmount       decimal.Decimal `db:"tax_amount"`
	ShippingAmount  decimal.Decimal `db:"shipping_amount"`
	DiscountAmount  decimal.Decimal `db:"discount_amount"`
	TotalAmount     decimal.Decimal `db:"total_amount"`
	CouponID        *string         `db:"coupon_id"`
	Notes           *string         `db:"notes"`
	TrackingNumber  *string         `db:"tracking_number"`
	Carrier         *string         `db:"carrier"`
	CancelledReason *string         `db:"cancelled_reason"`
	ShippedAt       *time.Time      `db:"shipped_at"`
	DeliveredAt     *time.Time      `db:"delivered_at"`
	CancelledAt     *time.Time      `db:"cancelled_at"`
	CreatedAt       time.Time       `db:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at"`

	Items   []OrderItem          `db:"-"`
	History []OrderStatusHistory `db:"-"`
}

func (o Order) OwnedBy(userID string) bool {
	return o.UserID != nil && *o.UserID == userID
}

// OrderTotal is subtotal + tax - discount + shipping.
func OrderTotal(subtotal, tax, discount, shipping decimal.Decimal) decimal.Decimal {
	return subtotal.Add(tax).Sub(discount).Add(shipping)
}

// NewOrderNumber builds a human readable order reference such as
// ORD-20240131-3F9A1C2E.
func NewOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("ORD-%s-%s", now.UTC().Format("20060102"), suffix)
}

type OrderItem struct {
	ID             string          `db:"id" json:"id"`
	OrderID        string          `db:"order_id" json:"orderId"`
	ProductID      string          `db:"product_id" json:"productId"`
	ProductName    string          `db:"product_name" json:"productName"`
	ProductSKU     *string         `db:"product_sku" json:"productSku,omitempty"`
	ProductImage   *string         `db:"product_image" json:"productImage,omitempty"`
	Quantity       int             `db:"quantity" json:"quantity"`
	UnitPrice      decimal.Decimal `db:"unit_price" json:"unitPrice"`
	TotalPrice     decimal.Decimal `db:"total_price" json:"totalPrice"`
	DiscountAmount decimal.Decimal `db:"discount_amount" json:"discountAmount"`
}

type OrderStatusHistory struct {
	ID             string       `db:"id"`
	OrderID        string       `db:"order_id"`
	Status         OrderStatus  `db:"status"`
	PreviousStatus *OrderStatus `db:"previous_status"`
	Notes          *string      `db:"notes"`
	ChangedBy      *string      `db:"changed_by"`
	CreatedAt      time.Time    `db:"created_at"`
}

type OrderFilter struct {
	UserID        string
	Status        string
	PaymentStatus string
	Search        string
	ProductID     string
	From          *time.Time
	To            *time.Time
	Page          int
	Limit         int
}

// OrderUpdate carries the optional changes of an order update; nil fields are
// left untouched.
type OrderUpdate struct {
	Status          *OrderStatus
	PaymentStatus   *PaymentStatus
	TrackingNumber  *string
	Carrier         *string
	Notes           *string
	CancelledReason *string
}

func (u OrderUpdate) OnlyCancellation() bool {
	return u.Status != nil && *u.Status == OrderStatusCancelled &&
		u.PaymentStatus == nil && u.TrackingNumber == nil && u.Carrier == nil && u.Notes == nil
}
