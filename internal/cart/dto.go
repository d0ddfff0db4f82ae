package cart

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/httpx"
)

type CartPayload struct {
	Items      []json.RawMessage `json:"items" validate:"required,min=1,max=100"`
	TotalPrice decimal.Decimal   `json:"totalPrice"`
}

type CaptureCartRequest struct {
	Cart  CartPayload `json:"cart"`
	Email *string     `json:"email" validate:"omitempty,email,max=255"`
}

type CaptureCartResponse struct {
	Success bool   `json:"success"`
	CartID  string `json:"cartId"`
}

type RecoverCartRequest struct {
	CartID string `json:"cartId" validate:"required"`
}

type SendEmailResponse struct {
	Success  bool `json:"success"`
	Attempts int  `json:"attempts"`
}

type CartDTO struct {
	ID               string          `json:"id"`
	UserID           *string         `json:"userId"`
	Email            *string         `json:"email"`
	Cart             json.RawMessage `json:"cart"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	ItemCount        int             `json:"itemCount"`
	RecoveryAttempts int             `json:"recoveryAttempts"`
	LastEmailSentAt  *time.Time      `json:"lastEmailSentAt"`
	Recovered        bool            `json:"recovered"`
	RecoveredAt      *time.Time      `json:"recoveredAt"`
	ExpiresAt        time.Time       `json:"expiresAt"`
	CreatedAt        time.Time       `json:"createdAt"`
}

type ListCartsResponse struct {
	Carts      []CartDTO        `json:"carts"`
	Pagination httpx.Pagination `json:"pagination"`
}

func toCartDTO(c domain.AbandonedCart) CartDTO {
	return CartDTO{
		ID:               c.ID,
		UserID:           c.UserID,
		Email:            c.Email,
		Cart:             json.RawMessage(c.CartData),
		TotalAmount:      c.TotalAmount,
		ItemCount:        c.ItemCount,
		RecoveryAttempts: c.RecoveryAttempts,
		LastEmailSentAt:  c.LastEmailSentAt,
		Recovered:        c.Recovered,
		RecoveredAt:      c.RecoveredAt,
		ExpiresAt:        c.ExpiresAt,
		CreatedAt:        c.CreatedAt,
	}
}
