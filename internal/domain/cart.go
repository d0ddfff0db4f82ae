package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type AbandonedCart struct {
	ID               string          `db:"id"`
	UserID           *string         `db:"user_id"`
	Email            *string         `db:"email"`
	CartData         string          `db:"cart_data"`
	TotalAmount      decimal.Decimal `db:"total_amount"`
	ItemCount        int             `db:"item_count"`
	RecoveryAttempts int             `db:"recovery_attempts"`
	LastEmailSentAt  *time.Time      `db:"last_email_sent_at"`
	Recovered        bool            `db:"recovered"`
	RecoveredAt      *time.Time      `db:"recovered_at"`
	ExpiresAt        time.Time       `db:"expires_at"`
	CreatedAt        time.Time       `db:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at"`
}

// CanSendRecovery reports whether another recovery email may go out.
func (c AbandonedCart) CanSendRecovery(maxAttempts int) bool {
	return !c.Recovered && c.RecoveryAttempts < maxAttempts
}

type AbandonedCartFilter struct {
	Recovered     *bool
	CreatedBefore time.Time
	Page          int
	Limit         int
}
