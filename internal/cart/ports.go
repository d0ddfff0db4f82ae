package cart

import (
	"context"
	"time"

	"storefront/internal/domain"
)

type UseCase interface {
	Capture(ctx context.Context, req CaptureCartRequest, actor domain.Actor, actorEmail string) (*CaptureCartResponse, error)
	Recover(ctx context.Context, req RecoverCartRequest) error
	ListAbandoned(ctx context.Context, filter ListFilter) (*ListCartsResponse, error)
	SendRecoveryEmail(ctx context.Context, id string) (*SendEmailResponse, error)
	Expire(ctx context.Context) (int64, error)
}

type Repository interface {
	Insert(ctx context.Context, cart *domain.AbandonedCart) error
	FindByID(ctx context.Context, id string) (*domain.AbandonedCart, error)
	List(ctx context.Context, filter domain.AbandonedCartFilter) ([]domain.AbandonedCart, int, error)
	MarkRecovered(ctx context.Context, id string, at time.Time) error
	RecordRecoveryEmail(ctx context.Context, id string, maxAttempts int, at time.Time) (bool, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Notifier delivers recovery reminders for abandoned carts.
type Notifier interface {
	NotifyAbandonedCart(ctx context.Context, cart domain.AbandonedCart) error
}

// ListFilter is the admin query over abandoned carts. A nil MinAge falls
// back to the configured abandon threshold.
type ListFilter struct {
	Recovered *bool
	MinAge    *time.Duration
	Page      int
	Limit     int
}
