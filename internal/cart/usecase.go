package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"storefront/internal/config"
	"storefront/internal/domain"
	apperrors "storefront/internal/errors"
	"storefront/internal/httpx"
)

type cartUseCase struct {
	repo     Repository
	notifier Notifier
	cfg      config.CartConfig
	logger   *zap.Logger
	now      func() time.Time
}

func NewUseCase(repo Repository, notifier Notifier, cfg config.CartConfig, logger *zap.Logger) UseCase {
	return &cartUseCase{
		repo:     repo,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Capture stores a snapshot of a cart left at checkout. Guests must leave an
// email; signed-in users fall back to the email of their token.
func (uc *cartUseCase) Capture(ctx context.Context, req CaptureCartRequest, actor domain.Actor, actorEmail string) (*CaptureCartResponse, error) {
	if req.Cart.TotalPrice.IsNegative() {
		return nil, apperrors.NewValidationError("invalid cart total", apperrors.ValidationDetail{
			Field:   "cart.totalPrice",
			Message: "totalPrice must be non-negative",
		})
	}

	email := req.Email
	if email == nil && actorEmail != "" {
		email = &actorEmail
	}
	if email == nil && actor.UserID == "" {
		return nil, apperrors.NewValidationError("email is required", apperrors.ValidationDetail{
			Field:   "email",
			Message: "email is required for guest carts",
		})
	}
	if email != nil {
		normalized := strings.ToLower(strings.TrimSpace(*email))
		email = &normalized
	}

	data, err := json.Marshal(req.Cart)
	if err != nil {
		return nil, fmt.Errorf("encoding cart: %w", err)
	}

	now := uc.now()
	cart := &domain.AbandonedCart{
		Email:       email,
		CartData:    string(data),
		TotalAmount: req.Cart.TotalPrice.Round(2),
		ItemCount:   len(req.Cart.Items),
		ExpiresAt:   now.Add(uc.cfg.Expiry),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if actor.UserID != "" {
		cart.UserID = &actor.UserID
	}

	if err := uc.repo.Insert(ctx, cart); err != nil {
		return nil, err
	}
	return &CaptureCartResponse{Success: true, CartID: cart.ID}, nil
}

func (uc *cartUseCase) Recover(ctx context.Context, req RecoverCartRequest) error {
	return uc.repo.MarkRecovered(ctx, req.CartID, uc.now())
}

func (uc *cartUseCase) ListAbandoned(ctx context.Context, f ListFilter) (*ListCartsResponse, error) {
	minAge := uc.cfg.AbandonAfter
	if f.MinAge != nil {
		minAge = *f.MinAge
	}

	filter := domain.AbandonedCartFilter{
		Recovered:     f.Recovered,
		CreatedBefore: uc.now().Add(-minAge),
		Page:          f.Page,
		Limit:         f.Limit,
	}
	found, total, err := uc.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	carts := make([]CartDTO, len(found))
	for i, c := range found {
		carts[i] = toCartDTO(c)
	}
	return &ListCartsResponse{
		Carts:      carts,
		Pagination: httpx.NewPagination(f.Page, f.Limit, total),
	}, nil
}

func (uc *cartUseCase) SendRecoveryEmail(ctx context.Context, id string) (*SendEmailResponse, error) {
	cart, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := uc.checkSendable(*cart); err != nil {
		return nil, err
	}

	now := uc.now()
	recorded, err := uc.repo.RecordRecoveryEmail(ctx, id, uc.cfg.MaxRecoveryAttempts, now)
	if err != nil {
		return nil, err
	}
	if !recorded {
		// Lost a race with another send or a recovery; report the fresh state.
		cart, err = uc.repo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := uc.checkSendable(*cart); err != nil {
			return nil, err
		}
		return nil, apperrors.NewConflictError("cart changed concurrently, please retry")
	}

	cart.RecoveryAttempts++
	cart.LastEmailSentAt = &now
	if err := uc.notifier.NotifyAbandonedCart(ctx, *cart); err != nil {
		return nil, fmt.Errorf("sending recovery email: %w", err)
	}
	return &SendEmailResponse{Success: true, Attempts: cart.RecoveryAttempts}, nil
}

func (uc *cartUseCase) checkSendable(cart domain.AbandonedCart) error {
	if cart.Recovered {
		return apperrors.NewValidationError("cart already recovered")
	}
	if !cart.CanSendRecovery(uc.cfg.MaxRecoveryAttempts) {
		return apperrors.NewValidationError(fmt.Sprintf("maximum of %d recovery attempts reached", uc.cfg.MaxRecoveryAttempts))
	}
	return nil
}

// Expire deletes unrecovered carts past their expiry.
func (uc *cartUseCase) Expire(ctx context.Context) (int64, error) {
	n, err := uc.repo.DeleteExpired(ctx, uc.now())
	if err != nil {
		return 0, err
	}
	uc.logger.Info("expired abandoned carts removed", zap.Int64("count", n))
	return n, nil
}
