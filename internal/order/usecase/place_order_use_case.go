package usecase

import (
	"context"
	"slices"
	"strings"

	"go.uber.org/zap"

	"storefront/internal/domain"
)

type OrderPlacer interface {
	PlaceOrder(ctx context.Context, cmd domain.PlaceOrder) (*domain.Order, error)
}

type PlaceOrderUseCase struct {
	reservationSvc OrderPlacer
	logger         *zap.Logger
	retry          retrier
}

func NewPlaceOrderUseCase(reservationSvc OrderPlacer, logger *zap.Logger, maxRetryAttempts int) *PlaceOrderUseCase {
	return &PlaceOrderUseCase{
		reservationSvc: reservationSvc,
		logger:         logger,
		retry:          newRetrier(maxRetryAttempts, logger),
	}
}

func (uc *PlaceOrderUseCase) PlaceOrder(ctx context.Context, cmd domain.PlaceOrder) (*domain.Order, error) {
	uc.logger.Info("place order started",
		zap.Bool("guest", cmd.Guest()),
		zap.Int("itemCount", len(cmd.Items)),
		zap.String("paymentMethod", string(cmd.PaymentMethod)),
	)

	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	// Concurrent checkouts lock inventory rows in the same order.
	cmd.Items = slices.Clone(cmd.Items)
	slices.SortFunc(cmd.Items, func(a, b domain.PlaceOrderItem) int {
		return strings.Compare(a.ProductID, b.ProductID)
	})

	var order *domain.Order
	err := uc.retry.do(ctx, "place_order", func() error {
		var err error
		order, err = uc.reservationSvc.PlaceOrder(ctx, cmd)
		return err
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}
