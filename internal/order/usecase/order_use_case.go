package usecase

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"storefront/internal/domain"
	apperrors "storefront/internal/errors"
)

type OrderReader interface {
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context, f domain.OrderFilter) ([]domain.Order, int, error)
	FindHistory(ctx context.Context, orderID string) ([]domain.OrderStatusHistory, error)
}

type OrderItemReader interface {
	FindByOrderID(ctx context.Context, orderID string) ([]domain.OrderItem, error)
	FindByOrderIDs(ctx context.Context, orderIDs []string) (map[string][]domain.OrderItem, error)
}

type OrderUpdater interface {
	Update(ctx context.Context, orderID string, upd domain.OrderUpdate, actor domain.Actor) (*domain.Order, error)
}

type OrderUseCase struct {
	orders    OrderReader
	items     OrderItemReader
	lifecycle OrderUpdater
	logger    *zap.Logger
	retry     retrier
}

func NewOrderUseCase(orders OrderReader, items OrderItemReader, lifecycle OrderUpdater, logger *zap.Logger, maxRetryAttempts int) *OrderUseCase {
	return &OrderUseCase{
		orders:    orders,
		items:     items,
		lifecycle: lifecycle,
		logger:    logger,
		retry:     newRetrier(maxRetryAttempts, logger),
	}
}

// ListOrders returns a page of orders with their items. Customers only see
// their own orders whatever the filter says.
func (uc *OrderUseCase) ListOrders(ctx context.Context, filter domain.OrderFilter, actor domain.Actor) ([]domain.Order, int, error) {
	if !actor.Admin {
		filter.UserID = actor.UserID
	}
	if filter.Status != "" && !domain.OrderStatus(filter.Status).Valid() {
		return nil, 0, apperrors.NewValidationError("invalid status", apperrors.ValidationDetail{
			Field:   "status",
			Message: "status must be one of pending, confirmed, processing, shipped, delivered, cancelled, refunded",
		})
	}
	if filter.PaymentStatus != "" && !domain.PaymentStatus(filter.PaymentStatus).Valid() {
		return nil, 0, apperrors.NewValidationError("invalid payment_status", apperrors.ValidationDetail{
			Field:   "payment_status",
			Message: "payment_status must be one of pending, paid, failed, refunded",
		})
	}

	orders, total, err := uc.orders.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	ids := make([]string, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	items, err := uc.items.FindByOrderIDs(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}

	return orders, total, nil
}

// GetOrder returns an order with items and status history. Orders of other
// customers are reported as not found.
func (uc *OrderUseCase) GetOrder(ctx context.Context, id string, actor domain.Actor) (*domain.Order, error) {
	order, err := uc.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Admin && !actor.Owns(order.UserID) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("order with id %s not found", id))
	}
	return uc.load(ctx, order)
}

func (uc *OrderUseCase) UpdateOrder(ctx context.Context, id string, upd domain.OrderUpdate, actor domain.Actor) (*domain.Order, error) {
	var order *domain.Order
	err := uc.retry.do(ctx, "update_order", func() error {
		var err error
		order, err = uc.lifecycle.Update(ctx, id, upd, actor)
		return err
	})
	if err != nil {
		return nil, err
	}
	return uc.load(ctx, order)
}

func (uc *OrderUseCase) WriteInvoice(ctx context.Context, w io.Writer, id string, actor domain.Actor) error {
	order, err := uc.GetOrder(ctx, id, actor)
	if err != nil {
		return err
	}
	return renderInvoice(w, order)
}

func (uc *OrderUseCase) load(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	items, err := uc.items.FindByOrderID(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	history, err := uc.orders.FindHistory(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items
	order.History = history
	return order, nil
}
