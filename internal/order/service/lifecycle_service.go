package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"storefront/internal/domain"
	apperrors "storefront/internal/errors"
	"storefront/internal/infrastructure/database"
)

type LifecycleOrderRepository interface {
	FindByIDForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*domain.Order, error)
	Update(ctx context.Context, tx *sqlx.Tx, order *domain.Order) error
	InsertHistory(ctx context.Context, tx *sqlx.Tx, h *domain.OrderStatusHistory) error
}

type LifecycleItemRepository interface {
	FindByOrderIDTx(ctx context.Context, tx *sqlx.Tx, orderID string) ([]domain.OrderItem, error)
}

type StockMover interface {
	Release(ctx context.Context, tx *sqlx.Tx, productID string, quantity int) (bool, error)
	Ship(ctx context.Context, tx *sqlx.Tx, productID string, quantity int) (bool, error)
	InsertMovement(ctx context.Context, tx *sqlx.Tx, m *domain.InventoryMovement) error
}

type SalesCounter interface {
	IncrementSalesCount(ctx context.Context, tx *sqlx.Tx, id string, quantity int) error
}

// LifecycleService applies order updates together with the inventory
// effects of status transitions.
type LifecycleService struct {
	db        database.TxBeginner
	orders    LifecycleOrderRepository
	items     LifecycleItemRepository
	inventory StockMover
	products  SalesCounter
	logger    *zap.Logger
	txTimeout time.Duration
}

func NewLifecycleService(
	db database.TxBeginner,
	orders LifecycleOrderRepository,
	items LifecycleItemRepository,
	inventory StockMover,
	products SalesCounter,
	logger *zap.Logger,
	txTimeout time.Duration,
) *LifecycleService {
	return &LifecycleService{
		db:        db,
		orders:    orders,
		items:     items,
		inventory: inventory,
		products:  products,
		logger:    logger,
		txTimeout: txTimeout,
	}
}

func (s *LifecycleService) Update(ctx context.Context, orderID string, upd domain.OrderUpdate, actor domain.Actor) (*domain.Order, error) {
	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	var order *domain.Order
	err := database.InTx(txCtx, s.db, func(tx *sqlx.Tx) error {
		var err error
		order, err = s.orders.FindByIDForUpdate(txCtx, tx, orderID)
		if err != nil {
			return err
		}

		if err := authorize(order, upd, actor); err != nil {
			return err
		}

		previous := order.Status
		now := time.Now().UTC()
		if upd.Status != nil && *upd.Status != previous {
			if !previous.CanTransitionTo(*upd.Status) {
				return apperrors.NewConflictError(fmt.Sprintf("cannot change order status from %s to %s", previous, *upd.Status))
			}
			if err := s.applyTransition(txCtx, tx, order, *upd.Status, now); err != nil {
				return err
			}
		}

		if upd.PaymentStatus != nil {
			order.PaymentStatus = *upd.PaymentStatus
		}
		if upd.TrackingNumber != nil {
			order.TrackingNumber = upd.TrackingNumber
		}
		if upd.Carrier != nil {
			order.Carrier = upd.Carrier
		}
		if upd.Notes != nil {
			order.Notes = upd.Notes
		}
		if upd.CancelledReason != nil {
			order.CancelledReason = upd.CancelledReason
		}

		if err := s.orders.Update(txCtx, tx, order); err != nil {
			return err
		}

		if order.Status == previous {
			return nil
		}

		history := &domain.OrderStatusHistory{
			OrderID:        order.ID,
			Status:         order.Status,
			PreviousStatus: &previous,
			CreatedAt:      now,
		}
		if order.Status == domain.OrderStatusCancelled {
			history.Notes = order.CancelledReason
		}
		if actor.UserID != "" {
			history.ChangedBy = &actor.UserID
		}
		return s.orders.InsertHistory(txCtx, tx, history)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order updated",
		zap.String("orderId", order.ID),
		zap.String("status", string(order.Status)),
		zap.String("paymentStatus", string(order.PaymentStatus)),
		zap.String("changedBy", actor.UserID),
	)
	return order, nil
}

// authorize lets admins change anything; customers may only cancel their own
// pending order.
func authorize(order *domain.Order, upd domain.OrderUpdate, actor domain.Actor) error {
	if actor.Admin {
		return nil
	}
	if !actor.Owns(order.UserID) {
		return apperrors.NewForbiddenError("you can only update your own orders")
	}
	if !upd.OnlyCancellation() {
		return apperrors.NewForbiddenError("customers may only cancel orders")
	}
	if order.Status != domain.OrderStatusPending {
		return apperrors.NewValidationError("only pending orders can be cancelled", apperrors.ValidationDetail{
			Field:   "status",
			Message: fmt.Sprintf("order is %s and can no longer be cancelled", order.Status),
		})
	}
	return nil
}

func (s *LifecycleService) applyTransition(ctx context.Context, tx *sqlx.Tx, order *domain.Order, next domain.OrderStatus, now time.Time) error {
	switch next {
	case domain.OrderStatusShipped:
		if err := s.moveStock(ctx, tx, order, domain.MovementShip); err != nil {
			return err
		}
		order.ShippedAt = &now
	case domain.OrderStatusDelivered:
		order.DeliveredAt = &now
	case domain.OrderStatusCancelled:
		if order.Status.HoldsReservation() {
			if err := s.moveStock(ctx, tx, order, domain.MovementRelease); err != nil {
				return err
			}
		}
		order.CancelledAt = &now
	}
	order.Status = next
	return nil
}

func (s *LifecycleService) moveStock(ctx context.Context, tx *sqlx.Tx, order *domain.Order, kind domain.MovementType) error {
	items, err := s.items.FindByOrderIDTx(ctx, tx, order.ID)
	if err != nil {
		return err
	}

	ref := domain.ReferenceOrder
	for _, item := range items {
		var tracked bool
		if kind == domain.MovementShip {
			tracked, err = s.inventory.Ship(ctx, tx, item.ProductID, item.Quantity)
			if err == nil {
				err = s.products.IncrementSalesCount(ctx, tx, item.ProductID, item.Quantity)
			}
		} else {
			tracked, err = s.inventory.Release(ctx, tx, item.ProductID, item.Quantity)
		}
		if err != nil {
			return err
		}
		if !tracked {
			continue
		}

		movement := &domain.InventoryMovement{
			ProductID:      item.ProductID,
			MovementType:   kind,
			QuantityChange: -item.Quantity,
			ReferenceType:  &ref,
			ReferenceID:    &order.ID,
		}
		if err := s.inventory.InsertMovement(ctx, tx, movement); err != nil {
			return err
		}
	}
	return nil
}
