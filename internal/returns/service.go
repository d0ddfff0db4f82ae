package returns

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

type returnService struct {
	db        database.TxBeginner
	repo      Repository
	orders    OrderRepository
	items     OrderItemRepository
	inventory InventoryRepository
	logger    *zap.Logger
}

func NewService(
	db database.TxBeginner,
	repo Repository,
	orders OrderRepository,
	items OrderItemRepository,
	inventory InventoryRepository,
	logger *zap.Logger,
) Service {
	return &returnService{
		db:        db,
		repo:      repo,
		orders:    orders,
		items:     items,
		inventory: inventory,
		logger:    logger,
	}
}

// Create opens a return on a delivered order. The refund amount is the
// named item's total or, for a whole-order return, the order total.
func (s *returnService) Create(ctx context.Context, ret *domain.Return, actor domain.Actor) error {
	return database.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		order, err := s.orders.FindByIDForUpdate(ctx, tx, ret.OrderID)
		if err != nil {
			return err
		}
		if !actor.Admin && !actor.Owns(order.UserID) {
			return apperrors.NewForbiddenError("you can only return your own orders")
		}
		if order.Status != domain.OrderStatusDelivered {
			return apperrors.NewValidationError("only delivered orders can be returned", apperrors.ValidationDetail{
				Field:   "order_id",
				Message: fmt.Sprintf("order is %s", order.Status),
			})
		}

		ret.RefundAmount = order.TotalAmount
		if ret.OrderItemID != nil {
			item, err := s.findItem(ctx, tx, order.ID, *ret.OrderItemID)
			if err != nil {
				return err
			}
			ret.RefundAmount = item.TotalPrice
		}

		active, err := s.repo.HasActive(ctx, tx, order.ID, ret.OrderItemID)
		if err != nil {
			return err
		}
		if active {
			return apperrors.NewConflictError("a return is already in progress for this order")
		}

		if order.UserID != nil {
			ret.UserID = *order.UserID
		} else {
			ret.UserID = actor.UserID
		}
		ret.Status = domain.ReturnPending
		return s.repo.Insert(ctx, tx, ret)
	})
}

func (s *returnService) findItem(ctx context.Context, tx *sqlx.Tx, orderID, itemID string) (*domain.OrderItem, error) {
	items, err := s.items.FindByOrderIDTx(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ID == itemID {
			return &items[i], nil
		}
	}
	return nil, apperrors.NewNotFoundError(fmt.Sprintf("order item %s not found in order %s", itemID, orderID))
}

func (s *returnService) Get(ctx context.Context, id string) (*domain.Return, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *returnService) List(ctx context.Context, filter domain.ReturnFilter) ([]domain.Return, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *returnService) Update(ctx context.Context, id string, upd ReturnUpdate, actor domain.Actor) (*domain.Return, error) {
	var ret *domain.Return
	err := database.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		var err error
		ret, err = s.repo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := authorize(ret, upd, actor); err != nil {
			return err
		}

		if upd.Status != nil && *upd.Status != ret.Status {
			next := *upd.Status
			if !ret.Status.CanTransitionTo(next) {
				return apperrors.NewConflictError(fmt.Sprintf("cannot change return status from %s to %s", ret.Status, next))
			}
			if err := s.applyTransition(ctx, tx, ret, next, actor); err != nil {
				return err
			}
		}
		if upd.RejectionReason != nil {
			ret.RejectionReason = upd.RejectionReason
		}
		if upd.TrackingNumber != nil {
			ret.TrackingNumber = upd.TrackingNumber
		}

		return s.repo.Update(ctx, tx, ret)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("return updated",
		zap.String("returnId", ret.ID),
		zap.String("status", string(ret.Status)),
		zap.String("changedBy", actor.UserID),
	)
	return ret, nil
}

// authorize lets admins change anything; customers may only cancel their own
// pending return.
func authorize(ret *domain.Return, upd ReturnUpdate, actor domain.Actor) error {
	if actor.Admin {
		return nil
	}
	if ret.UserID != actor.UserID {
		return apperrors.NewForbiddenError("you can only update your own returns")
	}
	if !upd.OnlyCancellation() {
		return apperrors.NewForbiddenError("customers may only cancel returns")
	}
	if ret.Status != domain.ReturnPending {
		return apperrors.NewValidationError("only pending returns can be cancelled", apperrors.ValidationDetail{
			Field:   "status",
			Message: fmt.Sprintf("return is %s", ret.Status),
		})
	}
	return nil
}

func (s *returnService) applyTransition(ctx context.Context, tx *sqlx.Tx, ret *domain.Return, next domain.ReturnStatus, actor domain.Actor) error {
	now := time.Now().UTC()
	ret.Stamp(next, now)

	switch next {
	case domain.ReturnReceived:
		if err := s.restock(ctx, tx, ret, actor); err != nil {
			return err
		}
	case domain.ReturnRefunded:
		if ret.WholeOrder() {
			if err := s.refundOrder(ctx, tx, ret, actor, now); err != nil {
				return err
			}
		}
	}

	ret.Status = next
	return nil
}

// restock puts the returned units back on hand.
func (s *returnService) restock(ctx context.Context, tx *sqlx.Tx, ret *domain.Return, actor domain.Actor) error {
	items, err := s.items.FindByOrderIDTx(ctx, tx, ret.OrderID)
	if err != nil {
		return err
	}

	ref := domain.ReferenceReturn
	for _, item := range items {
		if ret.OrderItemID != nil && item.ID != *ret.OrderItemID {
			continue
		}

		tracked, err := s.inventory.AddStock(ctx, tx, item.ProductID, item.Quantity)
		if err != nil {
			return err
		}
		if !tracked {
			continue
		}

		movement := &domain.InventoryMovement{
			ProductID:      item.ProductID,
			MovementType:   domain.MovementReturn,
			QuantityChange: item.Quantity,
			ReferenceType:  &ref,
			ReferenceID:    &ret.ID,
		}
		if actor.UserID != "" {
			movement.CreatedBy = &actor.UserID
		}
		if err := s.inventory.InsertMovement(ctx, tx, movement); err != nil {
			return err
		}
	}
	return nil
}

func (s *returnService) refundOrder(ctx context.Context, tx *sqlx.Tx, ret *domain.Return, actor domain.Actor, now time.Time) error {
	order, err := s.orders.FindByIDForUpdate(ctx, tx, ret.OrderID)
	if err != nil {
		return err
	}
	if !order.Status.CanTransitionTo(domain.OrderStatusRefunded) {
		return apperrors.NewConflictError(fmt.Sprintf("order %s is %s and cannot be refunded", order.ID, order.Status))
	}

	previous := order.Status
	order.Status = domain.OrderStatusRefunded
	order.PaymentStatus = domain.PaymentStatusRefunded
	if err := s.orders.Update(ctx, tx, order); err != nil {
		return err
	}
	if previous == order.Status {
		return nil
	}

	notes := "Refunded by return " + ret.ID
	history := &domain.OrderStatusHistory{
		OrderID:        order.ID,
		Status:         order.Status,
		PreviousStatus: &previous,
		Notes:          &notes,
		CreatedAt:      now,
	}
	if actor.UserID != "" {
		history.ChangedBy = &actor.UserID
	}
	return s.orders.InsertHistory(ctx, tx, history)
}
