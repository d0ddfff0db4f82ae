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

type ProductRepository interface {
	FindByIDTx(ctx context.Context, tx *sqlx.Tx, id string) (*domain.Product, error)
}

type InventoryRepository interface {
	FindByProductIDForUpdate(ctx context.Context, tx *sqlx.Tx, productID string) (*domain.Inventory, error)
	Reserve(ctx context.Context, tx *sqlx.Tx, productID string, quantity int) (bool, error)
	InsertMovement(ctx context.Context, tx *sqlx.Tx, m *domain.InventoryMovement) error
}

type OrderRepository interface {
	Insert(ctx context.Context, tx *sqlx.Tx, order *domain.Order) error
	InsertHistory(ctx context.Context, tx *sqlx.Tx, h *domain.OrderStatusHistory) error
}

type OrderItemRepository interface {
	Insert(ctx context.Context, tx *sqlx.Tx, item *domain.OrderItem) error
}

type CouponRepository interface {
	FindByIDTx(ctx context.Context, tx *sqlx.Tx, id string) (*domain.Coupon, error)
	IncrementUsage(ctx context.Context, tx *sqlx.Tx, id string) (bool, error)
	InsertUsage(ctx context.Context, tx *sqlx.Tx, u *domain.CouponUsage) error
}

type ReservationService struct {
	db            database.TxBeginner
	productRepo   ProductRepository
	inventoryRepo InventoryRepository
	orderRepo     OrderRepository
	orderItemRepo OrderItemRepository
	couponRepo    CouponRepository
	logger        *zap.Logger
	txTimeout     time.Duration
}

func NewReservationService(
	db database.TxBeginner,
	productRepo ProductRepository,
	inventoryRepo InventoryRepository,
	orderRepo OrderRepository,
	orderItemRepo OrderItemRepository,
	couponRepo CouponRepository,
	logger *zap.Logger,
	txTimeout time.Duration,
) *ReservationService {
	return &ReservationService{
		db:            db,
		productRepo:   productRepo,
		inventoryRepo: inventoryRepo,
		orderRepo:     orderRepo,
		orderItemRepo: orderItemRepo,
		couponRepo:    couponRepo,
		logger:        logger,
		txTimeout:     txTimeout,
	}
}

// checkedItem is an order line whose product passed the stock check.
type checkedItem struct {
	item    domain.PlaceOrderItem
	product *domain.Product
	tracked bool
}

// PlaceOrder creates the order, its items and status history, reserves stock
// for every tracked product and records coupon usage, all in one
// transaction. Items must already be sorted by product id so that
// concurrent placements lock inventory rows in the same order.
func (s *ReservationService) PlaceOrder(ctx context.Context, cmd domain.PlaceOrder) (*domain.Order, error) {
	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	var order *domain.Order
	err := database.InTx(txCtx, s.db, func(tx *sqlx.Tx) error {
		checked, err := s.checkStock(txCtx, tx, cmd.Items)
		if err != nil {
			return err
		}

		order, err = s.createOrder(txCtx, tx, cmd, checked)
		if err != nil {
			return err
		}

		if err := s.reserveStock(txCtx, tx, order.ID, checked); err != nil {
			return err
		}

		return s.redeemCoupon(txCtx, tx, cmd, order)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("transaction committed",
		zap.String("orderId", order.ID),
		zap.String("orderNumber", order.OrderNumber),
		zap.Int("itemCount", len(order.Items)),
		zap.String("totalAmount", order.TotalAmount.StringFixed(2)),
	)
	return order, nil
}

// checkStock locks the inventory row of every item and collects all items
// that cannot be reserved into a single StockError.
func (s *ReservationService) checkStock(ctx context.Context, tx *sqlx.Tx, items []domain.PlaceOrderItem) ([]checkedItem, error) {
	checked := make([]checkedItem, 0, len(items))
	var failures []apperrors.StockFailure

	for _, item := range items {
		failure := apperrors.StockFailure{ProductID: item.ProductID, Requested: item.Quantity}

		product, err := s.productRepo.FindByIDTx(ctx, tx, item.ProductID)
		if _, ok := apperrors.IsNotFoundError(err); ok {
			failure.Reason = apperrors.ReasonNotFound
			failures = append(failures, failure)
			continue
		}
		if err != nil {
			return nil, err
		}
		if product.IsDeleted {
			failure.Reason = apperrors.ReasonNotFound
			failures = append(failures, failure)
			continue
		}
		if !product.IsActive {
			failure.Reason = apperrors.ReasonProductInactive
			failures = append(failures, failure)
			continue
		}

		inv, err := s.inventoryRepo.FindByProductIDForUpdate(ctx, tx, item.ProductID)
		if _, ok := apperrors.IsNotFoundError(err); ok {
			checked = append(checked, checkedItem{item: item, product: product})
			continue
		}
		if err != nil {
			return nil, err
		}

		if reason, refused := inv.CheckReservation(item.Quantity); refused {
			failure.Reason = reason
			failure.Available = inv.Available()
			failures = append(failures, failure)
			continue
		}
		checked = append(checked, checkedItem{item: item, product: product, tracked: true})
	}

	if len(failures) > 0 {
		for _, f := range failures {
			s.logger.Warn("item reservation failed",
				zap.String("productId", f.ProductID),
				zap.Int("quantity", f.Requested),
				zap.Int("available", f.Available),
				zap.String("reason", string(f.Reason)),
			)
		}
		return nil, apperrors.NewStockError(failures...)
	}
	return checked, nil
}

func (s *ReservationService) createOrder(ctx context.Context, tx *sqlx.Tx, cmd domain.PlaceOrder, checked []checkedItem) (*domain.Order, error) {
	now := time.Now().UTC()
	order := &domain.Order{
		OrderNumber:     domain.NewOrderNumber(now),
		UserID:          cmd.UserID,
		Status:          domain.OrderStatusPending,
		PaymentStatus:   domain.PaymentStatusPending,
		PaymentMethod:   cmd.PaymentMethod,
		ShippingAddress: *cmd.ShippingAddress,
		BillingAddress:  cmd.BillingAddress,
		CustomerName:    optional(cmd.ShippingAddress.Name),
		CustomerEmail:   optional(cmd.ShippingAddress.Email),
		CustomerPhone:   optional(cmd.ShippingAddress.Phone),
		Subtotal:        cmd.Subtotal,
		TaxAmount:       cmd.TaxAmount,
		ShippingAmount:  cmd.ShippingAmount,
		DiscountAmount:  cmd.DiscountAmount,
		TotalAmount:     cmd.Total(),
		CouponID:        cmd.CouponID,
		Notes:           cmd.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.orderRepo.Insert(ctx, tx, order); err != nil {
		return nil, err
	}

	history := &domain.OrderStatusHistory{
		OrderID:   order.ID,
		Status:    domain.OrderStatusPending,
		Notes:     optional("Order placed"),
		ChangedBy: cmd.UserID,
		CreatedAt: now,
	}
	if err := s.orderRepo.InsertHistory(ctx, tx, history); err != nil {
		return nil, err
	}
	order.History = []domain.OrderStatusHistory{*history}

	order.Items = make([]domain.OrderItem, 0, len(checked))
	for _, c := range checked {
		item := &domain.OrderItem{
			OrderID:      order.ID,
			ProductID:    c.item.ProductID,
			ProductName:  c.item.ProductName,
			ProductSKU:   c.item.ProductSKU,
			ProductImage: c.item.ProductImage,
			Quantity:     c.item.Quantity,
			UnitPrice:    c.item.UnitPrice,
			TotalPrice:   c.item.LineTotal(),
		}
		if item.ProductName == "" {
			item.ProductName = c.product.Name
		}
		if item.ProductSKU == nil {
			item.ProductSKU = &c.product.SKU
		}
		if item.ProductImage == nil {
			item.ProductImage = c.product.Image
		}

		if err := s.orderItemRepo.Insert(ctx, tx, item); err != nil {
			return nil, err
		}
		order.Items = append(order.Items, *item)
	}

	return order, nil
}

// reserveStock applies the guarded reservation for every tracked item. The
// guard can only refuse when a concurrent writer slipped past the row lock,
// which SQLite and lock-free isolation levels allow.
func (s *ReservationService) reserveStock(ctx context.Context, tx *sqlx.Tx, orderID string, checked []checkedItem) error {
	for _, c := range checked {
		if !c.tracked {
			continue
		}

		reserved, err := s.inventoryRepo.Reserve(ctx, tx, c.item.ProductID, c.item.Quantity)
		if err != nil {
			return err
		}
		if !reserved {
			return apperrors.NewStockError(apperrors.StockFailure{
				ProductID: c.item.ProductID,
				Requested: c.item.Quantity,
				Reason:    apperrors.ReasonInsufficientAvailable,
			})
		}

		ref := domain.ReferenceOrder
		movement := &domain.InventoryMovement{
			ProductID:      c.item.ProductID,
			MovementType:   domain.MovementReserve,
			QuantityChange: c.item.Quantity,
			ReferenceType:  &ref,
			ReferenceID:    &orderID,
		}
		if err := s.inventoryRepo.InsertMovement(ctx, tx, movement); err != nil {
			return err
		}

		s.logger.Debug("item reserved",
			zap.String("orderId", orderID),
			zap.String("productId", c.item.ProductID),
			zap.Int("quantity", c.item.Quantity),
		)
	}
	return nil
}

func (s *ReservationService) redeemCoupon(ctx context.Context, tx *sqlx.Tx, cmd domain.PlaceOrder, order *domain.Order) error {
	if cmd.CouponID == nil {
		return nil
	}

	coupon, err := s.couponRepo.FindByIDTx(ctx, tx, *cmd.CouponID)
	if _, ok := apperrors.IsNotFoundError(err); ok {
		return couponError("coupon not found")
	}
	if err != nil {
		return err
	}

	if granted := coupon.Discount(cmd.Subtotal); cmd.DiscountAmount.GreaterThan(granted) {
		return apperrors.NewValidationError("discount exceeds coupon value", apperrors.ValidationDetail{
			Field:   "discount_amount",
			Message: fmt.Sprintf("discount_amount %s exceeds the %s granted by the coupon", cmd.DiscountAmount.StringFixed(2), granted.StringFixed(2)),
		})
	}

	if !cmd.RecordsCouponUsage() {
		return nil
	}

	if err := coupon.CheckApplicable(order.CreatedAt, cmd.Subtotal); err != nil {
		return err
	}

	incremented, err := s.couponRepo.IncrementUsage(ctx, tx, coupon.ID)
	if err != nil {
		return err
	}
	if !incremented {
		return couponError("coupon usage limit reached")
	}

	usage := &domain.CouponUsage{
		CouponID:       coupon.ID,
		UserID:         *cmd.UserID,
		OrderID:        order.ID,
		DiscountAmount: cmd.DiscountAmount,
	}
	if err := s.couponRepo.InsertUsage(ctx, tx, usage); err != nil {
		if _, ok := apperrors.IsConflictError(err); ok {
			return couponError("coupon already used")
		}
		return err
	}
	return nil
}

func couponError(msg string) error {
	return apperrors.NewValidationError(msg, apperrors.ValidationDetail{Field: "coupon_id", Message: msg})
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
