package order

import (
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"storefront/internal/config"
	couponrepo "storefront/internal/coupon/repository"
	"storefront/internal/order/controller"
	orderrepo "storefront/internal/order/repository"
	"storefront/internal/order/service"
	"storefront/internal/order/usecase"
	productrepo "storefront/internal/product/repository"
)

func NewModule(db *sqlx.DB, cfg *config.Config, logger *zap.Logger) *controller.OrderController {
	orderRepo := orderrepo.NewSQLOrderRepository(db)
	orderItemRepo := orderrepo.NewSQLOrderItemRepository(db)
	productRepo := productrepo.NewSQLRepository(db)
	inventoryRepo := productrepo.NewSQLInventoryRepository(db)
	couponRepo := couponrepo.NewSQLCouponRepository(db)

	reservationSvc := service.NewReservationService(
		db,
		productRepo,
		inventoryRepo,
		orderRepo,
		orderItemRepo,
		couponRepo,
		logger,
		cfg.Order.ReservationTxTimeout,
	)

	lifecycleSvc := service.NewLifecycleService(
		db,
		orderRepo,
		orderItemRepo,
		inventoryRepo,
		productRepo,
		logger,
		cfg.Order.ReservationTxTimeout,
	)

	return controller.NewOrderController(
		usecase.NewPlaceOrderUseCase(reservationSvc, logger, cfg.Order.MaxRetryAttempts),
		usecase.NewOrderUseCase(orderRepo, orderItemRepo, lifecycleSvc, logger, cfg.Order.MaxRetryAttempts),
		logger,
	)
}
