package returns

import (
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	orderrepo "storefront/internal/order/repository"
	productrepo "storefront/internal/product/repository"
	"storefront/internal/returns/repository"
)

func NewModule(db *sqlx.DB, logger *zap.Logger) *Controller {
	svc := NewService(
		db,
		repository.NewSQLReturnRepository(db),
		orderrepo.NewSQLOrderRepository(db),
		orderrepo.NewSQLOrderItemRepository(db),
		productrepo.NewSQLInventoryRepository(db),
		logger,
	)
	return NewController(NewUseCase(svc), logger)
}
