package product

import (
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"storefront/internal/product/repository"
)

func NewModule(db *sqlx.DB, logger *zap.Logger) *Controller {
	repo := repository.NewSQLRepository(db)
	inventoryRepo := repository.NewSQLInventoryRepository(db)
	svc := NewService(db, repo, inventoryRepo)
	uc := NewUseCase(svc)
	return NewController(uc, logger)
}
