package analytics

import (
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"storefront/internal/analytics/repository"
	productrepo "storefront/internal/product/repository"
)

func NewModule(db *sqlx.DB, logger *zap.Logger) *Controller {
	uc := NewUseCase(repository.NewSQLAnalyticsRepository(db), productrepo.NewSQLInventoryRepository(db), logger)
	return NewController(uc, logger)
}
