package cart

import (
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"storefront/internal/cart/repository"
	"storefront/internal/config"
)

func NewModule(db *sqlx.DB, cfg config.CartConfig, logger *zap.Logger) *Controller {
	uc := NewUseCase(repository.NewSQLCartRepository(db), NewLogNotifier(logger), cfg, logger)
	return NewController(uc, logger)
}
