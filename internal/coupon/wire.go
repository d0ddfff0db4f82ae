package coupon

import (
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"storefront/internal/coupon/repository"
)

func NewModule(db *sqlx.DB, logger *zap.Logger) *Controller {
	repo := repository.NewSQLCouponRepository(db)
	return NewController(NewUseCase(repo), logger)
}
