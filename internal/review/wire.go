package review

import (
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"storefront/internal/config"
	productrepo "storefront/internal/product/repository"
	"storefront/internal/review/repository"
)

func NewModule(db *sqlx.DB, cfg config.ReviewConfig, logger *zap.Logger) *Controller {
	svc := NewService(
		db,
		repository.NewSQLReviewRepository(db),
		productrepo.NewSQLRepository(db),
		logger,
	)
	return NewController(NewUseCase(svc), NewRateLimiter(cfg.RateLimit, cfg.RateWindow, logger), logger)
}
