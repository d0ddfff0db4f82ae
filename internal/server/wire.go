package server

import (
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"storefront/internal/analytics"
	"storefront/internal/cart"
	"storefront/internal/config"
	"storefront/internal/coupon"
	"storefront/internal/order"
	"storefront/internal/product"
	"storefront/internal/returns"
	"storefront/internal/review"
)

func NewControllers(db *sqlx.DB, cfg *config.Config, logger *zap.Logger) Controllers {
	return Controllers{
		Products:  product.NewModule(db, logger),
		Orders:    order.NewModule(db, cfg, logger),
		Coupons:   coupon.NewModule(db, logger),
		Returns:   returns.NewModule(db, logger),
		Reviews:   review.NewModule(db, cfg.Review, logger),
		Carts:     cart.NewModule(db, cfg.Cart, logger),
		Analytics: analytics.NewModule(db, logger),
	}
}
