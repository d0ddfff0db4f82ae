package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"storefront/internal/analytics"
	"storefront/internal/auth"
	"storefront/internal/cart"
	"storefront/internal/coupon"
	"storefront/internal/httpx"
	ordercontroller "storefront/internal/order/controller"
	"storefront/internal/product"
	"storefront/internal/returns"
	"storefront/internal/review"
)

type Pinger interface {
	PingContext(ctx context.Context) error
}

// Controllers groups the HTTP handlers of every module.
type Controllers struct {
	Products  *product.Controller
	Orders    *ordercontroller.OrderController
	Coupons   *coupon.Controller
	Returns   *returns.Controller
	Reviews   *review.Controller
	Carts     *cart.Controller
	Analytics *analytics.Controller
}

func NewRouter(c Controllers, authMW *auth.Middleware, db Pinger, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httpx.Trace)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(authMW.Authenticate)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handleHealth(db, logger))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", c.Products.HandleListProducts)
			r.Post("/search", c.Products.HandleSearchProducts)
			r.Get("/{id}", c.Products.HandleGetProduct)

			r.Group(func(r chi.Router) {
				r.Use(authMW.RequireAdmin)
				r.Post("/", c.Products.HandleCreateProduct)
				r.Put("/{id}", c.Products.HandleUpdateProduct)
				r.Delete("/{id}", c.Products.HandleDeleteProduct)
				r.Get("/inventory", c.Products.HandleListInventory)
				r.Post("/inventory", c.Products.HandleRestock)
				r.Get("/inventory/movements", c.Products.HandleListMovements)
			})
		})

		r.Route("/orders", func(r chi.Router) {
			// guests may check out
			r.Post("/", c.Orders.HandlePlaceOrder)

			r.Group(func(r chi.Router) {
				r.Use(authMW.RequireUser)
				r.Get("/", c.Orders.HandleListOrders)
				r.Get("/{id}", c.Orders.HandleGetOrder)
				r.Put("/{id}", c.Orders.HandleUpdateOrder)
				r.Get("/{id}/invoice", c.Orders.HandleInvoice)
			})
		})

		r.Route("/coupons", func(r chi.Router) {
			r.With(authMW.RequireUser).Post("/validate", c.Coupons.HandleValidate)

			r.Group(func(r chi.Router) {
				r.Use(authMW.RequireAdmin)
				r.Get("/", c.Coupons.HandleListCoupons)
				r.Post("/", c.Coupons.HandleCreateCoupon)
				r.Put("/{id}", c.Coupons.HandleUpdateCoupon)
				r.Delete("/{id}", c.Coupons.HandleDeleteCoupon)
			})
		})

		r.Route("/returns", func(r chi.Router) {
			r.Use(authMW.RequireUser)
			r.Post("/", c.Returns.HandleCreateReturn)
			r.Get("/", c.Returns.HandleListReturns)
			r.Get("/{id}", c.Returns.HandleGetReturn)
			r.Put("/{id}", c.Returns.HandleUpdateReturn)
		})

		r.Route("/reviews", func(r chi.Router) {
			r.Get("/", c.Reviews.HandleListReviews)

			r.Group(func(r chi.Router) {
				r.Use(authMW.RequireUser)
				r.With(c.Reviews.RateLimit).Post("/", c.Reviews.HandleCreateReview)
				r.Put("/{id}", c.Reviews.HandleUpdateReview)
				r.Delete("/{id}", c.Reviews.HandleDeleteReview)
				r.Post("/{id}/helpful", c.Reviews.HandleVote)
			})
		})

		r.Post("/cart/abandoned", c.Carts.HandleCapture)
		r.Post("/cart/abandoned/recover", c.Carts.HandleRecover)

		r.Route("/admin", func(r chi.Router) {
			r.Use(authMW.RequireAdmin)
			r.Get("/abandoned-carts", c.Carts.HandleListAbandoned)
			r.Post("/abandoned-carts/{id}/send-email", c.Carts.HandleSendEmail)
			r.Get("/analytics", c.Analytics.HandleDashboard)
		})
	})

	return r
}

type healthResponse struct {
	Status    string    `json:"status"`
	Database  string    `json:"database"`
	Timestamp time.Time `json:"timestamp"`
}

func handleHealth(db Pinger, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{Status: "ok", Database: "up", Timestamp: time.Now().UTC()}
		status := http.StatusOK
		if err := db.PingContext(ctx); err != nil {
			logger.Error("database ping failed", zap.Error(err))
			resp.Status, resp.Database = "degraded", "down"
			status = http.StatusServiceUnavailable
		}

		httpx.NoStore(w)
		httpx.WriteJSON(w, logger, status, resp)
	}
}
