package coupon

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"storefront/internal/auth"
	apperrors "storefront/internal/errors"
	"storefront/internal/httpx"
)

type Controller struct {
	useCase UseCase
	logger  *zap.Logger
}

func NewController(useCase UseCase, logger *zap.Logger) *Controller {
	return &Controller{
		useCase: useCase,
		logger:  logger,
	}
}

func (c *Controller) HandleValidate(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.FromContext(r.Context())
	if !ok {
		httpx.WriteError(w, r, c.logger, apperrors.NewUnauthorizedError("authentication required"))
		return
	}

	var req ValidateCouponRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	resp, err := c.useCase.Validate(r.Context(), req, p.UserID)
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	httpx.NoStore(w)
	httpx.WriteJSON(w, c.logger, http.StatusOK, resp)
}

func (c *Controller) HandleListCoupons(w http.ResponseWriter, r *http.Request) {
	resp, err := c.useCase.ListCoupons(r.Context())
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	httpx.NoStore(w)
	httpx.WriteJSON(w, c.logger, http.StatusOK, resp)
}

func (c *Controller) HandleCreateCoupon(w http.ResponseWriter, r *http.Request) {
	var req CreateCouponRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	resp, err := c.useCase.CreateCoupon(r.Context(), req)
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	c.logger.Info("coupon created", zap.String("couponId", resp.ID), zap.String("code", resp.Code))
	httpx.WriteJSON(w, c.logger, http.StatusCreated, resp)
}

func (c *Controller) HandleUpdateCoupon(w http.ResponseWriter, r *http.Request) {
	var req UpdateCouponRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	resp, err := c.useCase.UpdateCoupon(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	httpx.WriteJSON(w, c.logger, http.StatusOK, resp)
}

func (c *Controller) HandleDeleteCoupon(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := c.useCase.DeleteCoupon(r.Context(), id); err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	c.logger.Info("coupon deleted", zap.String("traceId", httpx.TraceID(r.Context())), zap.String("couponId", id))
	httpx.WriteJSON(w, c.logger, http.StatusOK, map[string]bool{"success": true})
}
