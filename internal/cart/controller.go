package cart

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"storefront/internal/auth"
	"storefront/internal/domain"
	apperrors "storefront/internal/errors"
	"storefront/internal/httpx"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
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

func (c *Controller) UseCase() UseCase {
	return c.useCase
}

func (c *Controller) HandleCapture(w http.ResponseWriter, r *http.Request) {
	logger := c.logger.With(zap.String("traceId", httpx.TraceID(r.Context())))

	var req CaptureCartRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, r, logger, err)
		return
	}

	var actor domain.Actor
	var email string
	if p, ok := auth.FromContext(r.Context()); ok {
		actor = domain.Actor{UserID: p.UserID, Admin: p.IsAdmin()}
		email = p.Email
	}

	resp, err := c.useCase.Capture(r.Context(), req, actor, email)
	if err != nil {
		httpx.WriteError(w, r, logger, err)
		return
	}

	logger.Info("abandoned cart captured",
		zap.String("cartId", resp.CartID),
		zap.Int("itemCount", len(req.Cart.Items)),
	)
	httpx.NoStore(w)
	httpx.WriteJSON(w, logger, http.StatusOK, resp)
}

func (c *Controller) HandleRecover(w http.ResponseWriter, r *http.Request) {
	var req RecoverCartRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	if err := c.useCase.Recover(r.Context(), req); err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	httpx.NoStore(w)
	httpx.WriteJSON(w, c.logger, http.StatusOK, map[string]bool{"success": true})
}

func (c *Controller) HandleListAbandoned(w http.ResponseWriter, r *http.Request) {
	page, limit := httpx.PageParams(r, defaultPageSize, maxPageSize)

	recovered, err := httpx.QueryBool(r, "recovered")
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}
	minAge, err := minAgeParam(r)
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	resp, err := c.useCase.ListAbandoned(r.Context(), ListFilter{
		Recovered: recovered,
		MinAge:    minAge,
		Page:      page,
		Limit:     limit,
	})
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	httpx.PrivateCache(w, 60, 120)
	httpx.WriteJSON(w, c.logger, http.StatusOK, resp)
}

func (c *Controller) HandleSendEmail(w http.ResponseWriter, r *http.Request) {
	logger := c.logger.With(zap.String("traceId", httpx.TraceID(r.Context())))
	id := chi.URLParam(r, "id")

	resp, err := c.useCase.SendRecoveryEmail(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, r, logger, err)
		return
	}

	logger.Info("cart recovery email sent", zap.String("cartId", id), zap.Int("attempts", resp.Attempts))
	httpx.NoStore(w)
	httpx.WriteJSON(w, logger, http.StatusOK, resp)
}

func minAgeParam(r *http.Request) (*time.Duration, error) {
	raw := r.URL.Query().Get("min_age_hours")
	if raw == "" {
		return nil, nil
	}
	hours, err := strconv.Atoi(raw)
	if err != nil || hours < 0 {
		return nil, apperrors.NewValidationError("invalid min_age_hours", apperrors.ValidationDetail{
			Field:   "min_age_hours",
			Message: "min_age_hours must be a non-negative integer",
		})
	}
	d := time.Duration(hours) * time.Hour
	return &d, nil
}
