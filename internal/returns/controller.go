package returns

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"storefront/internal/auth"
	"storefront/internal/domain"
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

func (c *Controller) HandleCreateReturn(w http.ResponseWriter, r *http.Request) {
	logger := c.logger.With(zap.String("traceId", httpx.TraceID(r.Context())))

	var req CreateReturnRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, r, logger, err)
		return
	}

	resp, err := c.useCase.CreateReturn(r.Context(), req, actor(r))
	if err != nil {
		httpx.WriteError(w, r, logger, err)
		return
	}

	logger.Info("return requested",
		zap.String("returnId", resp.ID),
		zap.String("orderId", resp.OrderID),
		zap.String("refundAmount", resp.RefundAmount.StringFixed(2)),
	)
	httpx.WriteJSON(w, logger, http.StatusCreated, resp)
}

func (c *Controller) HandleListReturns(w http.ResponseWriter, r *http.Request) {
	page, limit := httpx.PageParams(r, defaultPageSize, maxPageSize)
	q := r.URL.Query()
	filter := domain.ReturnFilter{
		Status:  httpx.QueryFilter(r, "status"),
		OrderID: q.Get("order_id"),
		Search:  strings.TrimSpace(q.Get("search")),
		Page:    page,
		Limit:   limit,
	}

	resp, err := c.useCase.ListReturns(r.Context(), filter, actor(r))
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	httpx.PrivateCache(w, 60, 120)
	httpx.WriteJSON(w, c.logger, http.StatusOK, resp)
}

func (c *Controller) HandleGetReturn(w http.ResponseWriter, r *http.Request) {
	resp, err := c.useCase.GetReturn(r.Context(), chi.URLParam(r, "id"), actor(r))
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	httpx.PrivateCache(w, 60, 120)
	httpx.WriteJSON(w, c.logger, http.StatusOK, resp)
}

func (c *Controller) HandleUpdateReturn(w http.ResponseWriter, r *http.Request) {
	var req UpdateReturnRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	resp, err := c.useCase.UpdateReturn(r.Context(), chi.URLParam(r, "id"), req, actor(r))
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	httpx.NoStore(w)
	httpx.WriteJSON(w, c.logger, http.StatusOK, resp)
}

func actor(r *http.Request) domain.Actor {
	p, ok := auth.FromContext(r.Context())
	if !ok {
		return domain.Actor{}
	}
	return domain.Actor{UserID: p.UserID, Admin: p.IsAdmin()}
}
