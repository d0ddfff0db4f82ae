package controller

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"storefront/internal/auth"
	"storefront/internal/domain"
	"storefront/internal/dto"
	"storefront/internal/httpx"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

type PlaceOrderUseCase interface {
	PlaceOrder(ctx context.Context, cmd domain.PlaceOrder) (*domain.Order, error)
}

type OrderUseCase interface {
	ListOrders(ctx context.Context, filter domain.OrderFilter, actor domain.Actor) ([]domain.Order, int, error)
	GetOrder(ctx context.Context, id string, actor domain.Actor) (*domain.Order, error)
	UpdateOrder(ctx context.Context, id string, upd domain.OrderUpdate, actor domain.Actor) (*domain.Order, error)
	WriteInvoice(ctx context.Context, w io.Writer, id string, actor domain.Actor) error
}

type OrderController struct {
	placeOrder PlaceOrderUseCase
	orders     OrderUseCase
	logger     *zap.Logger
}

func NewOrderController(placeOrder PlaceOrderUseCase, orders OrderUseCase, logger *zap.Logger) *OrderController {
	return &OrderController{
		placeOrder: placeOrder,
		orders:     orders,
		logger:     logger,
	}
}

// HandlePlaceOrder serves checkout for both signed-in customers and guests.
func (c *OrderController) HandlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	traceID := httpx.TraceID(r.Context())
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.PlaceOrderRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		logger.Warn("invalid place order request", zap.Error(err))
		httpx.WriteError(w, r, logger, err)
		return
	}

	var userID *string
	if p, ok := auth.FromContext(r.Context()); ok {
		userID = &p.UserID
	}

	order, err := c.placeOrder.PlaceOrder(r.Context(), req.ToCommand(userID))
	if err != nil {
		httpx.WriteError(w, r, logger, err)
		return
	}

	logger.Info("order placed",
		zap.String("orderId", order.ID),
		zap.String("orderNumber", order.OrderNumber),
		zap.String("totalAmount", order.TotalAmount.StringFixed(2)),
	)

	httpx.NoStore(w)
	httpx.WriteJSON(w, logger, http.StatusCreated, dto.PlaceOrderResponse{
		TraceID:   traceID,
		Success:   true,
		Order:     dto.NewOrderDTO(*order),
		Timestamp: time.Now().UTC(),
	})
}

func (c *OrderController) HandleListOrders(w http.ResponseWriter, r *http.Request) {
	from, to, err := httpx.DateRange(r)
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}
	page, limit := httpx.PageParams(r, defaultPageSize, maxPageSize)

	q := r.URL.Query()
	filter := domain.OrderFilter{
		Status:        httpx.QueryFilter(r, "status"),
		PaymentStatus: httpx.QueryFilter(r, "payment_status"),
		Search:        strings.TrimSpace(q.Get("search")),
		ProductID:     q.Get("product_id"),
		From:          from,
		To:            to,
		Page:          page,
		Limit:         limit,
	}

	orders, total, err := c.orders.ListOrders(r.Context(), filter, actor(r))
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	httpx.PrivateCache(w, 120, 300)
	httpx.WriteJSON(w, c.logger, http.StatusOK, dto.ListOrdersResponse{
		Orders:     dto.NewOrderDTOs(orders),
		Pagination: httpx.NewPagination(page, limit, total),
	})
}

func (c *OrderController) HandleGetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := c.orders.GetOrder(r.Context(), chi.URLParam(r, "id"), actor(r))
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	httpx.PrivateCache(w, 60, 120)
	httpx.WriteJSON(w, c.logger, http.StatusOK, dto.NewOrderDTO(*order))
}

func (c *OrderController) HandleUpdateOrder(w http.ResponseWriter, r *http.Request) {
	logger := c.logger.With(zap.String("traceId", httpx.TraceID(r.Context())))

	var req dto.UpdateOrderRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, r, logger, err)
		return
	}

	order, err := c.orders.UpdateOrder(r.Context(), chi.URLParam(r, "id"), req.ToUpdate(), actor(r))
	if err != nil {
		httpx.WriteError(w, r, logger, err)
		return
	}

	logger.Info("order update applied", zap.String("orderId", order.ID), zap.String("status", string(order.Status)))
	httpx.NoStore(w)
	httpx.WriteJSON(w, logger, http.StatusOK, dto.NewOrderDTO(*order))
}

func (c *OrderController) HandleInvoice(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := c.orders.WriteInvoice(r.Context(), &buf, chi.URLParam(r, "id"), actor(r)); err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	httpx.NoStore(w)
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		c.logger.Error("failed to write invoice", zap.Error(err))
	}
}

func actor(r *http.Request) domain.Actor {
	p, ok := auth.FromContext(r.Context())
	if !ok {
		return domain.Actor{}
	}
	return domain.Actor{UserID: p.UserID, Admin: p.IsAdmin()}
}
