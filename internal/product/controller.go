package product

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/internal/auth"
	"storefront/internal/domain"
	apperrors "storefront/internal/errors"
	"storefront/internal/httpx"
)

const (
	defaultPageSize    = 20
	maxPageSize        = 100
	maxMovementsListed = 200
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

func (c *Controller) HandleSearchProducts(w http.ResponseWriter, r *http.Request) {
	var req SearchProductsRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	resp, err := c.useCase.SearchProducts(r.Context(), req)
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	httpx.WriteJSON(w, c.logger, http.StatusOK, resp)
}

func (c *Controller) HandleListProducts(w http.ResponseWriter, r *http.Request) {
	filter, err := parseProductFilter(r)
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	resp, err := c.useCase.ListProducts(r.Context(), filter)
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	httpx.PublicCache(w, 300)
	httpx.WriteJSON(w, c.logger, http.StatusOK, resp)
}

func (c *Controller) HandleGetProduct(w http.ResponseWriter, r *http.Request) {
	admin := isAdmin(r)
	resp, err := c.useCase.GetProduct(r.Context(), chi.URLParam(r, "id"), admin)
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	if admin {
		httpx.NoStore(w)
	} else {
		httpx.PublicCache(w, 300)
	}
	httpx.WriteJSON(w, c.logger, http.StatusOK, resp)
}

func (c *Controller) HandleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	resp, err := c.useCase.CreateProduct(r.Context(), req, actorID(r))
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	c.logger.Info("product created",
		zap.String("traceId", httpx.TraceID(r.Context())),
		zap.String("productId", resp.ID),
		zap.String("sku", resp.SKU),
	)
	httpx.WriteJSON(w, c.logger, http.StatusCreated, resp)
}

func (c *Controller) HandleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req UpdateProductRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	resp, err := c.useCase.UpdateProduct(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	httpx.WriteJSON(w, c.logger, http.StatusOK, resp)
}

func (c *Controller) HandleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := c.useCase.DeleteProduct(r.Context(), id); err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	c.logger.Info("product deleted", zap.String("traceId", httpx.TraceID(r.Context())), zap.String("productId", id))
	httpx.WriteJSON(w, c.logger, http.StatusOK, map[string]bool{"success": true})
}

func (c *Controller) HandleListInventory(w http.ResponseWriter, r *http.Request) {
	lowStock, err := httpx.QueryBool(r, "low_stock")
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	filter := domain.InventoryFilter{ProductID: r.URL.Query().Get("product_id")}
	if lowStock != nil {
		filter.LowStock = *lowStock
	}

	resp, err := c.useCase.ListInventory(r.Context(), filter)
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	httpx.NoStore(w)
	httpx.WriteJSON(w, c.logger, http.StatusOK, resp)
}

func (c *Controller) HandleRestock(w http.ResponseWriter, r *http.Request) {
	var req RestockRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	resp, err := c.useCase.Restock(r.Context(), req, actorID(r))
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	c.logger.Info("product restocked",
		zap.String("traceId", httpx.TraceID(r.Context())),
		zap.String("productId", req.ProductID),
		zap.Int("quantity", req.Quantity),
		zap.Int("available", resp.AvailableQuantity),
	)
	httpx.WriteJSON(w, c.logger, http.StatusOK, resp)
}

func (c *Controller) HandleListMovements(w http.ResponseWriter, r *http.Request) {
	_, limit := httpx.PageParams(r, 50, maxMovementsListed)

	resp, err := c.useCase.ListMovements(r.Context(), r.URL.Query().Get("product_id"), limit)
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	httpx.NoStore(w)
	httpx.WriteJSON(w, c.logger, http.StatusOK, resp)
}

func parseProductFilter(r *http.Request) (domain.ProductFilter, error) {
	q := r.URL.Query()
	page, limit := httpx.PageParams(r, defaultPageSize, maxPageSize)

	filter := domain.ProductFilter{
		Category: httpx.QueryFilter(r, "category"),
		Search:   strings.TrimSpace(q.Get("search")),
		Sort:     domain.ProductSort(q.Get("sort")),
		Page:     page,
		Limit:    limit,
	}

	for _, bound := range []struct {
		name string
		dst  **decimal.Decimal
	}{
		{"min_price", &filter.MinPrice},
		{"max_price", &filter.MaxPrice},
	} {
		raw := q.Get(bound.name)
		if raw == "" {
			continue
		}
		v, err := decimal.NewFromString(raw)
		if err != nil || v.IsNegative() {
			return filter, apperrors.NewValidationError("invalid "+bound.name, apperrors.ValidationDetail{
				Field:   bound.name,
				Message: bound.name + " must be a non-negative number",
			})
		}
		*bound.dst = &v
	}

	return filter, nil
}

func actorID(r *http.Request) string {
	if p, ok := auth.FromContext(r.Context()); ok {
		return p.UserID
	}
	return ""
}

func isAdmin(r *http.Request) bool {
	p, ok := auth.FromContext(r.Context())
	return ok && p.IsAdmin()
}
