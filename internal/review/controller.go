package review

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"storefront/internal/auth"
	"storefront/internal/domain"
	"storefront/internal/httpx"
)

const (
	defaultPageSize = 10
	maxPageSize     = 50
)

type Controller struct {
	useCase UseCase
	limiter *RateLimiter
	logger  *zap.Logger
}

func NewController(useCase UseCase, limiter *RateLimiter, logger *zap.Logger) *Controller {
	return &Controller{
		useCase: useCase,
		limiter: limiter,
		logger:  logger,
	}
}

// RateLimit guards review creation.
func (c *Controller) RateLimit(next http.Handler) http.Handler {
	return c.limiter.Middleware(next)
}

func (c *Controller) HandleListReviews(w http.ResponseWriter, r *http.Request) {
	page, limit := httpx.PageParams(r, defaultPageSize, maxPageSize)
	filter := domain.ReviewFilter{
		ProductID: r.URL.Query().Get("product_id"),
		Status:    httpx.QueryFilter(r, "status"),
		Page:      page,
		Limit:     limit,
	}

	a := actor(r)
	resp, err := c.useCase.ListReviews(r.Context(), filter, a)
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	if a.Admin {
		httpx.NoStore(w)
	} else {
		httpx.PublicCache(w, 600)
	}
	httpx.WriteJSON(w, c.logger, http.StatusOK, resp)
}

func (c *Controller) HandleCreateReview(w http.ResponseWriter, r *http.Request) {
	logger := c.logger.With(zap.String("traceId", httpx.TraceID(r.Context())))

	var req CreateReviewRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, r, logger, err)
		return
	}

	resp, err := c.useCase.CreateReview(r.Context(), req, actor(r))
	if err != nil {
		httpx.WriteError(w, r, logger, err)
		return
	}

	logger.Info("review submitted",
		zap.String("reviewId", resp.ID),
		zap.String("productId", resp.ProductID),
		zap.Bool("verifiedPurchase", resp.IsVerifiedPurchase),
	)
	httpx.WriteJSON(w, logger, http.StatusCreated, resp)
}

func (c *Controller) HandleUpdateReview(w http.ResponseWriter, r *http.Request) {
	var req UpdateReviewRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	resp, err := c.useCase.UpdateReview(r.Context(), chi.URLParam(r, "id"), req, actor(r))
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	httpx.NoStore(w)
	httpx.WriteJSON(w, c.logger, http.StatusOK, resp)
}

func (c *Controller) HandleDeleteReview(w http.ResponseWriter, r *http.Request) {
	logger := c.logger.With(zap.String("traceId", httpx.TraceID(r.Context())))
	id := chi.URLParam(r, "id")

	if err := c.useCase.DeleteReview(r.Context(), id, actor(r)); err != nil {
		httpx.WriteError(w, r, logger, err)
		return
	}

	logger.Info("review deleted", zap.String("reviewId", id))
	httpx.WriteJSON(w, logger, http.StatusOK, map[string]bool{"success": true})
}

func (c *Controller) HandleVote(w http.ResponseWriter, r *http.Request) {
	var req VoteRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	resp, err := c.useCase.Vote(r.Context(), chi.URLParam(r, "id"), req, actor(r))
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
