package review

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storefront/internal/auth"
	"storefront/internal/domain"
	apperrors "storefront/internal/errors"
)

type mockService struct {
	Service
	listFunc   func(ctx context.Context, filter domain.ReviewFilter) ([]domain.Review, int, error)
	createFunc func(ctx context.Context, review *domain.Review) error
	updateFunc func(ctx context.Context, id string, upd ReviewUpdate, actor domain.Actor) (*domain.Review, error)
	voteFunc   func(ctx context.Context, id, userID string, helpful bool) (int, error)
}

func (m *mockService) List(ctx context.Context, filter domain.ReviewFilter) ([]domain.Review, int, error) {
	return m.listFunc(ctx, filter)
}

func (m *mockService) Create(ctx context.Context, review *domain.Review) error {
	return m.createFunc(ctx, review)
}

func (m *mockService) Update(ctx context.Context, id string, upd ReviewUpdate, actor domain.Actor) (*domain.Review, error) {
	return m.updateFunc(ctx, id, upd, actor)
}

func (m *mockService) Vote(ctx context.Context, id, userID string, helpful bool) (int, error) {
	return m.voteFunc(ctx, id, userID, helpful)
}

func TestCreateReview_SanitizesText(t *testing.T) {
	var got *domain.Review
	uc := NewUseCase(&mockService{createFunc: func(ctx context.Context, review *domain.Review) error {
		got = review
		review.ID = "rv1"
		return nil
	}})

	req := CreateReviewRequest{
		ProductID: "p1",
		Rating:    5,
		Title:     ptr(`<b>Great</b> mug <script>alert(1)</script>`),
		Comment:   ptr(`<img src=x onerror=alert(1)>`),
	}
	resp, err := uc.CreateReview(context.Background(), req, author)
	require.NoError(t, err)

	assert.Equal(t, "rv1", resp.ID)
	assert.Equal(t, "user-1", got.UserID)
	require.NotNil(t, got.Title)
	assert.Equal(t, "Great mug", *got.Title)
	assert.Nil(t, got.Comment, "comment with only markup is dropped")

	_, err = uc.CreateReview(context.Background(), req, domain.Actor{})
	_, ok := apperrors.IsUnauthorizedError(err)
	assert.True(t, ok)
}

func TestListReviews_Visibility(t *testing.T) {
	tests := []struct {
		name       string
		actor      domain.Actor
		status     string
		wantStatus string
		wantErr    bool
	}{
		{name: "public", status: "pending", wantStatus: "approved"},
		{name: "customer", actor: author, status: "rejected", wantStatus: "approved"},
		{name: "admin filters", actor: admin, status: "pending", wantStatus: "pending"},
		{name: "admin unfiltered", actor: admin, wantStatus: ""},
		{name: "admin invalid", actor: admin, status: "hidden", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got domain.ReviewFilter
			uc := NewUseCase(&mockService{listFunc: func(ctx context.Context, filter domain.ReviewFilter) ([]domain.Review, int, error) {
				got = filter
				return nil, 0, nil
			}})

			resp, err := uc.ListReviews(context.Background(), domain.ReviewFilter{Status: tt.status, Page: 1, Limit: 10}, tt.actor)
			if tt.wantErr {
				_, ok := apperrors.IsValidationError(err)
				assert.True(t, ok)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.NotNil(t, resp.Reviews)
		})
	}
}

func TestUpdateReview_RequiresChanges(t *testing.T) {
	uc := NewUseCase(&mockService{})
	_, err := uc.UpdateReview(context.Background(), "rv1", UpdateReviewRequest{}, author)
	_, ok := apperrors.IsValidationError(err)
	assert.True(t, ok)
}

func newTestRouter(svc Service) http.Handler {
	c := NewController(NewUseCase(svc), NewRateLimiter(1, time.Hour, zap.NewNop()), zap.NewNop())

	withPrincipal := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id := r.Header.Get("X-Test-User"); id != "" {
				role := auth.RoleCustomer
				if r.Header.Get("X-Test-Admin") != "" {
					role = auth.RoleAdmin
				}
				r = r.WithContext(auth.WithPrincipal(r.Context(), &auth.Principal{UserID: id, Role: role}))
			}
			next.ServeHTTP(w, r)
		})
	}

	r := chi.NewRouter()
	r.Use(withPrincipal)
	r.Get("/api/reviews", c.HandleListReviews)
	r.With(c.RateLimit).Post("/api/reviews", c.HandleCreateReview)
	r.Put("/api/reviews/{id}", c.HandleUpdateReview)
	r.Post("/api/reviews/{id}/helpful", c.HandleVote)
	return r
}

func TestHandleListReviews_CachesPublicResponses(t *testing.T) {
	svc := &mockService{listFunc: func(ctx context.Context, filter domain.ReviewFilter) ([]domain.Review, int, error) {
		return []domain.Review{{ID: "rv1", ModerationStatus: domain.ModerationApproved}}, 1, nil
	}}
	router := newTestRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reviews?product_id=p1", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Cache-Control"), "public")

	var body ListReviewsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Reviews, 1)
	assert.Equal(t, "rv1", body.Reviews[0].ID)

	req := httptest.NewRequest(http.MethodGet, "/api/reviews?status=pending", nil)
	req.Header.Set("X-Test-User", "admin-1")
	req.Header.Set("X-Test-Admin", "1")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Contains(t, rec.Header().Get("Cache-Control"), "no-store")
}

func TestHandleCreateReview(t *testing.T) {
	svc := &mockService{createFunc: func(ctx context.Context, review *domain.Review) error {
		if review.ProductID == "dup" {
			return apperrors.NewConflictError("you have already reviewed this product")
		}
		review.ID = "rv1"
		return nil
	}}

	tests := []struct {
		name string
		user string
		body string
		want int
	}{
		{name: "created", user: "user-1", body: `{"product_id":"p1","rating":5}`, want: http.StatusCreated},
		{name: "rate limited", user: "user-1", body: `{"product_id":"p1","rating":5}`, want: http.StatusTooManyRequests},
		{name: "rating out of range", user: "user-2", body: `{"product_id":"p1","rating":6}`, want: http.StatusBadRequest},
		{name: "duplicate", user: "user-3", body: `{"product_id":"dup","rating":4}`, want: http.StatusConflict},
		{name: "anonymous", body: `{"product_id":"p1","rating":5}`, want: http.StatusUnauthorized},
	}

	router := newTestRouter(svc)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/reviews", strings.NewReader(tt.body))
			if tt.user != "" {
				req.Header.Set("X-Test-User", tt.user)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestHandleVote(t *testing.T) {
	var gotHelpful bool
	svc := &mockService{voteFunc: func(ctx context.Context, id, userID string, helpful bool) (int, error) {
		gotHelpful = helpful
		return 3, nil
	}}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/reviews/rv1/helpful", strings.NewReader(`{"is_helpful":false}`))
	req.Header.Set("X-Test-User", "user-2")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"helpful_count":3}`, rec.Body.String())
	assert.False(t, gotHelpful)

	req = httptest.NewRequest(http.MethodPost, "/api/reviews/rv1/helpful", strings.NewReader(`{}`))
	req.Header.Set("X-Test-User", "user-2")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
