package returns

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

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
	createFunc func(ctx context.Context, ret *domain.Return, actor domain.Actor) error
	getFunc    func(ctx context.Context, id string) (*domain.Return, error)
	listFunc   func(ctx context.Context, filter domain.ReturnFilter) ([]domain.Return, int, error)
}

func (m *mockService) Create(ctx context.Context, ret *domain.Return, actor domain.Actor) error {
	return m.createFunc(ctx, ret, actor)
}

func (m *mockService) Get(ctx context.Context, id string) (*domain.Return, error) {
	return m.getFunc(ctx, id)
}

func (m *mockService) List(ctx context.Context, filter domain.ReturnFilter) ([]domain.Return, int, error) {
	return m.listFunc(ctx, filter)
}

func TestCreateReturn_DefaultsAndExchangeRule(t *testing.T) {
	var got *domain.Return
	uc := NewUseCase(&mockService{createFunc: func(ctx context.Context, ret *domain.Return, actor domain.Actor) error {
		got = ret
		ret.ID = "r1"
		return nil
	}})

	resp, err := uc.CreateReturn(context.Background(), CreateReturnRequest{OrderID: "o1", Reason: "  broken  "}, customer)
	require.NoError(t, err)
	assert.Equal(t, "r1", resp.ID)
	assert.Equal(t, domain.ReturnTypeRefund, got.ReturnType)
	assert.Equal(t, "broken", got.Reason)

	_, err = uc.CreateReturn(context.Background(), CreateReturnRequest{OrderID: "o1", Reason: "swap", ReturnType: "exchange"}, customer)
	_, ok := apperrors.IsValidationError(err)
	assert.True(t, ok)
}

func TestGetReturn_HidesOtherCustomersReturns(t *testing.T) {
	uc := NewUseCase(&mockService{getFunc: func(ctx context.Context, id string) (*domain.Return, error) {
		return &domain.Return{ID: id, UserID: "user-1"}, nil
	}})

	_, err := uc.GetReturn(context.Background(), "r1", customer)
	require.NoError(t, err)

	_, err = uc.GetReturn(context.Background(), "r1", admin)
	require.NoError(t, err)

	_, err = uc.GetReturn(context.Background(), "r1", domain.Actor{UserID: "user-2"})
	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)
}

func TestHandleListReturns_ScopesCustomers(t *testing.T) {
	var got domain.ReturnFilter
	svc := &mockService{listFunc: func(ctx context.Context, filter domain.ReturnFilter) ([]domain.Return, int, error) {
		got = filter
		return []domain.Return{{ID: "r1"}}, 1, nil
	}}
	c := NewController(NewUseCase(svc), zap.NewNop())

	r := chi.NewRouter()
	r.Get("/api/returns", c.HandleListReturns)
	r.Post("/api/returns", c.HandleCreateReturn)

	req := httptest.NewRequest(http.MethodGet, "/api/returns?user_id=user-2&status=pending&order_id=o1", nil)
	req = req.WithContext(auth.WithPrincipal(req.Context(), &auth.Principal{UserID: "user-1", Role: auth.RoleCustomer}))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, "pending", got.Status)
	assert.Equal(t, "o1", got.OrderID)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/returns", strings.NewReader(`{"order_id":"o1","reason":"x","return_type":"gift"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
