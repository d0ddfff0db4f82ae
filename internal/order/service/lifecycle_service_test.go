package service

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storefront/internal/domain"
	apperrors "storefront/internal/errors"
	orderrepo "storefront/internal/order/repository"
	productrepo "storefront/internal/product/repository"
	"storefront/internal/testutil"
)

func newLifecycleService(db *sqlx.DB) *LifecycleService {
	return NewLifecycleService(
		db,
		orderrepo.NewSQLOrderRepository(db),
		orderrepo.NewSQLOrderItemRepository(db),
		productrepo.NewSQLInventoryRepository(db),
		productrepo.NewSQLRepository(db),
		zap.NewNop(),
		10*time.Second,
	)
}

// placedOrder places an order for user-1 of 2 tracked and 1 untracked units.
func placedOrder(t *testing.T, db *sqlx.DB) (order *domain.Order, tracked, untracked string) {
	t.Helper()

	tracked = testutil.InsertProduct(t, db, testutil.ProductFixture{})
	untracked = testutil.InsertProduct(t, db, testutil.ProductFixture{})
	testutil.InsertInventory(t, db, tracked, 10, 0, 1)

	cmd := placeOrderCmd(strPtr("user-1"),
		domain.PlaceOrderItem{ProductID: tracked, Quantity: 2},
		domain.PlaceOrderItem{ProductID: untracked, Quantity: 1},
	)
	order, err := newReservationService(db).PlaceOrder(context.Background(), cmd)
	require.NoError(t, err)
	return order, tracked, untracked
}

func statusPtr(s domain.OrderStatus) *domain.OrderStatus {
	return &s
}

var admin = domain.Actor{UserID: "admin-1", Admin: true}

func TestLifecycleService_ShipAndDeliver(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newLifecycleService(db)
	ctx := context.Background()

	order, tracked, untracked := placedOrder(t, db)

	updated, err := svc.Update(ctx, order.ID, domain.OrderUpdate{
		Status:         statusPtr(domain.OrderStatusShipped),
		TrackingNumber: strPtr("TRK-1"),
		Carrier:        strPtr("DHL"),
	}, admin)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusShipped, updated.Status)
	assert.NotNil(t, updated.ShippedAt)
	assert.Equal(t, "TRK-1", *updated.TrackingNumber)

	qty, reserved := testutil.StockOf(t, db, tracked)
	assert.Equal(t, 8, qty)
	assert.Equal(t, 0, reserved)
	assert.Equal(t, 1, testutil.Count(t, db, "inventory_movements", "product_id = ? AND movement_type = ?", tracked, "ship"))
	assert.Equal(t, 0, testutil.Count(t, db, "inventory_movements", "product_id = ?", untracked))
	assert.Equal(t, 1, testutil.Count(t, db, "products", "id = ? AND sales_count = 2", tracked))
	assert.Equal(t, 1, testutil.Count(t, db, "products", "id = ? AND sales_count = 1", untracked))

	delivered, err := svc.Update(ctx, order.ID, domain.OrderUpdate{Status: statusPtr(domain.OrderStatusDelivered)}, admin)
	require.NoError(t, err)
	assert.NotNil(t, delivered.DeliveredAt)

	assert.Equal(t, 3, testutil.Count(t, db, "order_status_history", "order_id = ?", order.ID))
	assert.Equal(t, 1, testutil.Count(t, db, "order_status_history", "order_id = ? AND status = ? AND previous_status = ? AND changed_by = ?",
		order.ID, "delivered", "shipped", "admin-1"))
}

func TestLifecycleService_CustomerCancelReleasesStock(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newLifecycleService(db)

	order, tracked, _ := placedOrder(t, db)

	updated, err := svc.Update(context.Background(), order.ID, domain.OrderUpdate{
		Status:          statusPtr(domain.OrderStatusCancelled),
		CancelledReason: strPtr("ordered by mistake"),
	}, domain.Actor{UserID: "user-1"})
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, updated.Status)
	assert.NotNil(t, updated.CancelledAt)
	assert.Equal(t, "ordered by mistake", *updated.CancelledReason)

	qty, reserved := testutil.StockOf(t, db, tracked)
	assert.Equal(t, 10, qty)
	assert.Equal(t, 0, reserved)
	assert.Equal(t, 1, testutil.Count(t, db, "inventory_movements", "product_id = ? AND movement_type = ?", tracked, "release"))
	assert.Equal(t, 1, testutil.Count(t, db, "order_status_history", "order_id = ? AND notes = ?", order.ID, "ordered by mistake"))
}

func TestLifecycleService_PaymentOnlyUpdateKeepsHistory(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newLifecycleService(db)

	order, _, _ := placedOrder(t, db)
	paid := domain.PaymentStatusPaid

	updated, err := svc.Update(context.Background(), order.ID, domain.OrderUpdate{PaymentStatus: &paid}, admin)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPaid, updated.PaymentStatus)
	assert.Equal(t, domain.OrderStatusPending, updated.Status)
	assert.Equal(t, 1, testutil.Count(t, db, "order_status_history", "order_id = ?", order.ID))
}

func TestLifecycleService_Refusals(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T, svc *LifecycleService, orderID string)
		update  domain.OrderUpdate
		actor   domain.Actor
		checkFn func(t *testing.T, err error)
	}{
		{
			name:   "other customer",
			update: domain.OrderUpdate{Status: statusPtr(domain.OrderStatusCancelled)},
			actor:  domain.Actor{UserID: "user-2"},
			checkFn: func(t *testing.T, err error) {
				_, ok := apperrors.IsForbiddenError(err)
				assert.True(t, ok)
			},
		},
		{
			name:   "customer changing status",
			update: domain.OrderUpdate{Status: statusPtr(domain.OrderStatusConfirmed)},
			actor:  domain.Actor{UserID: "user-1"},
			checkFn: func(t *testing.T, err error) {
				_, ok := apperrors.IsForbiddenError(err)
				assert.True(t, ok)
			},
		},
		{
			name: "customer cancelling confirmed order",
			setup: func(t *testing.T, svc *LifecycleService, orderID string) {
				_, err := svc.Update(context.Background(), orderID, domain.OrderUpdate{Status: statusPtr(domain.OrderStatusConfirmed)}, admin)
				require.NoError(t, err)
			},
			update: domain.OrderUpdate{Status: statusPtr(domain.OrderStatusCancelled)},
			actor:  domain.Actor{UserID: "user-1"},
			checkFn: func(t *testing.T, err error) {
				_, ok := apperrors.IsValidationError(err)
				assert.True(t, ok)
			},
		},
		{
			name:   "disallowed transition",
			update: domain.OrderUpdate{Status: statusPtr(domain.OrderStatusDelivered)},
			actor:  admin,
			checkFn: func(t *testing.T, err error) {
				_, ok := apperrors.IsConflictError(err)
				assert.True(t, ok)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testutil.SetupTestDB(t)
			svc := newLifecycleService(db)
			order, tracked, _ := placedOrder(t, db)
			if tt.setup != nil {
				tt.setup(t, svc, order.ID)
			}

			_, err := svc.Update(context.Background(), order.ID, tt.update, tt.actor)
			require.Error(t, err)
			tt.checkFn(t, err)

			_, reserved := testutil.StockOf(t, db, tracked)
			assert.Equal(t, 2, reserved)
		})
	}
}

func TestLifecycleService_UnknownOrder(t *testing.T) {
	db := testutil.SetupTestDB(t)

	_, err := newLifecycleService(db).Update(context.Background(), "missing", domain.OrderUpdate{}, admin)
	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)
}
