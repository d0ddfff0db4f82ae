package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
	apperrors "storefront/internal/errors"
	"storefront/internal/infrastructure/database"
	"storefront/internal/testutil"
)

func strPtr(s string) *string {
	return &s
}

func newOrder(userID *string, number string, createdAt time.Time) *domain.Order {
	return &domain.Order{
		OrderNumber:     number,
		UserID:          userID,
		Status:          domain.OrderStatusPending,
		PaymentStatus:   domain.PaymentStatusPending,
		PaymentMethod:   domain.PaymentCOD,
		ShippingAddress: domain.Address{Name: "Ada Lovelace", Email: "ada@example.com", City: "London"},
		CustomerName:    strPtr("Ada Lovelace"),
		CustomerEmail:   strPtr("ada@example.com"),
		Subtotal:        decimal.NewFromInt(20),
		TaxAmount:       decimal.NewFromInt(2),
		ShippingAmount:  decimal.NewFromInt(5),
		DiscountAmount:  decimal.Zero,
		TotalAmount:     decimal.NewFromInt(27),
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}
}

func insertOrder(t *testing.T, db *sqlx.DB, order *domain.Order, items ...*domain.OrderItem) {
	t.Helper()

	orders := NewSQLOrderRepository(db)
	orderItems := NewSQLOrderItemRepository(db)
	err := database.InTx(context.Background(), db, func(tx *sqlx.Tx) error {
		if err := orders.Insert(context.Background(), tx, order); err != nil {
			return err
		}
		for _, item := range items {
			item.OrderID = order.ID
			if err := orderItems.Insert(context.Background(), tx, item); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
}

func TestOrderRepository_InsertAndFind(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewSQLOrderRepository(db)

	productID := testutil.InsertProduct(t, db, testutil.ProductFixture{Name: "Mug"})
	billing := domain.Address{Name: "Billing Dept"}
	order := newOrder(strPtr("user-1"), "ORD-20240101-AAAA0001", time.Now().UTC())
	order.BillingAddress = &billing

	insertOrder(t, db, order, &domain.OrderItem{
		ProductID:   productID,
		ProductName: "Mug",
		Quantity:    2,
		UnitPrice:   decimal.NewFromInt(10),
		TotalPrice:  decimal.NewFromInt(20),
	})

	found, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, "ORD-20240101-AAAA0001", found.OrderNumber)
	assert.Equal(t, domain.OrderStatusPending, found.Status)
	assert.Equal(t, "London", found.ShippingAddress.City)
	require.NotNil(t, found.BillingAddress)
	assert.Equal(t, "Billing Dept", found.BillingAddress.Name)
	assert.True(t, found.TotalAmount.Equal(decimal.NewFromInt(27)))
	assert.True(t, found.OwnedBy("user-1"))

	items, err := NewSQLOrderItemRepository(db).FindByOrderID(context.Background(), order.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	assert.True(t, items[0].TotalPrice.Equal(decimal.NewFromInt(20)))
}

func TestOrderRepository_FindByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)

	_, err := NewSQLOrderRepository(db).FindByID(context.Background(), "missing")
	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)
}

func TestOrderRepository_Insert_DuplicateNumber(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewSQLOrderRepository(db)

	insertOrder(t, db, newOrder(nil, "ORD-DUP", time.Now().UTC()))

	err := database.InTx(context.Background(), db, func(tx *sqlx.Tx) error {
		return repo.Insert(context.Background(), tx, newOrder(nil, "ORD-DUP", time.Now().UTC()))
	})
	_, ok := apperrors.IsConflictError(err)
	assert.True(t, ok)
}

func TestOrderRepository_UpdateAndHistory(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewSQLOrderRepository(db)
	ctx := context.Background()

	order := newOrder(nil, "ORD-UPD", time.Now().UTC())
	insertOrder(t, db, order)

	err := database.InTx(ctx, db, func(tx *sqlx.Tx) error {
		locked, err := repo.FindByIDForUpdate(ctx, tx, order.ID)
		if err != nil {
			return err
		}
		previous := locked.Status
		now := time.Now().UTC()
		locked.Status = domain.OrderStatusCancelled
		locked.CancelledAt = &now
		locked.CancelledReason = strPtr("changed my mind")
		if err := repo.Update(ctx, tx, locked); err != nil {
			return err
		}
		return repo.InsertHistory(ctx, tx, &domain.OrderStatusHistory{
			OrderID:        locked.ID,
			Status:         locked.Status,
			PreviousStatus: &previous,
		})
	})
	require.NoError(t, err)

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, found.Status)
	assert.NotNil(t, found.CancelledAt)
	assert.Equal(t, "changed my mind", *found.CancelledReason)

	history, err := repo.FindHistory(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.NotNil(t, history[0].PreviousStatus)
	assert.Equal(t, domain.OrderStatusPending, *history[0].PreviousStatus)
}

func TestOrderRepository_List(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewSQLOrderRepository(db)
	ctx := context.Background()

	mug := testutil.InsertProduct(t, db, testutil.ProductFixture{Name: "Mug"})
	day := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	first := newOrder(strPtr("user-1"), "ORD-A", day)
	insertOrder(t, db, first, &domain.OrderItem{ProductID: mug, ProductName: "Mug", Quantity: 1, UnitPrice: decimal.NewFromInt(20), TotalPrice: decimal.NewFromInt(20)})

	second := newOrder(strPtr("user-1"), "ORD-B", day.Add(time.Hour))
	second.Status = domain.OrderStatusShipped
	insertOrder(t, db, second)

	other := newOrder(strPtr("user-2"), "ORD-C", day.AddDate(0, 0, 1))
	other.CustomerName = strPtr("Grace Hopper")
	insertOrder(t, db, other)

	tests := []struct {
		name      string
		filter    domain.OrderFilter
		wantTotal int
		wantFirst string
	}{
		{name: "all newest first", filter: domain.OrderFilter{}, wantTotal: 3, wantFirst: "ORD-C"},
		{name: "by user", filter: domain.OrderFilter{UserID: "user-1"}, wantTotal: 2, wantFirst: "ORD-B"},
		{name: "by status", filter: domain.OrderFilter{Status: "shipped"}, wantTotal: 1, wantFirst: "ORD-B"},
		{name: "by customer name", filter: domain.OrderFilter{Search: "grace"}, wantTotal: 1, wantFirst: "ORD-C"},
		{name: "by order number", filter: domain.OrderFilter{Search: "ord-a"}, wantTotal: 1, wantFirst: "ORD-A"},
		{name: "by product", filter: domain.OrderFilter{ProductID: mug}, wantTotal: 1, wantFirst: "ORD-A"},
		{name: "by day", filter: domain.OrderFilter{From: timePtr(day.Truncate(24 * time.Hour)), To: timePtr(day.Truncate(24 * time.Hour).AddDate(0, 0, 1))}, wantTotal: 2, wantFirst: "ORD-B"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.filter.Page, tt.filter.Limit = 1, 10
			orders, total, err := repo.List(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTotal, total)
			require.NotEmpty(t, orders)
			assert.Equal(t, tt.wantFirst, orders[0].OrderNumber)
		})
	}

	for _, wildcard := range []string{"_", "%"} {
		orders, total, err := repo.List(ctx, domain.OrderFilter{Search: wildcard, Page: 1, Limit: 10})
		require.NoError(t, err)
		assert.Zero(t, total, "search %q matched literally", wildcard)
		assert.Empty(t, orders)
	}

	orders, total, err := repo.List(ctx, domain.OrderFilter{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, orders, 1)
	assert.Equal(t, "ORD-A", orders[0].OrderNumber)

	items, err := NewSQLOrderItemRepository(db).FindByOrderIDs(ctx, []string{first.ID, second.ID})
	require.NoError(t, err)
	assert.Len(t, items[first.ID], 1)
	assert.Empty(t, items[second.ID])
}

func timePtr(t time.Time) *time.Time {
	return &t
}
