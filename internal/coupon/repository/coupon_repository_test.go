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

func TestCouponRepository_InsertNormalizesCode(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewSQLCouponRepository(db)
	ctx := context.Background()

	until := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Second)
	c := &domain.Coupon{
		Code:              "  spring10 ",
		DiscountType:      domain.DiscountPercentage,
		DiscountValue:     decimal.NewFromInt(10),
		MaxDiscountAmount: decimal.NewNullDecimal(decimal.NewFromInt(15)),
		ValidUntil:        &until,
		IsActive:          true,
	}
	require.NoError(t, repo.Insert(ctx, c))
	assert.Equal(t, "SPRING10", c.Code)

	found, err := repo.FindByCode(ctx, "spring10")
	require.NoError(t, err)
	assert.Equal(t, c.ID, found.ID)
	assert.False(t, found.MinPurchaseAmount.Valid)
	require.True(t, found.MaxDiscountAmount.Valid)
	assert.True(t, found.MaxDiscountAmount.Decimal.Equal(decimal.NewFromInt(15)))
	require.NotNil(t, found.ValidUntil)
	assert.True(t, found.ValidUntil.Equal(until))

	err = repo.Insert(ctx, &domain.Coupon{Code: "Spring10", DiscountType: domain.DiscountFixed, DiscountValue: decimal.NewFromInt(1)})
	_, ok := apperrors.IsConflictError(err)
	assert.True(t, ok)
}

func TestCouponRepository_FindByCode_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)

	_, err := NewSQLCouponRepository(db).FindByCode(context.Background(), "NOPE")
	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)
}

func TestCouponRepository_UpdateAndList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewSQLCouponRepository(db)
	ctx := context.Background()

	id := testutil.InsertCoupon(t, db, testutil.CouponFixture{Code: "OLD"})
	c, err := repo.FindByID(ctx, id)
	require.NoError(t, err)

	c.Code = "new"
	c.IsActive = false
	require.NoError(t, repo.Update(ctx, c))

	coupons, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, coupons, 1)
	assert.Equal(t, "NEW", coupons[0].Code)
	assert.False(t, coupons[0].IsActive)

	err = repo.Update(ctx, &domain.Coupon{ID: "missing", Code: "X"})
	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)
}

func TestCouponRepository_UsageLimitAndDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewSQLCouponRepository(db)
	ctx := context.Background()

	limit := 1
	id := testutil.InsertCoupon(t, db, testutil.CouponFixture{Code: "ONCE", UsageLimit: &limit})
	unused := testutil.InsertCoupon(t, db, testutil.CouponFixture{Code: "UNUSED"})

	orderID := insertOrderRow(t, db)

	err := database.InTx(ctx, db, func(tx *sqlx.Tx) error {
		ok, err := repo.IncrementUsage(ctx, tx, id)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = repo.IncrementUsage(ctx, tx, id)
		require.NoError(t, err)
		assert.False(t, ok, "limit of one must refuse the second use")

		return repo.InsertUsage(ctx, tx, &domain.CouponUsage{CouponID: id, UserID: "user-1", OrderID: orderID, DiscountAmount: decimal.NewFromInt(5)})
	})
	require.NoError(t, err)

	used, err := repo.HasUsage(ctx, id, "user-1")
	require.NoError(t, err)
	assert.True(t, used)
	used, err = repo.HasUsage(ctx, id, "user-2")
	require.NoError(t, err)
	assert.False(t, used)

	err = database.InTx(ctx, db, func(tx *sqlx.Tx) error {
		return repo.InsertUsage(ctx, tx, &domain.CouponUsage{CouponID: id, UserID: "user-1", OrderID: orderID, DiscountAmount: decimal.NewFromInt(5)})
	})
	_, ok := apperrors.IsConflictError(err)
	assert.True(t, ok)

	err = repo.Delete(ctx, id)
	_, ok = apperrors.IsConflictError(err)
	assert.True(t, ok, "used coupons cannot be deleted")

	require.NoError(t, repo.Delete(ctx, unused))
	err = repo.Delete(ctx, unused)
	_, ok = apperrors.IsNotFoundError(err)
	assert.True(t, ok)
}

// insertOrderRow creates a minimal order for usage rows to reference.
func insertOrderRow(t *testing.T, db *sqlx.DB) string {
	t.Helper()

	id := "order-" + time.Now().Format("150405.000000000")
	now := time.Now().UTC()
	_, err := db.Exec(db.Rebind(`
		INSERT INTO orders (id, order_number, status, payment_status, payment_method, shipping_address, subtotal, total_amount, created_at, updated_at)
		VALUES (?, ?, 'pending', 'pending', 'cod', '{}', 0, 0, ?, ?)`), id, "ORD-"+id, now, now)
	require.NoError(t, err)
	return id
}
