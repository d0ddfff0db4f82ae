package repository

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
	apperrors "storefront/internal/errors"
	"storefront/internal/infrastructure/database"
	"storefront/internal/testutil"
)

func insertReview(t *testing.T, db *sqlx.DB, repo *SQLReviewRepository, r *domain.Review) {
	t.Helper()
	err := database.InTx(context.Background(), db, func(tx *sqlx.Tx) error {
		return repo.Insert(context.Background(), tx, r)
	})
	require.NoError(t, err)
}

func TestSQLReviewRepository_InsertAndFind(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewSQLReviewRepository(db)
	ctx := context.Background()

	productID := testutil.InsertProduct(t, db, testutil.ProductFixture{})
	title := "Solid"
	r := &domain.Review{ProductID: productID, UserID: "user-1", Rating: 4, Title: &title, ModerationStatus: domain.ModerationPending}
	insertReview(t, db, repo, r)

	found, err := repo.FindByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, found.Rating)
	assert.Equal(t, "Solid", *found.Title)
	assert.Nil(t, found.Comment)
	assert.Equal(t, domain.ModerationPending, found.ModerationStatus)

	_, err = repo.FindByID(ctx, "missing")
	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)

	err = database.InTx(ctx, db, func(tx *sqlx.Tx) error {
		return repo.Insert(ctx, tx, &domain.Review{ProductID: productID, UserID: "user-1", Rating: 2, ModerationStatus: domain.ModerationPending})
	})
	_, ok = apperrors.IsConflictError(err)
	assert.True(t, ok)
}

func TestSQLReviewRepository_ListAndSummary(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewSQLReviewRepository(db)
	ctx := context.Background()

	productID := testutil.InsertProduct(t, db, testutil.ProductFixture{})
	otherProduct := testutil.InsertProduct(t, db, testutil.ProductFixture{})

	reviews := []*domain.Review{
		{ProductID: productID, UserID: "u1", Rating: 5, ModerationStatus: domain.ModerationApproved},
		{ProductID: productID, UserID: "u2", Rating: 2, ModerationStatus: domain.ModerationApproved, HelpfulCount: 3},
		{ProductID: productID, UserID: "u3", Rating: 4, ModerationStatus: domain.ModerationApproved},
		{ProductID: productID, UserID: "u4", Rating: 1, ModerationStatus: domain.ModerationRejected},
		{ProductID: otherProduct, UserID: "u1", Rating: 3, ModerationStatus: domain.ModerationApproved},
	}
	for _, r := range reviews {
		insertReview(t, db, repo, r)
	}

	found, total, err := repo.List(ctx, domain.ReviewFilter{ProductID: productID, Status: "approved", Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, found, 2)
	assert.Equal(t, reviews[1].ID, found[0].ID, "most helpful first")

	_, total, err = repo.List(ctx, domain.ReviewFilter{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 5, total)

	err = database.InTx(ctx, db, func(tx *sqlx.Tx) error {
		rating, count, err := repo.RatingSummary(ctx, tx, productID)
		require.NoError(t, err)
		assert.Equal(t, "3.67", rating.StringFixed(2))
		assert.Equal(t, 3, count)

		rating, count, err = repo.RatingSummary(ctx, tx, "no-reviews")
		require.NoError(t, err)
		assert.True(t, rating.IsZero())
		assert.Zero(t, count)
		return nil
	})
	require.NoError(t, err)
}

func TestSQLReviewRepository_PurchaseStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewSQLReviewRepository(db)
	ctx := context.Background()

	productID := testutil.InsertProduct(t, db, testutil.ProductFixture{})
	orderID, _ := testutil.InsertOrder(t, db, testutil.OrderFixture{
		UserID: "user-1",
		Status: "shipped",
		Items:  []testutil.OrderItemFixture{{ProductID: productID, Quantity: 1, Price: "10.00"}},
	})

	err := database.InTx(ctx, db, func(tx *sqlx.Tx) error {
		status, ok, err := repo.PurchaseStatus(ctx, tx, orderID, "user-1", productID)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, domain.OrderStatusShipped, status)

		_, ok, err = repo.PurchaseStatus(ctx, tx, orderID, "user-2", productID)
		require.NoError(t, err)
		assert.False(t, ok)
		return nil
	})
	require.NoError(t, err)
}
