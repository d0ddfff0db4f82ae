package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/infrastructure/database"
	"storefront/internal/testutil"
)

func TestMigrateUp_SQLite(t *testing.T) {
	db := testutil.SetupTestDB(t)

	for _, table := range []string{
		"products", "inventory", "inventory_movements", "orders", "order_items",
		"order_status_history", "coupons", "coupon_usage", "returns",
		"product_reviews", "review_helpful_votes", "abandoned_carts",
	} {
		assert.Equal(t, 0, testutil.Count(t, db, table, ""), table)
	}

	// running again is a no-op
	require.NoError(t, database.MigrateUp(db))
}

func TestIsUniqueViolation_SQLite(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.InsertProduct(t, db, testutil.ProductFixture{SKU: "DUP-1"})

	now := time.Now().UTC()
	_, err := db.Exec(`INSERT INTO products (id, sku, name, price, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), "DUP-1", "Other", "1.00", now, now)

	require.Error(t, err)
	assert.True(t, database.IsUniqueViolation(err))
	assert.False(t, database.IsRetryable(err))
}

func TestInTx_RollsBackOnError(t *testing.T) {
	db := testutil.SetupTestDB(t)
	productID := testutil.InsertProduct(t, db, testutil.ProductFixture{})

	err := database.InTx(context.Background(), db, func(tx *sqlx.Tx) error {
		if _, err := tx.Exec(`UPDATE products SET name = 'changed' WHERE id = ?`, productID); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	assert.Equal(t, 0, testutil.Count(t, db, "products", "name = ?", "changed"))
}

func TestInTx_Commits(t *testing.T) {
	db := testutil.SetupTestDB(t)
	productID := testutil.InsertProduct(t, db, testutil.ProductFixture{})

	err := database.InTx(context.Background(), db, func(tx *sqlx.Tx) error {
		_, err := tx.Exec(`UPDATE products SET name = 'changed' WHERE id = ?`, productID)
		return err
	})
	require.NoError(t, err)

	assert.Equal(t, 1, testutil.Count(t, db, "products", "name = ?", "changed"))
}
