package testutil

import (
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"storefront/internal/config"
	"storefront/internal/infrastructure/database"
)

// SetupTestDB returns a migrated in-memory SQLite database that is closed
// when the test ends.
func SetupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := database.Open(config.DatabaseConfig{Driver: database.DriverSQLite, DSN: ":memory:"})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.MigrateUp(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// SetupIntegrationDB opens the database named by the DSN in envVar and runs
// migrations. The test is skipped when the variable is unset or the server
// is unreachable.
func SetupIntegrationDB(t *testing.T, driver, envVar string) *sqlx.DB {
	t.Helper()

	dsn := os.Getenv(envVar)
	if dsn == "" {
		t.Skipf("%s not set", envVar)
	}
	cfg := config.DatabaseConfig{Driver: driver, DSN: dsn, MaxOpenConns: 10, MaxIdleConns: 5}

	if err := database.Migrate(cfg); err != nil {
		t.Skipf("test database not available: %v", err)
	}

	db, err := database.Open(cfg)
	if err != nil {
		t.Skipf("test database not available: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

type ProductFixture struct {
	SKU      string
	Name     string
	Price    string
	Category string
	Inactive bool
	Deleted  bool
}

// InsertProduct inserts a product row and returns its id.
func InsertProduct(t *testing.T, db *sqlx.DB, p ProductFixture) string {
	t.Helper()

	id := uuid.NewString()
	if p.SKU == "" {
		p.SKU = "SKU-" + id[:8]
	}
	if p.Name == "" {
		p.Name = "Product " + id[:8]
	}
	if p.Price == "" {
		p.Price = "10.00"
	}
	var category *string
	if p.Category != "" {
		category = &p.Category
	}
	now := time.Now().UTC()

	_, err := db.Exec(db.Rebind(`
		INSERT INTO products (id, sku, name, category, price, is_active, is_deleted, sales_count, rating, reviews_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0, 0, 0, ?, ?)`),
		id, p.SKU, p.Name, category, decimal.RequireFromString(p.Price), !p.Inactive, p.Deleted, now, now,
	)
	if err != nil {
		t.Fatalf("failed to insert product: %v", err)
	}
	return id
}

// InsertInventory creates the stock row of a product.
func InsertInventory(t *testing.T, db *sqlx.DB, productID string, quantity, reserved, threshold int) {
	t.Helper()

	_, err := db.Exec(db.Rebind(`
		INSERT INTO inventory (id, product_id, quantity, reserved_quantity, low_stock_threshold, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`),
		uuid.NewString(), productID, quantity, reserved, threshold, time.Now().UTC(),
	)
	if err != nil {
		t.Fatalf("failed to insert inventory: %v", err)
	}
}

// StockOf returns quantity and reserved_quantity of a product.
func StockOf(t *testing.T, db *sqlx.DB, productID string) (quantity, reserved int) {
	t.Helper()

	err := db.QueryRow(db.Rebind(`SELECT quantity, reserved_quantity FROM inventory WHERE product_id = ?`), productID).
		Scan(&quantity, &reserved)
	if err != nil {
		t.Fatalf("failed to read inventory: %v", err)
	}
	return quantity, reserved
}

type CouponFixture struct {
	Code          string
	DiscountType  string
	DiscountValue string
	UsageLimit    *int
	Inactive      bool
}

// InsertCoupon inserts a coupon row and returns its id.
func InsertCoupon(t *testing.T, db *sqlx.DB, c CouponFixture) string {
	t.Helper()

	id := uuid.NewString()
	if c.DiscountType == "" {
		c.DiscountType = "fixed"
	}
	if c.DiscountValue == "" {
		c.DiscountValue = "5.00"
	}
	now := time.Now().UTC()

	_, err := db.Exec(db.Rebind(`
		INSERT INTO coupons (id, code, discount_type, discount_value, usage_limit, used_count, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 0, ?, ?, ?)`),
		id, c.Code, c.DiscountType, decimal.RequireFromString(c.DiscountValue), c.UsageLimit, !c.Inactive, now, now,
	)
	if err != nil {
		t.Fatalf("failed to insert coupon: %v", err)
	}
	return id
}

// Count returns the number of rows of table matching where.
func Count(t *testing.T, db *sqlx.DB, table, where string, args ...any) int {
	t.Helper()

	query := "SELECT COUNT(*) FROM " + table
	if where != "" {
		query += " WHERE " + where
	}
	var n int
	if err := db.Get(&n, db.Rebind(query), args...); err != nil {
		t.Fatalf("failed to count %s: %v", table, err)
	}
	return n
}

type OrderItemFixture struct {
	ProductID string
	Quantity  int
	Price     string
}

type OrderFixture struct {
	UserID        string
	Status        string
	PaymentStatus string
	Total         string
	CreatedAt     time.Time
	Items         []OrderItemFixture
}

// InsertOrder inserts an order with its items and returns the order id and
// the item ids in fixture order.
func InsertOrder(t *testing.T, db *sqlx.DB, o OrderFixture) (string, []string) {
	t.Helper()

	id := uuid.NewString()
	if o.Status == "" {
		o.Status = "pending"
	}
	if o.PaymentStatus == "" {
		o.PaymentStatus = "pending"
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	var userID *string
	if o.UserID != "" {
		userID = &o.UserID
	}

	subtotal := decimal.Zero
	for _, item := range o.Items {
		subtotal = subtotal.Add(decimal.RequireFromString(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	total := subtotal
	if o.Total != "" {
		total = decimal.RequireFromString(o.Total)
	}

	_, err := db.Exec(db.Rebind(`
		INSERT INTO orders (id, order_number, user_id, status, payment_status, payment_method, shipping_address,
		                    subtotal, tax_amount, shipping_amount, discount_amount, total_amount, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 'cod', '{}', ?, 0, 0, 0, ?, ?, ?)`),
		id, "ORD-"+id[:8], userID, o.Status, o.PaymentStatus, subtotal, total, o.CreatedAt, o.CreatedAt,
	)
	if err != nil {
		t.Fatalf("failed to insert order: %v", err)
	}

	itemIDs := make([]string, len(o.Items))
	for i, item := range o.Items {
		itemIDs[i] = uuid.NewString()
		price := decimal.RequireFromString(item.Price)
		_, err := db.Exec(db.Rebind(`
			INSERT INTO order_items (id, order_id, product_id, product_name, quantity, unit_price, total_price, discount_amount)
			VALUES (?, ?, ?, 'item', ?, ?, ?, 0)`),
			itemIDs[i], id, item.ProductID, item.Quantity, price, price.Mul(decimal.NewFromInt(int64(item.Quantity))),
		)
		if err != nil {
			t.Fatalf("failed to insert order item: %v", err)
		}
	}
	return id, itemIDs
}
