package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
)

type SQLAnalyticsRepository struct {
	db *sqlx.DB
}

func NewSQLAnalyticsRepository(db *sqlx.DB) *SQLAnalyticsRepository {
	return &SQLAnalyticsRepository{db: db}
}

// OrdersBetween returns the orders created in [from, to).
func (r *SQLAnalyticsRepository) OrdersBetween(ctx context.Context, from, to time.Time) ([]domain.OrderSnapshot, error) {
	var orders []domain.OrderSnapshot
	err := r.db.SelectContext(ctx, &orders, r.db.Rebind(`
		SELECT user_id, status, payment_status, payment_method, total_amount, created_at, delivered_at
		FROM orders
		WHERE created_at >= ? AND created_at < ?`), from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("querying orders for analytics: %w", err)
	}
	return orders, nil
}

// ItemSalesBetween returns the items of orders created in [from, to) that
// were not cancelled.
func (r *SQLAnalyticsRepository) ItemSalesBetween(ctx context.Context, from, to time.Time) ([]domain.ItemSale, error) {
	var items []domain.ItemSale
	err := r.db.SelectContext(ctx, &items, r.db.Rebind(`
		SELECT i.product_id, i.product_name, i.product_image, i.quantity, i.total_price
		FROM order_items i
		JOIN orders o ON o.id = i.order_id
		WHERE o.created_at >= ? AND o.created_at < ? AND o.status <> ?`),
		from.UTC(), to.UTC(), domain.OrderStatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("querying item sales for analytics: %w", err)
	}
	return items, nil
}

// TopProducts returns the best selling active products of all time.
func (r *SQLAnalyticsRepository) TopProducts(ctx context.Context, limit int) ([]domain.ProductStat, error) {
	var products []domain.ProductStat
	err := r.db.SelectContext(ctx, &products, r.db.Rebind(`
		SELECT id, name, sales_count, rating, reviews_count
		FROM products
		WHERE is_active = ? AND is_deleted = ?
		ORDER BY sales_count DESC, name ASC
		LIMIT ?`), true, false, limit)
	if err != nil {
		return nil, fmt.Errorf("querying top products: %w", err)
	}
	return products, nil
}
