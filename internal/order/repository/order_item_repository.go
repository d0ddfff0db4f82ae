package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
	apperrors "storefront/internal/errors"
)

const orderItemColumns = `id, order_id, product_id, product_name, product_sku, product_image, quantity,
	unit_price, total_price, discount_amount`

type SQLOrderItemRepository struct {
	db *sqlx.DB
}

func NewSQLOrderItemRepository(db *sqlx.DB) *SQLOrderItemRepository {
	return &SQLOrderItemRepository{db: db}
}

func (r *SQLOrderItemRepository) Insert(ctx context.Context, tx *sqlx.Tx, item *domain.OrderItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}

	_, err := tx.NamedExecContext(ctx, `
		INSERT INTO order_items (id, order_id, product_id, product_name, product_sku, product_image, quantity,
		                         unit_price, total_price, discount_amount)
		VALUES (:id, :order_id, :product_id, :product_name, :product_sku, :product_image, :quantity,
		        :unit_price, :total_price, :discount_amount)`, item)
	if err != nil {
		return fmt.Errorf("inserting order item: %w", err)
	}
	return nil
}

func (r *SQLOrderItemRepository) FindByOrderID(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	return findItems(ctx, r.db, orderID)
}

func (r *SQLOrderItemRepository) FindByOrderIDTx(ctx context.Context, tx *sqlx.Tx, orderID string) ([]domain.OrderItem, error) {
	return findItems(ctx, tx, orderID)
}

// FindByOrderIDs returns the items of several orders keyed by order id.
func (r *SQLOrderItemRepository) FindByOrderIDs(ctx context.Context, orderIDs []string) (map[string][]domain.OrderItem, error) {
	result := make(map[string][]domain.OrderItem, len(orderIDs))
	if len(orderIDs) == 0 {
		return result, nil
	}

	query, args, err := sqlx.In(`SELECT `+orderItemColumns+` FROM order_items WHERE order_id IN (?) ORDER BY product_id`, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("building order items query: %w", err)
	}

	var items []domain.OrderItem
	if err := r.db.SelectContext(ctx, &items, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("querying order items: %w", err)
	}
	for _, item := range items {
		result[item.OrderID] = append(result[item.OrderID], item)
	}
	return result, nil
}

func (r *SQLOrderItemRepository) FindByID(ctx context.Context, id string) (*domain.OrderItem, error) {
	var item domain.OrderItem
	err := r.db.GetContext(ctx, &item, r.db.Rebind(`SELECT `+orderItemColumns+` FROM order_items WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("order item with id %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying order item by id: %w", err)
	}
	return &item, nil
}

func findItems(ctx context.Context, q sqlx.ExtContext, orderID string) ([]domain.OrderItem, error) {
	var items []domain.OrderItem
	err := sqlx.SelectContext(ctx, q, &items, q.Rebind(`SELECT `+orderItemColumns+` FROM order_items WHERE order_id = ? ORDER BY product_id`), orderID)
	if err != nil {
		return nil, fmt.Errorf("querying order items: %w", err)
	}
	return items, nil
}
