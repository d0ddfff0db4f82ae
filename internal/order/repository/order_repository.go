package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
	apperrors "storefront/internal/errors"
	"storefront/internal/infrastructure/database"
)

const orderColumns = `id, order_number, user_id, status, payment_status, payment_method, shipping_address,
	billing_address, customer_name, customer_email, customer_phone, subtotal, tax_amount, shipping_amount,
	discount_amount, total_amount, coupon_id, notes, tracking_number, carrier, cancelled_reason,
	shipped_at, delivered_at, cancelled_at, created_at, updated_at`

type SQLOrderRepository struct {
	db *sqlx.DB
}

func NewSQLOrderRepository(db *sqlx.DB) *SQLOrderRepository {
	return &SQLOrderRepository{db: db}
}

func (r *SQLOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	return findOrder(ctx, r.db, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id)
}

// FindByIDForUpdate reads and locks an order row until tx ends.
func (r *SQLOrderRepository) FindByIDForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*domain.Order, error) {
	return findOrder(ctx, tx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`+database.ForUpdate(tx.DriverName()), id)
}

func findOrder(ctx context.Context, q sqlx.ExtContext, query, id string) (*domain.Order, error) {
	var order domain.Order
	err := sqlx.GetContext(ctx, q, &order, q.Rebind(query), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("order with id %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying order by id: %w", err)
	}
	return &order, nil
}

func (r *SQLOrderRepository) Insert(ctx context.Context, tx *sqlx.Tx, order *domain.Order) error {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}

	_, err := tx.NamedExecContext(ctx, `
		INSERT INTO orders (id, order_number, user_id, status, payment_status, payment_method, shipping_address,
		                    billing_address, customer_name, customer_email, customer_phone, subtotal, tax_amount,
		                    shipping_amount, discount_amount, total_amount, coupon_id, notes, created_at, updated_at)
		VALUES (:id, :order_number, :user_id, :status, :payment_status, :payment_method, :shipping_address,
		        :billing_address, :customer_name, :customer_email, :customer_phone, :subtotal, :tax_amount,
		        :shipping_amount, :discount_amount, :total_amount, :coupon_id, :notes, :created_at, :updated_at)`, order)
	if database.IsUniqueViolation(err) {
		return apperrors.NewConflictError(fmt.Sprintf("order number %s already exists", order.OrderNumber))
	}
	if err != nil {
		return fmt.Errorf("inserting order: %w", err)
	}
	return nil
}

// Update writes the mutable lifecycle columns of an order.
func (r *SQLOrderRepository) Update(ctx context.Context, tx *sqlx.Tx, order *domain.Order) error {
	order.UpdatedAt = time.Now().UTC()

	result, err := tx.NamedExecContext(ctx, `
		UPDATE orders
		SET status = :status, payment_status = :payment_status, tracking_number = :tracking_number,
		    carrier = :carrier, notes = :notes, cancelled_reason = :cancelled_reason, shipped_at = :shipped_at,
		    delivered_at = :delivered_at, cancelled_at = :cancelled_at, updated_at = :updated_at
		WHERE id = :id`, order)
	if err != nil {
		return fmt.Errorf("updating order: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("order with id %s not found", order.ID))
	}
	return nil
}

func (r *SQLOrderRepository) List(ctx context.Context, f domain.OrderFilter) ([]domain.Order, int, error) {
	var where []string
	var args []any

	if f.UserID != "" {
		where = append(where, "user_id = ?")
		args = append(args, f.UserID)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	if f.PaymentStatus != "" {
		where = append(where, "payment_status = ?")
		args = append(args, f.PaymentStatus)
	}
	if f.Search != "" {
		where = append(where, "(LOWER(order_number) LIKE ?"+database.LikeEscape+
			" OR LOWER(customer_name) LIKE ?"+database.LikeEscape+
			" OR LOWER(customer_email) LIKE ?"+database.LikeEscape+")")
		pattern := database.ContainsPattern(f.Search)
		args = append(args, pattern, pattern, pattern)
	}
	if f.ProductID != "" {
		where = append(where, "id IN (SELECT order_id FROM order_items WHERE product_id = ?)")
		args = append(args, f.ProductID)
	}
	if f.From != nil {
		where = append(where, "created_at >= ?")
		args = append(args, f.From.UTC())
	}
	if f.To != nil {
		where = append(where, "created_at < ?")
		args = append(args, f.To.UTC())
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, r.db.Rebind(`SELECT COUNT(*) FROM orders`+clause), args...); err != nil {
		return nil, 0, fmt.Errorf("counting orders: %w", err)
	}

	query := `SELECT ` + orderColumns + ` FROM orders` + clause + ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, f.Limit, (f.Page-1)*f.Limit)

	var orders []domain.Order
	if err := r.db.SelectContext(ctx, &orders, r.db.Rebind(query), args...); err != nil {
		return nil, 0, fmt.Errorf("listing orders: %w", err)
	}
	return orders, total, nil
}

func (r *SQLOrderRepository) InsertHistory(ctx context.Context, tx *sqlx.Tx, h *domain.OrderStatusHistory) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now().UTC()
	}

	_, err := tx.NamedExecContext(ctx, `
		INSERT INTO order_status_history (id, order_id, status, previous_status, notes, changed_by, created_at)
		VALUES (:id, :order_id, :status, :previous_status, :notes, :changed_by, :created_at)`, h)
	if err != nil {
		return fmt.Errorf("inserting order status history: %w", err)
	}
	return nil
}

func (r *SQLOrderRepository) FindHistory(ctx context.Context, orderID string) ([]domain.OrderStatusHistory, error) {
	var history []domain.OrderStatusHistory
	err := r.db.SelectContext(ctx, &history, r.db.Rebind(`
		SELECT id, order_id, status, previous_status, notes, changed_by, created_at
		FROM order_status_history
		WHERE order_id = ?
		ORDER BY created_at ASC`), orderID)
	if err != nil {
		return nil, fmt.Errorf("querying order status history: %w", err)
	}
	return history, nil
}
