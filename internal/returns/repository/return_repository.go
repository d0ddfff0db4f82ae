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

const returnColumns = `id, order_id, order_item_id, user_id, reason, description, return_type, exchange_product_id,
	status, refund_amount, rejection_reason, tracking_number, picked_up_at, received_at, processed_at,
	created_at, updated_at`

type SQLReturnRepository struct {
	db *sqlx.DB
}

func NewSQLReturnRepository(db *sqlx.DB) *SQLReturnRepository {
	return &SQLReturnRepository{db: db}
}

func (r *SQLReturnRepository) FindByID(ctx context.Context, id string) (*domain.Return, error) {
	return findReturn(ctx, r.db, `SELECT `+returnColumns+` FROM returns WHERE id = ?`, id)
}

func (r *SQLReturnRepository) FindByIDForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*domain.Return, error) {
	return findReturn(ctx, tx, `SELECT `+returnColumns+` FROM returns WHERE id = ?`+database.ForUpdate(tx.DriverName()), id)
}

func findReturn(ctx context.Context, q sqlx.ExtContext, query, id string) (*domain.Return, error) {
	var ret domain.Return
	err := sqlx.GetContext(ctx, q, &ret, q.Rebind(query), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("return with id %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying return by id: %w", err)
	}
	return &ret, nil
}

// HasActive reports whether an unfinished return already covers the order,
// or the given item of it. A whole-order return covers every item.
func (r *SQLReturnRepository) HasActive(ctx context.Context, tx *sqlx.Tx, orderID string, orderItemID *string) (bool, error) {
	query := `SELECT COUNT(*) FROM returns WHERE order_id = ? AND status IN (?)`
	args := []any{orderID, domain.ActiveReturnStatuses}
	if orderItemID != nil {
		query += ` AND (order_item_id = ? OR order_item_id IS NULL)`
		args = append(args, *orderItemID)
	}

	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return false, fmt.Errorf("building active return query: %w", err)
	}

	var n int
	if err := tx.GetContext(ctx, &n, tx.Rebind(query), args...); err != nil {
		return false, fmt.Errorf("querying active returns: %w", err)
	}
	return n > 0, nil
}

func (r *SQLReturnRepository) Insert(ctx context.Context, tx *sqlx.Tx, ret *domain.Return) error {
	if ret.ID == "" {
		ret.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	ret.CreatedAt, ret.UpdatedAt = now, now

	_, err := tx.NamedExecContext(ctx, `
		INSERT INTO returns (id, order_id, order_item_id, user_id, reason, description, return_type,
		                     exchange_product_id, status, refund_amount, created_at, updated_at)
		VALUES (:id, :order_id, :order_item_id, :user_id, :reason, :description, :return_type,
		        :exchange_product_id, :status, :refund_amount, :created_at, :updated_at)`, ret)
	if err != nil {
		return fmt.Errorf("inserting return: %w", err)
	}
	return nil
}

func (r *SQLReturnRepository) Update(ctx context.Context, tx *sqlx.Tx, ret *domain.Return) error {
	ret.UpdatedAt = time.Now().UTC()

	result, err := tx.NamedExecContext(ctx, `
		UPDATE returns
		SET status = :status, rejection_reason = :rejection_reason, tracking_number = :tracking_number,
		    picked_up_at = :picked_up_at, received_at = :received_at, processed_at = :processed_at,
		    updated_at = :updated_at
		WHERE id = :id`, ret)
	if err != nil {
		return fmt.Errorf("updating return: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("return with id %s not found", ret.ID))
	}
	return nil
}

func (r *SQLReturnRepository) List(ctx context.Context, f domain.ReturnFilter) ([]domain.Return, int, error) {
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
	if f.OrderID != "" {
		where = append(where, "order_id = ?")
		args = append(args, f.OrderID)
	}
	if f.Search != "" {
		where = append(where, "(LOWER(reason) LIKE ?"+database.LikeEscape+
			" OR order_id IN (SELECT id FROM orders WHERE LOWER(order_number) LIKE ?"+database.LikeEscape+"))")
		pattern := database.ContainsPattern(f.Search)
		args = append(args, pattern, pattern)
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, r.db.Rebind(`SELECT COUNT(*) FROM returns`+clause), args...); err != nil {
		return nil, 0, fmt.Errorf("counting returns: %w", err)
	}

	query := `SELECT ` + returnColumns + ` FROM returns` + clause + ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, f.Limit, (f.Page-1)*f.Limit)

	var returns []domain.Return
	if err := r.db.SelectContext(ctx, &returns, r.db.Rebind(query), args...); err != nil {
		return nil, 0, fmt.Errorf("listing returns: %w", err)
	}
	return returns, total, nil
}
