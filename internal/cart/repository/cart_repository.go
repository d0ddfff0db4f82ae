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
)

const cartColumns = `id, user_id, email, cart_data, total_amount, item_count, recovery_attempts, last_email_sent_at,
	recovered, recovered_at, expires_at, created_at, updated_at`

type SQLCartRepository struct {
	db *sqlx.DB
}

func NewSQLCartRepository(db *sqlx.DB) *SQLCartRepository {
	return &SQLCartRepository{db: db}
}

func (r *SQLCartRepository) Insert(ctx context.Context, cart *domain.AbandonedCart) error {
	if cart.ID == "" {
		cart.ID = uuid.NewString()
	}

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO abandoned_carts (id, user_id, email, cart_data, total_amount, item_count, recovery_attempts,
		                             recovered, expires_at, created_at, updated_at)
		VALUES (:id, :user_id, :email, :cart_data, :total_amount, :item_count, :recovery_attempts,
		        :recovered, :expires_at, :created_at, :updated_at)`, cart)
	if err != nil {
		return fmt.Errorf("inserting abandoned cart: %w", err)
	}
	return nil
}

func (r *SQLCartRepository) FindByID(ctx context.Context, id string) (*domain.AbandonedCart, error) {
	var cart domain.AbandonedCart
	err := r.db.GetContext(ctx, &cart, r.db.Rebind(`SELECT `+cartColumns+` FROM abandoned_carts WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("cart with id %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying abandoned cart: %w", err)
	}
	return &cart, nil
}

func (r *SQLCartRepository) List(ctx context.Context, f domain.AbandonedCartFilter) ([]domain.AbandonedCart, int, error) {
	var where []string
	var args []any

	if f.Recovered != nil {
		where = append(where, "recovered = ?")
		args = append(args, *f.Recovered)
	}
	if !f.CreatedBefore.IsZero() {
		where = append(where, "created_at <= ?")
		args = append(args, f.CreatedBefore.UTC())
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, r.db.Rebind(`SELECT COUNT(*) FROM abandoned_carts`+clause), args...); err != nil {
		return nil, 0, fmt.Errorf("counting abandoned carts: %w", err)
	}

	query := `SELECT ` + cartColumns + ` FROM abandoned_carts` + clause + ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, f.Limit, (f.Page-1)*f.Limit)

	var carts []domain.AbandonedCart
	if err := r.db.SelectContext(ctx, &carts, r.db.Rebind(query), args...); err != nil {
		return nil, 0, fmt.Errorf("listing abandoned carts: %w", err)
	}
	return carts, total, nil
}

// MarkRecovered flags the cart as recovered. Recovering a cart twice keeps
// the first recovered_at.
func (r *SQLCartRepository) MarkRecovered(ctx context.Context, id string, at time.Time) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE abandoned_carts
		SET recovered = ?, recovered_at = COALESCE(recovered_at, ?), updated_at = ?
		WHERE id = ?`), true, at.UTC(), at.UTC(), id)
	if err != nil {
		return fmt.Errorf("marking cart recovered: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("cart with id %s not found", id))
	}
	return nil
}

// RecordRecoveryEmail counts a recovery email against the cart. It reports
// false when the cart is recovered or already at maxAttempts.
func (r *SQLCartRepository) RecordRecoveryEmail(ctx context.Context, id string, maxAttempts int, at time.Time) (bool, error) {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE abandoned_carts
		SET recovery_attempts = recovery_attempts + 1, last_email_sent_at = ?, updated_at = ?
		WHERE id = ? AND recovered = ? AND recovery_attempts < ?`),
		at.UTC(), at.UTC(), id, false, maxAttempts)
	if err != nil {
		return false, fmt.Errorf("recording recovery email: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("getting rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// DeleteExpired removes unrecovered carts whose expiry passed before now.
func (r *SQLCartRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		r.db.Rebind(`DELETE FROM abandoned_carts WHERE recovered = ? AND expires_at < ?`),
		false, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("deleting expired carts: %w", err)
	}
	return result.RowsAffected()
}
