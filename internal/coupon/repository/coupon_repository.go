package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
	apperrors "storefront/internal/errors"
	"storefront/internal/infrastructure/database"
)

const couponColumns = `id, code, name, discount_type, discount_value, min_purchase_amount, max_discount_amount,
	usage_limit, used_count, valid_from, valid_until, is_active, created_at, updated_at`

type SQLCouponRepository struct {
	db *sqlx.DB
}

func NewSQLCouponRepository(db *sqlx.DB) *SQLCouponRepository {
	return &SQLCouponRepository{db: db}
}

func (r *SQLCouponRepository) FindByID(ctx context.Context, id string) (*domain.Coupon, error) {
	return findCoupon(ctx, r.db, "id", id)
}

func (r *SQLCouponRepository) FindByIDTx(ctx context.Context, tx *sqlx.Tx, id string) (*domain.Coupon, error) {
	return findCoupon(ctx, tx, "id", id)
}

// FindByCode looks a coupon up by its normalized code.
func (r *SQLCouponRepository) FindByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	return findCoupon(ctx, r.db, "code", domain.NormalizeCouponCode(code))
}

func findCoupon(ctx context.Context, q sqlx.ExtContext, column, value string) (*domain.Coupon, error) {
	var c domain.Coupon
	err := sqlx.GetContext(ctx, q, &c, q.Rebind(`SELECT `+couponColumns+` FROM coupons WHERE `+column+` = ?`), value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("coupon %s not found", value))
	}
	if err != nil {
		return nil, fmt.Errorf("querying coupon by %s: %w", column, err)
	}
	return &c, nil
}

func (r *SQLCouponRepository) List(ctx context.Context) ([]domain.Coupon, error) {
	var coupons []domain.Coupon
	if err := r.db.SelectContext(ctx, &coupons, `SELECT `+couponColumns+` FROM coupons ORDER BY created_at DESC`); err != nil {
		return nil, fmt.Errorf("listing coupons: %w", err)
	}
	return coupons, nil
}

func (r *SQLCouponRepository) Insert(ctx context.Context, c *domain.Coupon) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.Code = domain.NormalizeCouponCode(c.Code)
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO coupons (id, code, name, discount_type, discount_value, min_purchase_amount, max_discount_amount,
		                     usage_limit, used_count, valid_from, valid_until, is_active, created_at, updated_at)
		VALUES (:id, :code, :name, :discount_type, :discount_value, :min_purchase_amount, :max_discount_amount,
		        :usage_limit, :used_count, :valid_from, :valid_until, :is_active, :created_at, :updated_at)`, c)
	if database.IsUniqueViolation(err) {
		return apperrors.NewConflictError(fmt.Sprintf("coupon code %s already exists", c.Code))
	}
	if err != nil {
		return fmt.Errorf("inserting coupon: %w", err)
	}
	return nil
}

func (r *SQLCouponRepository) Update(ctx context.Context, c *domain.Coupon) error {
	c.Code = domain.NormalizeCouponCode(c.Code)
	c.UpdatedAt = time.Now().UTC()

	result, err := r.db.NamedExecContext(ctx, `
		UPDATE coupons
		SET code = :code, name = :name, discount_type = :discount_type, discount_value = :discount_value,
		    min_purchase_amount = :min_purchase_amount, max_discount_amount = :max_discount_amount,
		    usage_limit = :usage_limit, valid_from = :valid_from, valid_until = :valid_until,
		    is_active = :is_active, updated_at = :updated_at
		WHERE id = :id`, c)
	if database.IsUniqueViolation(err) {
		return apperrors.NewConflictError(fmt.Sprintf("coupon code %s already exists", c.Code))
	}
	if err != nil {
		return fmt.Errorf("updating coupon: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("coupon %s not found", c.ID))
	}
	return nil
}

// Delete removes a coupon that has never been used. Used coupons are kept
// for the orders that reference them.
func (r *SQLCouponRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM coupons WHERE id = ? AND used_count = 0`), id)
	if err != nil {
		return fmt.Errorf("deleting coupon: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 1 {
		return nil
	}

	if _, err := r.FindByID(ctx, id); err != nil {
		return err
	}
	return apperrors.NewConflictError(fmt.Sprintf("coupon %s has been used and cannot be deleted; deactivate it instead", id))
}

func (r *SQLCouponRepository) HasUsage(ctx context.Context, couponID, userID string) (bool, error) {
	var n int
	err := r.db.GetContext(ctx, &n, r.db.Rebind(`SELECT COUNT(*) FROM coupon_usage WHERE coupon_id = ? AND user_id = ?`), couponID, userID)
	if err != nil {
		return false, fmt.Errorf("querying coupon usage: %w", err)
	}
	return n > 0, nil
}

// IncrementUsage consumes one use of the coupon while its usage limit allows.
// It reports false when the limit has been reached.
func (r *SQLCouponRepository) IncrementUsage(ctx context.Context, tx *sqlx.Tx, id string) (bool, error) {
	result, err := tx.ExecContext(ctx, tx.Rebind(`
		UPDATE coupons
		SET used_count = used_count + 1, updated_at = ?
		WHERE id = ? AND (usage_limit IS NULL OR used_count < usage_limit)`),
		time.Now().UTC(), id)
	if err != nil {
		return false, fmt.Errorf("incrementing coupon usage: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("getting rows affected: %w", err)
	}
	return rowsAffected == 1, nil
}

// InsertUsage records that a user redeemed a coupon. A second redemption by
// the same user is a ConflictError.
func (r *SQLCouponRepository) InsertUsage(ctx context.Context, tx *sqlx.Tx, u *domain.CouponUsage) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = time.Now().UTC()

	_, err := tx.NamedExecContext(ctx, `
		INSERT INTO coupon_usage (id, coupon_id, user_id, order_id, discount_amount, created_at)
		VALUES (:id, :coupon_id, :user_id, :order_id, :discount_amount, :created_at)`, u)
	if database.IsUniqueViolation(err) {
		return apperrors.NewConflictError("coupon already used by this user")
	}
	if err != nil {
		return fmt.Errorf("inserting coupon usage: %w", err)
	}
	return nil
}
