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
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	apperrors "storefront/internal/errors"
	"storefront/internal/infrastructure/database"
)

const reviewColumns = `id, product_id, user_id, order_id, rating, title, comment, is_verified_purchase,
	moderation_status, admin_response, admin_response_at, helpful_count, created_at, updated_at`

type SQLReviewRepository struct {
	db *sqlx.DB
}

func NewSQLReviewRepository(db *sqlx.DB) *SQLReviewRepository {
	return &SQLReviewRepository{db: db}
}

func (r *SQLReviewRepository) FindByID(ctx context.Context, id string) (*domain.Review, error) {
	return findReview(ctx, r.db, `SELECT `+reviewColumns+` FROM product_reviews WHERE id = ?`, id)
}

func (r *SQLReviewRepository) FindByIDForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*domain.Review, error) {
	return findReview(ctx, tx, `SELECT `+reviewColumns+` FROM product_reviews WHERE id = ?`+database.ForUpdate(tx.DriverName()), id)
}

func findReview(ctx context.Context, q sqlx.ExtContext, query, id string) (*domain.Review, error) {
	var review domain.Review
	err := sqlx.GetContext(ctx, q, &review, q.Rebind(query), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("review with id %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying review by id: %w", err)
	}
	return &review, nil
}

func (r *SQLReviewRepository) List(ctx context.Context, f domain.ReviewFilter) ([]domain.Review, int, error) {
	var where []string
	var args []any

	if f.ProductID != "" {
		where = append(where, "product_id = ?")
		args = append(args, f.ProductID)
	}
	if f.Status != "" {
		where = append(where, "moderation_status = ?")
		args = append(args, f.Status)
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, r.db.Rebind(`SELECT COUNT(*) FROM product_reviews`+clause), args...); err != nil {
		return nil, 0, fmt.Errorf("counting reviews: %w", err)
	}

	query := `SELECT ` + reviewColumns + ` FROM product_reviews` + clause +
		` ORDER BY helpful_count DESC, created_at DESC LIMIT ? OFFSET ?`
	args = append(args, f.Limit, (f.Page-1)*f.Limit)

	var reviews []domain.Review
	if err := r.db.SelectContext(ctx, &reviews, r.db.Rebind(query), args...); err != nil {
		return nil, 0, fmt.Errorf("listing reviews: %w", err)
	}
	return reviews, total, nil
}

func (r *SQLReviewRepository) Insert(ctx context.Context, tx *sqlx.Tx, review *domain.Review) error {
	if review.ID == "" {
		review.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	review.CreatedAt, review.UpdatedAt = now, now

	_, err := tx.NamedExecContext(ctx, `
		INSERT INTO product_reviews (id, product_id, user_id, order_id, rating, title, comment, is_verified_purchase,
		                             moderation_status, helpful_count, created_at, updated_at)
		VALUES (:id, :product_id, :user_id, :order_id, :rating, :title, :comment, :is_verified_purchase,
		        :moderation_status, :helpful_count, :created_at, :updated_at)`, review)
	if database.IsUniqueViolation(err) {
		return apperrors.NewConflictError("you have already reviewed this product")
	}
	if err != nil {
		return fmt.Errorf("inserting review: %w", err)
	}
	return nil
}

func (r *SQLReviewRepository) Update(ctx context.Context, tx *sqlx.Tx, review *domain.Review) error {
	review.UpdatedAt = time.Now().UTC()

	result, err := tx.NamedExecContext(ctx, `
		UPDATE product_reviews
		SET rating = :rating, title = :title, comment = :comment, moderation_status = :moderation_status,
		    admin_response = :admin_response, admin_response_at = :admin_response_at, updated_at = :updated_at
		WHERE id = :id`, review)
	if err != nil {
		return fmt.Errorf("updating review: %w", err)
	}
	return expectRow(result, review.ID)
}

func (r *SQLReviewRepository) Delete(ctx context.Context, tx *sqlx.Tx, id string) error {
	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM review_helpful_votes WHERE review_id = ?`), id); err != nil {
		return fmt.Errorf("deleting review votes: %w", err)
	}
	result, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM product_reviews WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("deleting review: %w", err)
	}
	return expectRow(result, id)
}

// PurchaseStatus returns the status of the user's order when it contains the
// product. ok is false when no such order exists.
func (r *SQLReviewRepository) PurchaseStatus(ctx context.Context, tx *sqlx.Tx, orderID, userID, productID string) (status domain.OrderStatus, ok bool, err error) {
	err = tx.GetContext(ctx, &status, tx.Rebind(`
		SELECT o.status
		FROM orders o
		WHERE o.id = ? AND o.user_id = ?
		  AND EXISTS (SELECT 1 FROM order_items i WHERE i.order_id = o.id AND i.product_id = ?)`),
		orderID, userID, productID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("querying purchase: %w", err)
	}
	return status, true, nil
}

// RatingSummary averages the approved reviews of a product.
func (r *SQLReviewRepository) RatingSummary(ctx context.Context, tx *sqlx.Tx, productID string) (decimal.Decimal, int, error) {
	var row struct {
		Count   int                 `db:"review_count"`
		Average decimal.NullDecimal `db:"average"`
	}
	err := tx.GetContext(ctx, &row, tx.Rebind(`
		SELECT COUNT(*) AS review_count, AVG(rating) AS average
		FROM product_reviews
		WHERE product_id = ? AND moderation_status = ?`),
		productID, domain.ModerationApproved)
	if err != nil {
		return decimal.Zero, 0, fmt.Errorf("summarizing ratings: %w", err)
	}
	if !row.Average.Valid {
		return decimal.Zero, 0, nil
	}
	return row.Average.Decimal.Round(2), row.Count, nil
}

// UpsertVote records the user's helpful vote on a review, replacing an
// earlier vote.
func (r *SQLReviewRepository) UpsertVote(ctx context.Context, tx *sqlx.Tx, reviewID, userID string, helpful bool) error {
	result, err := tx.ExecContext(ctx,
		tx.Rebind(`UPDATE review_helpful_votes SET is_helpful = ? WHERE review_id = ? AND user_id = ?`),
		helpful, reviewID, userID)
	if err != nil {
		return fmt.Errorf("updating helpful vote: %w", err)
	}
	if updated, err := matched(result); err != nil || updated {
		return err
	}

	_, err = tx.ExecContext(ctx,
		tx.Rebind(`INSERT INTO review_helpful_votes (review_id, user_id, is_helpful, created_at) VALUES (?, ?, ?, ?)`),
		reviewID, userID, helpful, time.Now().UTC())
	if database.IsUniqueViolation(err) {
		return apperrors.NewConflictError("vote changed concurrently, please retry")
	}
	if err != nil {
		return fmt.Errorf("inserting helpful vote: %w", err)
	}
	return nil
}

// RecountHelpful refreshes helpful_count from the votes and returns it.
func (r *SQLReviewRepository) RecountHelpful(ctx context.Context, tx *sqlx.Tx, reviewID string) (int, error) {
	var count int
	err := tx.GetContext(ctx, &count,
		tx.Rebind(`SELECT COUNT(*) FROM review_helpful_votes WHERE review_id = ? AND is_helpful = ?`),
		reviewID, true)
	if err != nil {
		return 0, fmt.Errorf("counting helpful votes: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		tx.Rebind(`UPDATE product_reviews SET helpful_count = ? WHERE id = ?`),
		count, reviewID)
	if err != nil {
		return 0, fmt.Errorf("updating helpful count: %w", err)
	}
	return count, nil
}

func matched(result sql.Result) (bool, error) {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("getting rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

func expectRow(result sql.Result, id string) error {
	ok, err := matched(result)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("review with id %s not found", id))
	}
	return nil
}
