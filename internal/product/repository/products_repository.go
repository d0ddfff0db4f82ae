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

const productColumns = `id, sku, name, description, category, price, image, is_active, is_deleted,
	sales_count, rating, reviews_count, created_at, updated_at`

type SQLRepository struct {
	db *sqlx.DB
}

func NewSQLRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

// FindByIDs returns the non-deleted products among ids. Missing ids are
// simply absent from the result.
func (r *SQLRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`SELECT `+productColumns+` FROM products WHERE id IN (?) AND is_deleted = ?`, ids, false)
	if err != nil {
		return nil, fmt.Errorf("building products query: %w", err)
	}

	var products []domain.Product
	if err := r.db.SelectContext(ctx, &products, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("querying products: %w", err)
	}
	return products, nil
}

func (r *SQLRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	return findProduct(ctx, r.db, id)
}

// FindByIDTx reads a product inside tx, deleted ones included.
func (r *SQLRepository) FindByIDTx(ctx context.Context, tx *sqlx.Tx, id string) (*domain.Product, error) {
	return findProduct(ctx, tx, id)
}

func findProduct(ctx context.Context, q sqlx.ExtContext, id string) (*domain.Product, error) {
	var p domain.Product
	err := sqlx.GetContext(ctx, q, &p, q.Rebind(`SELECT `+productColumns+` FROM products WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("product with id %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying product by id: %w", err)
	}
	return &p, nil
}

func (r *SQLRepository) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, int, error) {
	where := []string{"is_active = ?", "is_deleted = ?"}
	args := []any{true, false}

	if f.Category != "" {
		where = append(where, "category = ?")
		args = append(args, f.Category)
	}
	if f.Search != "" {
		where = append(where, "(LOWER(name) LIKE ?"+database.LikeEscape+" OR LOWER(description) LIKE ?"+database.LikeEscape+")")
		pattern := database.ContainsPattern(f.Search)
		args = append(args, pattern, pattern)
	}
	if f.MinPrice != nil {
		where = append(where, "price >= ?")
		args = append(args, *f.MinPrice)
	}
	if f.MaxPrice != nil {
		where = append(where, "price <= ?")
		args = append(args, *f.MaxPrice)
	}
	clause := " WHERE " + strings.Join(where, " AND ")

	var total int
	if err := r.db.GetContext(ctx, &total, r.db.Rebind(`SELECT COUNT(*) FROM products`+clause), args...); err != nil {
		return nil, 0, fmt.Errorf("counting products: %w", err)
	}

	order := "created_at DESC"
	switch f.Sort {
	case domain.SortPriceAsc:
		order = "price ASC"
	case domain.SortPriceDesc:
		order = "price DESC"
	case domain.SortPopular:
		order = "sales_count DESC, created_at DESC"
	}

	query := `SELECT ` + productColumns + ` FROM products` + clause + ` ORDER BY ` + order + ` LIMIT ? OFFSET ?`
	args = append(args, f.Limit, (f.Page-1)*f.Limit)

	var products []domain.Product
	if err := r.db.SelectContext(ctx, &products, r.db.Rebind(query), args...); err != nil {
		return nil, 0, fmt.Errorf("listing products: %w", err)
	}
	return products, total, nil
}

func (r *SQLRepository) Insert(ctx context.Context, tx *sqlx.Tx, p *domain.Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now

	_, err := tx.NamedExecContext(ctx, `
		INSERT INTO products (id, sku, name, description, category, price, image, is_active, is_deleted,
		                      sales_count, rating, reviews_count, created_at, updated_at)
		VALUES (:id, :sku, :name, :description, :category, :price, :image, :is_active, :is_deleted,
		        :sales_count, :rating, :reviews_count, :created_at, :updated_at)`, p)
	if database.IsUniqueViolation(err) {
		return apperrors.NewConflictError(fmt.Sprintf("product with sku %s already exists", p.SKU))
	}
	if err != nil {
		return fmt.Errorf("inserting product: %w", err)
	}
	return nil
}

func (r *SQLRepository) Update(ctx context.Context, p *domain.Product) error {
	p.UpdatedAt = time.Now().UTC()

	result, err := r.db.NamedExecContext(ctx, `
		UPDATE products
		SET sku = :sku, name = :name, description = :description, category = :category, price = :price,
		    image = :image, is_active = :is_active, updated_at = :updated_at
		WHERE id = :id AND is_deleted = FALSE`, p)
	if database.IsUniqueViolation(err) {
		return apperrors.NewConflictError(fmt.Sprintf("product with sku %s already exists", p.SKU))
	}
	if err != nil {
		return fmt.Errorf("updating product: %w", err)
	}
	return expectRow(result, "product", p.ID)
}

func (r *SQLRepository) SoftDelete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		r.db.Rebind(`UPDATE products SET is_deleted = ?, is_active = ?, updated_at = ? WHERE id = ? AND is_deleted = ?`),
		true, false, time.Now().UTC(), id, false)
	if err != nil {
		return fmt.Errorf("deleting product: %w", err)
	}
	return expectRow(result, "product", id)
}

func (r *SQLRepository) IncrementSalesCount(ctx context.Context, tx *sqlx.Tx, id string, quantity int) error {
	_, err := tx.ExecContext(ctx,
		tx.Rebind(`UPDATE products SET sales_count = sales_count + ?, updated_at = ? WHERE id = ?`),
		quantity, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("incrementing sales count: %w", err)
	}
	return nil
}

func (r *SQLRepository) UpdateRating(ctx context.Context, tx *sqlx.Tx, id string, rating decimal.Decimal, reviewsCount int) error {
	_, err := tx.ExecContext(ctx,
		tx.Rebind(`UPDATE products SET rating = ?, reviews_count = ?, updated_at = ? WHERE id = ?`),
		rating, reviewsCount, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("updating product rating: %w", err)
	}
	return nil
}

func expectRow(result sql.Result, entity, id string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("%s with id %s not found", entity, id))
	}
	return nil
}
