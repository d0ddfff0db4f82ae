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

const inventoryColumns = `id, product_id, quantity, reserved_quantity, low_stock_threshold, location,
	last_restocked_at, updated_at`

type SQLInventoryRepository struct {
	db *sqlx.DB
}

func NewSQLInventoryRepository(db *sqlx.DB) *SQLInventoryRepository {
	return &SQLInventoryRepository{db: db}
}

func (r *SQLInventoryRepository) FindByProductID(ctx context.Context, productID string) (*domain.Inventory, error) {
	var inv domain.Inventory
	err := r.db.GetContext(ctx, &inv, r.db.Rebind(`SELECT `+inventoryColumns+` FROM inventory WHERE product_id = ?`), productID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("inventory for product %s not found", productID))
	}
	if err != nil {
		return nil, fmt.Errorf("querying inventory: %w", err)
	}
	return &inv, nil
}

// FindByProductIDForUpdate reads and locks the stock row of a product until
// tx ends.
func (r *SQLInventoryRepository) FindByProductIDForUpdate(ctx context.Context, tx *sqlx.Tx, productID string) (*domain.Inventory, error) {
	query := `SELECT ` + inventoryColumns + ` FROM inventory WHERE product_id = ?` + database.ForUpdate(tx.DriverName())

	var inv domain.Inventory
	err := tx.GetContext(ctx, &inv, tx.Rebind(query), productID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("inventory for product %s not found", productID))
	}
	if err != nil {
		return nil, fmt.Errorf("locking inventory: %w", err)
	}
	return &inv, nil
}

// FindByProductIDs returns the stock rows of the given products keyed by
// product id. Untracked products are absent.
func (r *SQLInventoryRepository) FindByProductIDs(ctx context.Context, productIDs []string) (map[string]domain.Inventory, error) {
	result := make(map[string]domain.Inventory, len(productIDs))
	if len(productIDs) == 0 {
		return result, nil
	}

	query, args, err := sqlx.In(`SELECT `+inventoryColumns+` FROM inventory WHERE product_id IN (?)`, productIDs)
	if err != nil {
		return nil, fmt.Errorf("building inventory query: %w", err)
	}

	var rows []domain.Inventory
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("querying inventory: %w", err)
	}
	for _, inv := range rows {
		result[inv.ProductID] = inv
	}
	return result, nil
}

func (r *SQLInventoryRepository) List(ctx context.Context, f domain.InventoryFilter) ([]domain.Inventory, error) {
	query := `SELECT ` + inventoryColumns + ` FROM inventory WHERE 1 = 1`
	var args []any
	if f.ProductID != "" {
		query += ` AND product_id = ?`
		args = append(args, f.ProductID)
	}
	if f.LowStock {
		query += ` AND quantity - reserved_quantity <= low_stock_threshold`
	}
	query += ` ORDER BY updated_at DESC`

	var rows []domain.Inventory
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("listing inventory: %w", err)
	}
	return rows, nil
}

// Reserve adds quantity to the reserved stock only while enough stock is
// available. It reports false when the guard rejected the update.
func (r *SQLInventoryRepository) Reserve(ctx context.Context, tx *sqlx.Tx, productID string, quantity int) (bool, error) {
	result, err := tx.ExecContext(ctx, tx.Rebind(`
		UPDATE inventory
		SET reserved_quantity = reserved_quantity + ?, updated_at = ?
		WHERE product_id = ? AND quantity - reserved_quantity >= ?`),
		quantity, time.Now().UTC(), productID, quantity)
	if err != nil {
		return false, fmt.Errorf("reserving stock: %w", err)
	}
	return matched(result)
}

// Release returns reserved units to the available pool, never letting the
// reservation drop below zero. It reports false for untracked products.
func (r *SQLInventoryRepository) Release(ctx context.Context, tx *sqlx.Tx, productID string, quantity int) (bool, error) {
	result, err := tx.ExecContext(ctx, tx.Rebind(`
		UPDATE inventory
		SET reserved_quantity = CASE WHEN reserved_quantity > ? THEN reserved_quantity - ? ELSE 0 END,
		    updated_at = ?
		WHERE product_id = ?`),
		quantity, quantity, time.Now().UTC(), productID)
	if err != nil {
		return false, fmt.Errorf("releasing stock: %w", err)
	}
	return matched(result)
}

// Ship removes shipped units from stock on hand and from the reservation. It
// reports false for untracked products.
func (r *SQLInventoryRepository) Ship(ctx context.Context, tx *sqlx.Tx, productID string, quantity int) (bool, error) {
	result, err := tx.ExecContext(ctx, tx.Rebind(`
		UPDATE inventory
		SET quantity = CASE WHEN quantity > ? THEN quantity - ? ELSE 0 END,
		    reserved_quantity = CASE WHEN reserved_quantity > ? THEN reserved_quantity - ? ELSE 0 END,
		    updated_at = ?
		WHERE product_id = ?`),
		quantity, quantity, quantity, quantity, time.Now().UTC(), productID)
	if err != nil {
		return false, fmt.Errorf("shipping stock: %w", err)
	}
	return matched(result)
}

// AddStock increases stock on hand. It reports false when the product has no
// inventory row.
func (r *SQLInventoryRepository) AddStock(ctx context.Context, tx *sqlx.Tx, productID string, quantity int) (bool, error) {
	now := time.Now().UTC()
	result, err := tx.ExecContext(ctx, tx.Rebind(`
		UPDATE inventory
		SET quantity = quantity + ?, last_restocked_at = ?, updated_at = ?
		WHERE product_id = ?`),
		quantity, now, now, productID)
	if err != nil {
		return false, fmt.Errorf("adding stock: %w", err)
	}
	return matched(result)
}

func (r *SQLInventoryRepository) Insert(ctx context.Context, tx *sqlx.Tx, inv *domain.Inventory) error {
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	inv.UpdatedAt = time.Now().UTC()

	_, err := tx.NamedExecContext(ctx, `
		INSERT INTO inventory (id, product_id, quantity, reserved_quantity, low_stock_threshold, location,
		                       last_restocked_at, updated_at)
		VALUES (:id, :product_id, :quantity, :reserved_quantity, :low_stock_threshold, :location,
		        :last_restocked_at, :updated_at)`, inv)
	if database.IsUniqueViolation(err) {
		return apperrors.NewConflictError(fmt.Sprintf("inventory for product %s already exists", inv.ProductID))
	}
	if err != nil {
		return fmt.Errorf("inserting inventory: %w", err)
	}
	return nil
}

// UpdateSettings changes the location and low stock threshold of a stock
// row; nil values are kept.
func (r *SQLInventoryRepository) UpdateSettings(ctx context.Context, tx *sqlx.Tx, productID string, location *string, threshold *int) error {
	_, err := tx.ExecContext(ctx, tx.Rebind(`
		UPDATE inventory
		SET location = COALESCE(?, location),
		    low_stock_threshold = COALESCE(?, low_stock_threshold),
		    updated_at = ?
		WHERE product_id = ?`),
		location, threshold, time.Now().UTC(), productID)
	if err != nil {
		return fmt.Errorf("updating inventory settings: %w", err)
	}
	return nil
}

func (r *SQLInventoryRepository) InsertMovement(ctx context.Context, tx *sqlx.Tx, m *domain.InventoryMovement) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	m.CreatedAt = time.Now().UTC()

	_, err := tx.NamedExecContext(ctx, `
		INSERT INTO inventory_movements (id, product_id, movement_type, quantity_change, reference_type,
		                                 reference_id, created_by, created_at)
		VALUES (:id, :product_id, :movement_type, :quantity_change, :reference_type,
		        :reference_id, :created_by, :created_at)`, m)
	if err != nil {
		return fmt.Errorf("inserting inventory movement: %w", err)
	}
	return nil
}

func (r *SQLInventoryRepository) ListMovements(ctx context.Context, productID string, limit int) ([]domain.InventoryMovement, error) {
	query := `SELECT id, product_id, movement_type, quantity_change, reference_type, reference_id, created_by, created_at
		FROM inventory_movements`
	var args []any
	if productID != "" {
		query += ` WHERE product_id = ?`
		args = append(args, productID)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	var movements []domain.InventoryMovement
	if err := r.db.SelectContext(ctx, &movements, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("listing inventory movements: %w", err)
	}
	return movements, nil
}

func matched(result sql.Result) (bool, error) {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("getting rows affected: %w", err)
	}
	return rowsAffected == 1, nil
}
