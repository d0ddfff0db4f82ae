package domain

import (
	"time"

	apperrors "storefront/internal/errors"
)

type Inventory struct {
	ID                string     `db:"id"`
	ProductID         string     `db:"product_id"`
	Quantity          int        `db:"quantity"`
	ReservedQuantity  int        `db:"reserved_quantity"`
	LowStockThreshold int        `db:"low_stock_threshold"`
	Location          *string    `db:"location"`
	LastRestockedAt   *time.Time `db:"last_restocked_at"`
	UpdatedAt         time.Time  `db:"updated_at"`
}

func (i Inventory) Available() int {
	available := i.Quantity - i.ReservedQuantity
	if available < 0 {
		return 0
	}
	return available
}

func (i Inventory) IsLowStock() bool {
	return i.Available() <= i.LowStockThreshold
}

// CheckReservation returns the reason a reservation of requested units must
// be refused, or false when enough stock is available.
func (i Inventory) CheckReservation(requested int) (apperrors.StockFailureReason, bool) {
	available := i.Available()
	if available <= 0 {
		return apperrors.ReasonOutOfStock, true
	}
	if available < requested {
		return apperrors.ReasonInsufficientAvailable, true
	}
	return "", false
}

type MovementType string

const (
	MovementReserve MovementType = "reserve"
	MovementRelease MovementType = "release"
	MovementShip    MovementType = "ship"
	MovementRestock MovementType = "restock"
	MovementReturn  MovementType = "return"
)

const (
	ReferenceOrder  = "order"
	ReferenceReturn = "return"
	ReferenceManual = "manual"
)

// InventoryMovement is an append-only ledger entry. QuantityChange is signed
// relative to the column it affects (reserved for reserve/release, on hand
// otherwise).
type InventoryMovement struct {
	ID             string       `db:"id"`
	ProductID      string       `db:"product_id"`
	MovementType   MovementType `db:"movement_type"`
	QuantityChange int          `db:"quantity_change"`
	ReferenceType  *string      `db:"reference_type"`
	ReferenceID    *string      `db:"reference_id"`
	CreatedBy      *string      `db:"created_by"`
	CreatedAt      time.Time    `db:"created_at"`
}

type InventoryFilter struct {
	ProductID string
	LowStock  bool
}
