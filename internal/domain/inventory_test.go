package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "storefront/internal/errors"
)

func TestInventory_Available(t *testing.T) {
	assert.Equal(t, 7, Inventory{Quantity: 10, ReservedQuantity: 3}.Available())
	assert.Equal(t, 0, Inventory{Quantity: 2, ReservedQuantity: 5}.Available())
}

func TestInventory_IsLowStock(t *testing.T) {
	assert.True(t, Inventory{Quantity: 10, ReservedQuantity: 5, LowStockThreshold: 5}.IsLowStock())
	assert.False(t, Inventory{Quantity: 10, ReservedQuantity: 4, LowStockThreshold: 5}.IsLowStock())
}

func TestInventory_CheckReservation(t *testing.T) {
	tests := []struct {
		name      string
		inv       Inventory
		requested int
		reason    apperrors.StockFailureReason
		refused   bool
	}{
		{"enough stock", Inventory{Quantity: 10, ReservedQuantity: 2}, 8, "", false},
		{"out of stock", Inventory{Quantity: 5, ReservedQuantity: 5}, 1, apperrors.ReasonOutOfStock, true},
		{"insufficient", Inventory{Quantity: 5, ReservedQuantity: 2}, 4, apperrors.ReasonInsufficientAvailable, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reason, refused := tt.inv.CheckReservation(tt.requested)
			assert.Equal(t, tt.refused, refused)
			assert.Equal(t, tt.reason, reason)
		})
	}
}
