package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID           string          `db:"id"`
	SKU          string          `db:"sku"`
	Name         string          `db:"name"`
	Description  *string         `db:"description"`
	Category     *string         `db:"category"`
	Price        decimal.Decimal `db:"price"`
	Image        *string         `db:"image"`
	IsActive     bool            `db:"is_active"`
	IsDeleted    bool            `db:"is_deleted"`
	SalesCount   int             `db:"sales_count"`
	Rating       decimal.Decimal `db:"rating"`
	ReviewsCount int             `db:"reviews_count"`
	CreatedAt    time.Time       `db:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at"`
}

// Orderable reports whether the product can be placed in a new order.
func (p Product) Orderable() bool {
	return p.IsActive && !p.IsDeleted
}

type ProductSort string

const (
	SortNewest    ProductSort = "newest"
	SortPriceAsc  ProductSort = "price_asc"
	SortPriceDesc ProductSort = "price_desc"
	SortPopular   ProductSort = "popular"
)

func (s ProductSort) Valid() bool {
	switch s {
	case SortNewest, SortPriceAsc, SortPriceDesc, SortPopular:
		return true
	}
	return false
}

type ProductFilter struct {
	Category string
	Search   string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Sort     ProductSort
	Page     int
	Limit    int
}
