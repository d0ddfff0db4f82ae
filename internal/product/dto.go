package product

import (
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/httpx"
)

type SearchProductsRequest struct {
	ProductIDs []string `json:"productIds" validate:"required,min=1,max=100,dive,required"`
}

type SearchProductsResponse struct {
	Products []ProductDTO `json:"products"`
	NotFound []string     `json:"notFound"`
}

type ListProductsResponse struct {
	Products   []ProductDTO     `json:"products"`
	Pagination httpx.Pagination `json:"pagination"`
}

// ProductDTO carries stock figures only for products with an inventory row;
// untracked products report InStock true.
type ProductDTO struct {
	ID             string          `json:"id"`
	SKU            string          `json:"sku"`
	Name           string          `json:"name"`
	Description    *string         `json:"description"`
	Category       *string         `json:"category"`
	Price          decimal.Decimal `json:"price"`
	Image          *string         `json:"image"`
	IsActive       bool            `json:"isActive"`
	SalesCount     int             `json:"salesCount"`
	Rating         decimal.Decimal `json:"rating"`
	ReviewsCount   int             `json:"reviewsCount"`
	Stock          *int            `json:"stock"`
	ReservedStock  *int            `json:"reservedStock"`
	AvailableStock *int            `json:"availableStock"`
	InStock        bool            `json:"inStock"`
	Tracked        bool            `json:"tracked"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

type CreateProductRequest struct {
	SKU               string          `json:"sku" validate:"required,max=64"`
	Name              string          `json:"name" validate:"required,max=255"`
	Description       *string         `json:"description" validate:"omitempty,max=5000"`
	Category          *string         `json:"category" validate:"omitempty,max=100"`
	Price             decimal.Decimal `json:"price"`
	Image             *string         `json:"image" validate:"omitempty,url"`
	IsActive          *bool           `json:"isActive"`
	InitialStock      *int            `json:"initialStock" validate:"omitempty,min=0"`
	LowStockThreshold *int            `json:"lowStockThreshold" validate:"omitempty,min=0"`
	Location          *string         `json:"location" validate:"omitempty,max=100"`
}

type UpdateProductRequest struct {
	SKU         *string          `json:"sku" validate:"omitempty,min=1,max=64"`
	Name        *string          `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string          `json:"description" validate:"omitempty,max=5000"`
	Category    *string          `json:"category" validate:"omitempty,max=100"`
	Price       *decimal.Decimal `json:"price"`
	Image       *string          `json:"image" validate:"omitempty,url"`
	IsActive    *bool            `json:"isActive"`
}

type InventoryDTO struct {
	ProductID         string     `json:"productId"`
	Quantity          int        `json:"quantity"`
	ReservedQuantity  int        `json:"reservedQuantity"`
	AvailableQuantity int        `json:"availableQuantity"`
	LowStockThreshold int        `json:"lowStockThreshold"`
	LowStock          bool       `json:"lowStock"`
	Location          *string    `json:"location"`
	LastRestockedAt   *time.Time `json:"lastRestockedAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

type ListInventoryResponse struct {
	Inventory []InventoryDTO `json:"inventory"`
}

type RestockRequest struct {
	ProductID         string  `json:"product_id" validate:"required"`
	Quantity          int     `json:"quantity" validate:"min=1,max=100000"`
	Location          *string `json:"location" validate:"omitempty,max=100"`
	LowStockThreshold *int    `json:"low_stock_threshold" validate:"omitempty,min=0"`
}

type MovementDTO struct {
	ID             string    `json:"id"`
	ProductID      string    `json:"productId"`
	MovementType   string    `json:"movementType"`
	QuantityChange int       `json:"quantityChange"`
	ReferenceType  *string   `json:"referenceType"`
	ReferenceID    *string   `json:"referenceId"`
	CreatedBy      *string   `json:"createdBy"`
	CreatedAt      time.Time `json:"createdAt"`
}

type ListMovementsResponse struct {
	Movements []MovementDTO `json:"movements"`
}
