package product

import (
	"context"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
)

type UseCase interface {
	SearchProducts(ctx context.Context, req SearchProductsRequest) (*SearchProductsResponse, error)
	ListProducts(ctx context.Context, filter domain.ProductFilter) (*ListProductsResponse, error)
	GetProduct(ctx context.Context, id string, includeInactive bool) (*ProductDTO, error)
	CreateProduct(ctx context.Context, req CreateProductRequest, actor string) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, id string, req UpdateProductRequest) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, id string) error
	ListInventory(ctx context.Context, filter domain.InventoryFilter) (*ListInventoryResponse, error)
	Restock(ctx context.Context, req RestockRequest, actor string) (*InventoryDTO, error)
	ListMovements(ctx context.Context, productID string, limit int) (*ListMovementsResponse, error)
}

type Service interface {
	GetProductsByIDs(ctx context.Context, ids []string) (found []domain.Product, notFoundIDs []string, err error)
	Stock(ctx context.Context, productIDs []string) (map[string]domain.Inventory, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int, error)
	Create(ctx context.Context, p *domain.Product, stock *domain.Inventory, actor string) error
	Update(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, id string) error
	ListInventory(ctx context.Context, filter domain.InventoryFilter) ([]domain.Inventory, error)
	Restock(ctx context.Context, cmd RestockCommand) (*domain.Inventory, error)
	ListMovements(ctx context.Context, productID string, limit int) ([]domain.InventoryMovement, error)
}

type Repository interface {
	FindByIDs(ctx context.Context, ids []string) ([]domain.Product, error)
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	FindByIDTx(ctx context.Context, tx *sqlx.Tx, id string) (*domain.Product, error)
	List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int, error)
	Insert(ctx context.Context, tx *sqlx.Tx, p *domain.Product) error
	Update(ctx context.Context, p *domain.Product) error
	SoftDelete(ctx context.Context, id string) error
}

type InventoryRepository interface {
	FindByProductID(ctx context.Context, productID string) (*domain.Inventory, error)
	FindByProductIDForUpdate(ctx context.Context, tx *sqlx.Tx, productID string) (*domain.Inventory, error)
	FindByProductIDs(ctx context.Context, productIDs []string) (map[string]domain.Inventory, error)
	List(ctx context.Context, filter domain.InventoryFilter) ([]domain.Inventory, error)
	AddStock(ctx context.Context, tx *sqlx.Tx, productID string, quantity int) (bool, error)
	Insert(ctx context.Context, tx *sqlx.Tx, inv *domain.Inventory) error
	UpdateSettings(ctx context.Context, tx *sqlx.Tx, productID string, location *string, threshold *int) error
	InsertMovement(ctx context.Context, tx *sqlx.Tx, m *domain.InventoryMovement) error
	ListMovements(ctx context.Context, productID string, limit int) ([]domain.InventoryMovement, error)
}

// RestockCommand adds units to the stock of a product, creating its
// inventory row on first restock.
type RestockCommand struct {
	ProductID         string
	Quantity          int
	Location          *string
	LowStockThreshold *int
	Actor             string
}
