package product

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	apperrors "storefront/internal/errors"
	"storefront/internal/httpx"
)

type productUseCase struct {
	service Service
}

func NewUseCase(service Service) UseCase {
	return &productUseCase{service: service}
}

func (uc *productUseCase) SearchProducts(ctx context.Context, req SearchProductsRequest) (*SearchProductsResponse, error) {
	found, notFoundIDs, err := uc.service.GetProductsByIDs(ctx, req.ProductIDs)
	if err != nil {
		return nil, err
	}

	products, err := uc.withStock(ctx, found)
	if err != nil {
		return nil, err
	}

	if notFoundIDs == nil {
		notFoundIDs = []string{}
	}

	return &SearchProductsResponse{
		Products: products,
		NotFound: notFoundIDs,
	}, nil
}

func (uc *productUseCase) ListProducts(ctx context.Context, filter domain.ProductFilter) (*ListProductsResponse, error) {
	if filter.Sort == "" {
		filter.Sort = domain.SortNewest
	}
	if !filter.Sort.Valid() {
		return nil, apperrors.NewValidationError("invalid sort", apperrors.ValidationDetail{
			Field:   "sort",
			Message: "sort must be one of newest, price_asc, price_desc, popular",
		})
	}
	if filter.MinPrice != nil && filter.MaxPrice != nil && filter.MinPrice.GreaterThan(*filter.MaxPrice) {
		return nil, apperrors.NewValidationError("invalid price range", apperrors.ValidationDetail{
			Field:   "min_price",
			Message: "min_price must not exceed max_price",
		})
	}

	found, total, err := uc.service.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	products, err := uc.withStock(ctx, found)
	if err != nil {
		return nil, err
	}

	return &ListProductsResponse{
		Products:   products,
		Pagination: httpx.NewPagination(filter.Page, filter.Limit, total),
	}, nil
}

// GetProduct hides inactive products unless includeInactive is set.
func (uc *productUseCase) GetProduct(ctx context.Context, id string, includeInactive bool) (*ProductDTO, error) {
	p, err := uc.service.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsActive && !includeInactive {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("product with id %s not found", id))
	}
	products, err := uc.withStock(ctx, []domain.Product{*p})
	if err != nil {
		return nil, err
	}
	return &products[0], nil
}

func (uc *productUseCase) CreateProduct(ctx context.Context, req CreateProductRequest, actor string) (*ProductDTO, error) {
	if req.Price.IsNegative() {
		return nil, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "price",
			Message: "price must be non-negative",
		})
	}

	p := &domain.Product{
		SKU:         strings.TrimSpace(req.SKU),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price.Round(2),
		Image:       req.Image,
		IsActive:    true,
		Rating:      decimal.Zero,
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}

	var stock *domain.Inventory
	if req.InitialStock != nil || req.LowStockThreshold != nil || req.Location != nil {
		stock = &domain.Inventory{Location: req.Location, LowStockThreshold: 10}
		if req.InitialStock != nil {
			stock.Quantity = *req.InitialStock
		}
		if req.LowStockThreshold != nil {
			stock.LowStockThreshold = *req.LowStockThreshold
		}
	}

	if err := uc.service.Create(ctx, p, stock, actor); err != nil {
		return nil, err
	}

	dto := toProductDTO(*p, stock)
	return &dto, nil
}

func (uc *productUseCase) UpdateProduct(ctx context.Context, id string, req UpdateProductRequest) (*ProductDTO, error) {
	if req.Price != nil && req.Price.IsNegative() {
		return nil, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "price",
			Message: "price must be non-negative",
		})
	}

	p, err := uc.service.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.SKU != nil {
		p.SKU = strings.TrimSpace(*req.SKU)
	}
	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		p.Description = req.Description
	}
	if req.Category != nil {
		p.Category = req.Category
	}
	if req.Price != nil {
		p.Price = req.Price.Round(2)
	}
	if req.Image != nil {
		p.Image = req.Image
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}

	if err := uc.service.Update(ctx, p); err != nil {
		return nil, err
	}

	products, err := uc.withStock(ctx, []domain.Product{*p})
	if err != nil {
		return nil, err
	}
	return &products[0], nil
}

func (uc *productUseCase) DeleteProduct(ctx context.Context, id string) error {
	return uc.service.Delete(ctx, id)
}

func (uc *productUseCase) ListInventory(ctx context.Context, filter domain.InventoryFilter) (*ListInventoryResponse, error) {
	rows, err := uc.service.ListInventory(ctx, filter)
	if err != nil {
		return nil, err
	}

	inventory := make([]InventoryDTO, 0, len(rows))
	for _, inv := range rows {
		inventory = append(inventory, toInventoryDTO(inv))
	}
	return &ListInventoryResponse{Inventory: inventory}, nil
}

func (uc *productUseCase) Restock(ctx context.Context, req RestockRequest, actor string) (*InventoryDTO, error) {
	inv, err := uc.service.Restock(ctx, RestockCommand{
		ProductID:         req.ProductID,
		Quantity:          req.Quantity,
		Location:          req.Location,
		LowStockThreshold: req.LowStockThreshold,
		Actor:             actor,
	})
	if err != nil {
		return nil, err
	}
	dto := toInventoryDTO(*inv)
	return &dto, nil
}

func (uc *productUseCase) ListMovements(ctx context.Context, productID string, limit int) (*ListMovementsResponse, error) {
	rows, err := uc.service.ListMovements(ctx, productID, limit)
	if err != nil {
		return nil, err
	}

	movements := make([]MovementDTO, 0, len(rows))
	for _, m := range rows {
		movements = append(movements, MovementDTO{
			ID:             m.ID,
			ProductID:      m.ProductID,
			MovementType:   string(m.MovementType),
			QuantityChange: m.QuantityChange,
			ReferenceType:  m.ReferenceType,
			ReferenceID:    m.ReferenceID,
			CreatedBy:      m.CreatedBy,
			CreatedAt:      m.CreatedAt,
		})
	}
	return &ListMovementsResponse{Movements: movements}, nil
}

func (uc *productUseCase) withStock(ctx context.Context, found []domain.Product) ([]ProductDTO, error) {
	ids := make([]string, 0, len(found))
	for _, p := range found {
		ids = append(ids, p.ID)
	}

	stock, err := uc.service.Stock(ctx, ids)
	if err != nil {
		return nil, err
	}

	products := make([]ProductDTO, 0, len(found))
	for _, p := range found {
		var inv *domain.Inventory
		if row, ok := stock[p.ID]; ok {
			inv = &row
		}
		products = append(products, toProductDTO(p, inv))
	}
	return products, nil
}

func toProductDTO(p domain.Product, inv *domain.Inventory) ProductDTO {
	dto := ProductDTO{
		ID:           p.ID,
		SKU:          p.SKU,
		Name:         p.Name,
		Description:  p.Description,
		Category:     p.Category,
		Price:        p.Price,
		Image:        p.Image,
		IsActive:     p.IsActive,
		SalesCount:   p.SalesCount,
		Rating:       p.Rating,
		ReviewsCount: p.ReviewsCount,
		InStock:      true,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
	if inv != nil {
		available := inv.Available()
		dto.Stock = &inv.Quantity
		dto.ReservedStock = &inv.ReservedQuantity
		dto.AvailableStock = &available
		dto.InStock = available > 0
		dto.Tracked = true
	}
	return dto
}

func toInventoryDTO(inv domain.Inventory) InventoryDTO {
	return InventoryDTO{
		ProductID:         inv.ProductID,
		Quantity:          inv.Quantity,
		ReservedQuantity:  inv.ReservedQuantity,
		AvailableQuantity: inv.Available(),
		LowStockThreshold: inv.LowStockThreshold,
		LowStock:          inv.IsLowStock(),
		Location:          inv.Location,
		LastRestockedAt:   inv.LastRestockedAt,
		UpdatedAt:         inv.UpdatedAt,
	}
}
