package analytics

import (
	"context"
	"time"

	"storefront/internal/domain"
)

type UseCase interface {
	Dashboard(ctx context.Context, period Period) (*DashboardResponse, error)
}

type Repository interface {
	OrdersBetween(ctx context.Context, from, to time.Time) ([]domain.OrderSnapshot, error)
	ItemSalesBetween(ctx context.Context, from, to time.Time) ([]domain.ItemSale, error)
	TopProducts(ctx context.Context, limit int) ([]domain.ProductStat, error)
}

type InventoryRepository interface {
	List(ctx context.Context, filter domain.InventoryFilter) ([]domain.Inventory, error)
}

// Period is the half-open interval [Start, End) a dashboard covers.
type Period struct {
	Start time.Time
	End   time.Time
}
