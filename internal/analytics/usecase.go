package analytics

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"storefront/internal/domain"
)

const topRated = 10

type analyticsUseCase struct {
	repo      Repository
	inventory InventoryRepository
	logger    *zap.Logger
}

func NewUseCase(repo Repository, inventory InventoryRepository, logger *zap.Logger) UseCase {
	return &analyticsUseCase{repo: repo, inventory: inventory, logger: logger}
}

// Dashboard loads the datasets of the period concurrently and reduces them
// in memory. The first failing query cancels the others.
func (uc *analyticsUseCase) Dashboard(ctx context.Context, period Period) (*DashboardResponse, error) {
	var data datasets
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		data.orders, err = uc.repo.OrdersBetween(gctx, period.Start, period.End)
		return err
	})
	g.Go(func() error {
		var err error
		data.items, err = uc.repo.ItemSalesBetween(gctx, period.Start, period.End)
		return err
	})
	g.Go(func() error {
		var err error
		data.products, err = uc.repo.TopProducts(gctx, topRated)
		return err
	})
	g.Go(func() error {
		var err error
		data.inventory, err = uc.inventory.List(gctx, domain.InventoryFilter{})
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	uc.logger.Debug("analytics datasets loaded",
		zap.Time("start", period.Start),
		zap.Time("end", period.End),
		zap.Int("orders", len(data.orders)),
		zap.Int("items", len(data.items)),
	)
	return &DashboardResponse{Analytics: summarize(period, data)}, nil
}
