package product

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
	apperrors "storefront/internal/errors"
	"storefront/internal/infrastructure/database"
)

type productService struct {
	db        database.TxBeginner
	repo      Repository
	inventory InventoryRepository
}

func NewService(db database.TxBeginner, repo Repository, inventory InventoryRepository) Service {
	return &productService{db: db, repo: repo, inventory: inventory}
}

func (s *productService) GetProductsByIDs(ctx context.Context, ids []string) ([]domain.Product, []string, error) {
	found, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}

	foundSet := make(map[string]struct{}, len(found))
	for _, p := range found {
		foundSet[p.ID] = struct{}{}
	}

	var notFoundIDs []string
	for _, id := range ids {
		if _, ok := foundSet[id]; !ok {
			notFoundIDs = append(notFoundIDs, id)
		}
	}

	return found, notFoundIDs, nil
}

func (s *productService) Stock(ctx context.Context, productIDs []string) (map[string]domain.Inventory, error) {
	return s.inventory.FindByProductIDs(ctx, productIDs)
}

// Get returns a product that has not been deleted.
func (s *productService) Get(ctx context.Context, id string) (*domain.Product, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.IsDeleted {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("product with id %s not found", id))
	}
	return p, nil
}

func (s *productService) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int, error) {
	return s.repo.List(ctx, filter)
}

// Create inserts the product and, when stock is given, its inventory row
// with a restock movement for the initial quantity.
func (s *productService) Create(ctx context.Context, p *domain.Product, stock *domain.Inventory, actor string) error {
	return database.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := s.repo.Insert(ctx, tx, p); err != nil {
			return err
		}
		if stock == nil {
			return nil
		}

		stock.ProductID = p.ID
		if err := s.inventory.Insert(ctx, tx, stock); err != nil {
			return err
		}
		if stock.Quantity == 0 {
			return nil
		}
		return s.inventory.InsertMovement(ctx, tx, newMovement(p.ID, domain.MovementRestock, stock.Quantity, actor))
	})
}

func (s *productService) Update(ctx context.Context, p *domain.Product) error {
	return s.repo.Update(ctx, p)
}

func (s *productService) Delete(ctx context.Context, id string) error {
	return s.repo.SoftDelete(ctx, id)
}

func (s *productService) ListInventory(ctx context.Context, filter domain.InventoryFilter) ([]domain.Inventory, error) {
	return s.inventory.List(ctx, filter)
}

func (s *productService) Restock(ctx context.Context, cmd RestockCommand) (*domain.Inventory, error) {
	var inv *domain.Inventory
	err := database.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		p, err := s.repo.FindByIDTx(ctx, tx, cmd.ProductID)
		if err != nil {
			return err
		}
		if p.IsDeleted {
			return apperrors.NewNotFoundError(fmt.Sprintf("product with id %s not found", cmd.ProductID))
		}

		added, err := s.inventory.AddStock(ctx, tx, cmd.ProductID, cmd.Quantity)
		if err != nil {
			return err
		}
		if added {
			if cmd.Location != nil || cmd.LowStockThreshold != nil {
				if err := s.inventory.UpdateSettings(ctx, tx, cmd.ProductID, cmd.Location, cmd.LowStockThreshold); err != nil {
					return err
				}
			}
		} else {
			row := &domain.Inventory{
				ProductID: cmd.ProductID,
				Quantity:  cmd.Quantity,
				Location:  cmd.Location,
			}
			if cmd.LowStockThreshold != nil {
				row.LowStockThreshold = *cmd.LowStockThreshold
			}
			now := time.Now().UTC()
			row.LastRestockedAt = &now
			if err := s.inventory.Insert(ctx, tx, row); err != nil {
				return err
			}
		}

		if err := s.inventory.InsertMovement(ctx, tx, newMovement(cmd.ProductID, domain.MovementRestock, cmd.Quantity, cmd.Actor)); err != nil {
			return err
		}

		inv, err = s.inventory.FindByProductIDForUpdate(ctx, tx, cmd.ProductID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *productService) ListMovements(ctx context.Context, productID string, limit int) ([]domain.InventoryMovement, error) {
	return s.inventory.ListMovements(ctx, productID, limit)
}

func newMovement(productID string, kind domain.MovementType, change int, actor string) *domain.InventoryMovement {
	ref := domain.ReferenceManual
	m := &domain.InventoryMovement{
		ProductID:      productID,
		MovementType:   kind,
		QuantityChange: change,
		ReferenceType:  &ref,
	}
	if actor != "" {
		m.CreatedBy = &actor
	}
	return m
}
