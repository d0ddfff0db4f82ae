package returns

import (
	"context"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
)

type UseCase interface {
	CreateReturn(ctx context.Context, req CreateReturnRequest, actor domain.Actor) (*ReturnDTO, error)
	ListReturns(ctx context.Context, filter domain.ReturnFilter, actor domain.Actor) (*ListReturnsResponse, error)
	GetReturn(ctx context.Context, id string, actor domain.Actor) (*ReturnDTO, error)
	UpdateReturn(ctx context.Context, id string, req UpdateReturnRequest, actor domain.Actor) (*ReturnDTO, error)
}

type Service interface {
	Create(ctx context.Context, ret *domain.Return, actor domain.Actor) error
	Get(ctx context.Context, id string) (*domain.Return, error)
	List(ctx context.Context, filter domain.ReturnFilter) ([]domain.Return, int, error)
	Update(ctx context.Context, id string, upd ReturnUpdate, actor domain.Actor) (*domain.Return, error)
}

type Repository interface {
	FindByID(ctx context.Context, id string) (*domain.Return, error)
	FindByIDForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*domain.Return, error)
	HasActive(ctx context.Context, tx *sqlx.Tx, orderID string, orderItemID *string) (bool, error)
	List(ctx context.Context, filter domain.ReturnFilter) ([]domain.Return, int, error)
	Insert(ctx context.Context, tx *sqlx.Tx, ret *domain.Return) error
	Update(ctx context.Context, tx *sqlx.Tx, ret *domain.Return) error
}

type OrderRepository interface {
	FindByIDForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*domain.Order, error)
	Update(ctx context.Context, tx *sqlx.Tx, order *domain.Order) error
	InsertHistory(ctx context.Context, tx *sqlx.Tx, h *domain.OrderStatusHistory) error
}

type OrderItemRepository interface {
	FindByOrderIDTx(ctx context.Context, tx *sqlx.Tx, orderID string) ([]domain.OrderItem, error)
}

type InventoryRepository interface {
	AddStock(ctx context.Context, tx *sqlx.Tx, productID string, quantity int) (bool, error)
	InsertMovement(ctx context.Context, tx *sqlx.Tx, m *domain.InventoryMovement) error
}

// ReturnUpdate carries the optional changes of a return update.
type ReturnUpdate struct {
	Status          *domain.ReturnStatus
	RejectionReason *string
	TrackingNumber  *string
}

func (u ReturnUpdate) OnlyCancellation() bool {
	return u.Status != nil && *u.Status == domain.ReturnCancelled &&
		u.RejectionReason == nil && u.TrackingNumber == nil
}
