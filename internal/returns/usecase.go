package returns

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/domain"
	apperrors "storefront/internal/errors"
	"storefront/internal/httpx"
)

type returnUseCase struct {
	service Service
}

func NewUseCase(service Service) UseCase {
	return &returnUseCase{service: service}
}

func (uc *returnUseCase) CreateReturn(ctx context.Context, req CreateReturnRequest, actor domain.Actor) (*ReturnDTO, error) {
	returnType := domain.ReturnType(req.ReturnType)
	if returnType == "" {
		returnType = domain.ReturnTypeRefund
	}
	if returnType == domain.ReturnTypeExchange && req.ExchangeProductID == nil {
		return nil, apperrors.NewValidationError("exchange_product_id is required for exchanges", apperrors.ValidationDetail{
			Field:   "exchange_product_id",
			Message: "exchange_product_id is required when return_type is exchange",
		})
	}

	ret := &domain.Return{
		OrderID:     req.OrderID,
		OrderItemID: req.OrderItemID,
		Reason:      strings.TrimSpace(req.Reason),
		Description: req.Description,
		ReturnType:  returnType,
	}
	if returnType == domain.ReturnTypeExchange {
		ret.ExchangeProductID = req.ExchangeProductID
	}

	if err := uc.service.Create(ctx, ret, actor); err != nil {
		return nil, err
	}

	dto := toReturnDTO(*ret)
	return &dto, nil
}

func (uc *returnUseCase) ListReturns(ctx context.Context, filter domain.ReturnFilter, actor domain.Actor) (*ListReturnsResponse, error) {
	if !actor.Admin {
		filter.UserID = actor.UserID
	}
	if filter.Status != "" && !domain.ReturnStatus(filter.Status).Valid() {
		return nil, apperrors.NewValidationError("invalid status", apperrors.ValidationDetail{
			Field:   "status",
			Message: "status must be one of pending, approved, rejected, picked_up, received, processed, refunded, cancelled",
		})
	}

	found, total, err := uc.service.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	dtos := make([]ReturnDTO, len(found))
	for i, r := range found {
		dtos[i] = toReturnDTO(r)
	}
	return &ListReturnsResponse{
		Returns:    dtos,
		Pagination: httpx.NewPagination(filter.Page, filter.Limit, total),
	}, nil
}

// GetReturn hides returns of other customers behind a not found error.
func (uc *returnUseCase) GetReturn(ctx context.Context, id string, actor domain.Actor) (*ReturnDTO, error) {
	ret, err := uc.service.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Admin && ret.UserID != actor.UserID {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("return with id %s not found", id))
	}

	dto := toReturnDTO(*ret)
	return &dto, nil
}

func (uc *returnUseCase) UpdateReturn(ctx context.Context, id string, req UpdateReturnRequest, actor domain.Actor) (*ReturnDTO, error) {
	ret, err := uc.service.Update(ctx, id, req.toUpdate(), actor)
	if err != nil {
		return nil, err
	}

	dto := toReturnDTO(*ret)
	return &dto, nil
}
