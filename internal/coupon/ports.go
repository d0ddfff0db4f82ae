package coupon

import (
	"context"

	"storefront/internal/domain"
)

type UseCase interface {
	Validate(ctx context.Context, req ValidateCouponRequest, userID string) (*ValidateCouponResponse, error)
	ListCoupons(ctx context.Context) (*ListCouponsResponse, error)
	CreateCoupon(ctx context.Context, req CreateCouponRequest) (*CouponDTO, error)
	UpdateCoupon(ctx context.Context, id string, req UpdateCouponRequest) (*CouponDTO, error)
	DeleteCoupon(ctx context.Context, id string) error
}

type Repository interface {
	FindByID(ctx context.Context, id string) (*domain.Coupon, error)
	FindByCode(ctx context.Context, code string) (*domain.Coupon, error)
	List(ctx context.Context) ([]domain.Coupon, error)
	Insert(ctx context.Context, c *domain.Coupon) error
	Update(ctx context.Context, c *domain.Coupon) error
	Delete(ctx context.Context, id string) error
	HasUsage(ctx context.Context, couponID, userID string) (bool, error)
}
