package coupon

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	apperrors "storefront/internal/errors"
)

var maxPercentage = decimal.NewFromInt(100)

type couponUseCase struct {
	repo Repository
	now  func() time.Time
}

func NewUseCase(repo Repository) UseCase {
	return &couponUseCase{repo: repo, now: time.Now}
}

// Validate checks a code against a cart subtotal for userID and computes the
// discount it would grant.
func (uc *couponUseCase) Validate(ctx context.Context, req ValidateCouponRequest, userID string) (*ValidateCouponResponse, error) {
	if req.Subtotal.IsNegative() {
		return nil, apperrors.NewValidationError("invalid subtotal", apperrors.ValidationDetail{
			Field:   "subtotal",
			Message: "subtotal must be non-negative",
		})
	}

	c, err := uc.repo.FindByCode(ctx, req.Code)
	if err != nil {
		return nil, err
	}

	if err := c.CheckApplicable(uc.now().UTC(), req.Subtotal); err != nil {
		return nil, err
	}

	used, err := uc.repo.HasUsage(ctx, c.ID, userID)
	if err != nil {
		return nil, err
	}
	if used {
		return nil, apperrors.NewValidationError("you have already used this coupon", apperrors.ValidationDetail{
			Field:   "code",
			Message: "you have already used this coupon",
		})
	}

	return &ValidateCouponResponse{
		Valid:          true,
		Coupon:         toCouponDTO(*c),
		DiscountAmount: c.Discount(req.Subtotal),
	}, nil
}

func (uc *couponUseCase) ListCoupons(ctx context.Context) (*ListCouponsResponse, error) {
	coupons, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	dtos := make([]CouponDTO, len(coupons))
	for i, c := range coupons {
		dtos[i] = toCouponDTO(c)
	}
	return &ListCouponsResponse{Coupons: dtos}, nil
}

func (uc *couponUseCase) CreateCoupon(ctx context.Context, req CreateCouponRequest) (*CouponDTO, error) {
	c := &domain.Coupon{
		Code:              req.Code,
		Name:              req.Name,
		DiscountType:      domain.DiscountType(req.DiscountType),
		DiscountValue:     req.DiscountValue,
		MinPurchaseAmount: toNull(req.MinPurchaseAmount),
		MaxDiscountAmount: toNull(req.MaxDiscountAmount),
		UsageLimit:        req.UsageLimit,
		ValidFrom:         req.ValidFrom,
		ValidUntil:        req.ValidUntil,
		IsActive:          true,
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}

	if err := checkCoupon(c); err != nil {
		return nil, err
	}
	if err := uc.repo.Insert(ctx, c); err != nil {
		return nil, err
	}

	dto := toCouponDTO(*c)
	return &dto, nil
}

func (uc *couponUseCase) UpdateCoupon(ctx context.Context, id string, req UpdateCouponRequest) (*CouponDTO, error) {
	c, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Code != nil {
		c.Code = *req.Code
	}
	if req.Name != nil {
		c.Name = req.Name
	}
	if req.DiscountType != nil {
		c.DiscountType = domain.DiscountType(*req.DiscountType)
	}
	if req.DiscountValue != nil {
		c.DiscountValue = *req.DiscountValue
	}
	if req.MinPurchaseAmount != nil {
		c.MinPurchaseAmount = toNull(req.MinPurchaseAmount)
	}
	if req.MaxDiscountAmount != nil {
		c.MaxDiscountAmount = toNull(req.MaxDiscountAmount)
	}
	if req.UsageLimit != nil {
		c.UsageLimit = req.UsageLimit
	}
	if req.ValidFrom != nil {
		c.ValidFrom = req.ValidFrom
	}
	if req.ValidUntil != nil {
		c.ValidUntil = req.ValidUntil
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}

	if err := checkCoupon(c); err != nil {
		return nil, err
	}
	if err := uc.repo.Update(ctx, c); err != nil {
		return nil, err
	}

	dto := toCouponDTO(*c)
	return &dto, nil
}

func (uc *couponUseCase) DeleteCoupon(ctx context.Context, id string) error {
	return uc.repo.Delete(ctx, id)
}

func checkCoupon(c *domain.Coupon) error {
	var details []apperrors.ValidationDetail

	if domain.NormalizeCouponCode(c.Code) == "" {
		details = append(details, apperrors.ValidationDetail{Field: "code", Message: "code is required"})
	}
	if !c.DiscountValue.IsPositive() {
		details = append(details, apperrors.ValidationDetail{Field: "discount_value", Message: "discount_value must be positive"})
	}
	if c.DiscountType == domain.DiscountPercentage && c.DiscountValue.GreaterThan(maxPercentage) {
		details = append(details, apperrors.ValidationDetail{Field: "discount_value", Message: "percentage discount must not exceed 100"})
	}
	if c.MinPurchaseAmount.Valid && c.MinPurchaseAmount.Decimal.IsNegative() {
		details = append(details, apperrors.ValidationDetail{Field: "min_purchase_amount", Message: "min_purchase_amount must be non-negative"})
	}
	if c.MaxDiscountAmount.Valid && !c.MaxDiscountAmount.Decimal.IsPositive() {
		details = append(details, apperrors.ValidationDetail{Field: "max_discount_amount", Message: "max_discount_amount must be positive"})
	}
	if c.ValidFrom != nil && c.ValidUntil != nil && !c.ValidUntil.After(*c.ValidFrom) {
		details = append(details, apperrors.ValidationDetail{Field: "valid_until", Message: "valid_until must be after valid_from"})
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("invalid coupon", details...)
	}
	return nil
}
