package review

import (
	"context"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"storefront/internal/domain"
	apperrors "storefront/internal/errors"
	"storefront/internal/httpx"
)

type reviewUseCase struct {
	service Service
	policy  *bluemonday.Policy
}

func NewUseCase(service Service) UseCase {
	return &reviewUseCase{
		service: service,
		policy:  bluemonday.StrictPolicy(),
	}
}

// ListReviews shows approved reviews to everyone but admins, who may filter
// by any moderation status.
func (uc *reviewUseCase) ListReviews(ctx context.Context, filter domain.ReviewFilter, actor domain.Actor) (*ListReviewsResponse, error) {
	if !actor.Admin {
		filter.Status = string(domain.ModerationApproved)
	}
	if filter.Status != "" && !domain.ModerationStatus(filter.Status).Valid() {
		return nil, apperrors.NewValidationError("invalid status", apperrors.ValidationDetail{
			Field:   "status",
			Message: "status must be one of pending, approved, rejected",
		})
	}

	found, total, err := uc.service.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	dtos := make([]ReviewDTO, len(found))
	for i, r := range found {
		dtos[i] = toReviewDTO(r)
	}
	return &ListReviewsResponse{
		Reviews:    dtos,
		Pagination: httpx.NewPagination(filter.Page, filter.Limit, total),
	}, nil
}

func (uc *reviewUseCase) CreateReview(ctx context.Context, req CreateReviewRequest, actor domain.Actor) (*ReviewDTO, error) {
	if actor.UserID == "" {
		return nil, apperrors.NewUnauthorizedError("authentication required")
	}

	review := &domain.Review{
		ProductID: req.ProductID,
		UserID:    actor.UserID,
		OrderID:   req.OrderID,
		Rating:    req.Rating,
		Title:     uc.sanitize(req.Title),
		Comment:   uc.sanitize(req.Comment),
	}
	if err := uc.service.Create(ctx, review); err != nil {
		return nil, err
	}

	dto := toReviewDTO(*review)
	return &dto, nil
}

func (uc *reviewUseCase) UpdateReview(ctx context.Context, id string, req UpdateReviewRequest, actor domain.Actor) (*ReviewDTO, error) {
	upd := ReviewUpdate{
		AdminResponse: uc.sanitize(req.AdminResponse),
		Rating:        req.Rating,
		Title:         uc.sanitize(req.Title),
		Comment:       uc.sanitize(req.Comment),
	}
	if req.ModerationStatus != nil {
		status := domain.ModerationStatus(*req.ModerationStatus)
		upd.ModerationStatus = &status
	}
	if !upd.moderates() && !upd.editsContent() {
		return nil, apperrors.NewValidationError("nothing to update")
	}

	review, err := uc.service.Update(ctx, id, upd, actor)
	if err != nil {
		return nil, err
	}
	dto := toReviewDTO(*review)
	return &dto, nil
}

func (uc *reviewUseCase) DeleteReview(ctx context.Context, id string, actor domain.Actor) error {
	return uc.service.Delete(ctx, id, actor)
}

func (uc *reviewUseCase) Vote(ctx context.Context, id string, req VoteRequest, actor domain.Actor) (*VoteResponse, error) {
	if actor.UserID == "" {
		return nil, apperrors.NewUnauthorizedError("authentication required")
	}
	count, err := uc.service.Vote(ctx, id, actor.UserID, *req.IsHelpful)
	if err != nil {
		return nil, err
	}
	return &VoteResponse{HelpfulCount: count}, nil
}

// sanitize strips markup from user text. Text that is empty afterwards is
// dropped.
func (uc *reviewUseCase) sanitize(s *string) *string {
	if s == nil {
		return nil
	}
	clean := strings.TrimSpace(html.UnescapeString(uc.policy.Sanitize(*s)))
	if clean == "" {
		return nil
	}
	return &clean
}
