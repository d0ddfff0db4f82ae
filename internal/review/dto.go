package review

import (
	"time"

	"storefront/internal/domain"
	"storefront/internal/httpx"
)

type CreateReviewRequest struct {
	ProductID string  `json:"product_id" validate:"required"`
	OrderID   *string `json:"order_id" validate:"omitempty,min=1"`
	Rating    int     `json:"rating" validate:"required,min=1,max=5"`
	Title     *string `json:"title" validate:"omitempty,max=200"`
	Comment   *string `json:"comment" validate:"omitempty,max=5000"`
}

type UpdateReviewRequest struct {
	ModerationStatus *string `json:"moderation_status" validate:"omitempty,oneof=pending approved rejected"`
	AdminResponse    *string `json:"admin_response" validate:"omitempty,max=2000"`
	Rating           *int    `json:"rating" validate:"omitempty,min=1,max=5"`
	Title            *string `json:"title" validate:"omitempty,max=200"`
	Comment          *string `json:"comment" validate:"omitempty,max=5000"`
}

type VoteRequest struct {
	IsHelpful *bool `json:"is_helpful" validate:"required"`
}

type VoteResponse struct {
	HelpfulCount int `json:"helpful_count"`
}

type ReviewDTO struct {
	ID                 string     `json:"id"`
	ProductID          string     `json:"productId"`
	UserID             string     `json:"userId"`
	OrderID            *string    `json:"orderId"`
	Rating             int        `json:"rating"`
	Title              *string    `json:"title"`
	Comment            *string    `json:"comment"`
	IsVerifiedPurchase bool       `json:"isVerifiedPurchase"`
	ModerationStatus   string     `json:"moderationStatus"`
	AdminResponse      *string    `json:"adminResponse"`
	AdminResponseAt    *time.Time `json:"adminResponseAt"`
	HelpfulCount       int        `json:"helpfulCount"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

type ListReviewsResponse struct {
	Reviews    []ReviewDTO      `json:"reviews"`
	Pagination httpx.Pagination `json:"pagination"`
}

func toReviewDTO(r domain.Review) ReviewDTO {
	return ReviewDTO{
		ID:                 r.ID,
		ProductID:          r.ProductID,
		UserID:             r.UserID,
		OrderID:            r.OrderID,
		Rating:             r.Rating,
		Title:              r.Title,
		Comment:            r.Comment,
		IsVerifiedPurchase: r.IsVerifiedPurchase,
		ModerationStatus:   string(r.ModerationStatus),
		AdminResponse:      r.AdminResponse,
		AdminResponseAt:    r.AdminResponseAt,
		HelpfulCount:       r.HelpfulCount,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}
