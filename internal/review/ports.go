package review

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

type UseCase interface {
	ListReviews(ctx context.Context, filter domain.ReviewFilter, actor domain.Actor) (*ListReviewsResponse, error)
	CreateReview(ctx context.Context, req CreateReviewRequest, actor domain.Actor) (*ReviewDTO, error)
	UpdateReview(ctx context.Context, id string, req UpdateReviewRequest, actor domain.Actor) (*ReviewDTO, error)
	DeleteReview(ctx context.Context, id string, actor domain.Actor) error
	Vote(ctx context.Context, id string, req VoteRequest, actor domain.Actor) (*VoteResponse, error)
}

type Service interface {
	List(ctx context.Context, filter domain.ReviewFilter) ([]domain.Review, int, error)
	Create(ctx context.Context, review *domain.Review) error
	Update(ctx context.Context, id string, upd ReviewUpdate, actor domain.Actor) (*domain.Review, error)
	Delete(ctx context.Context, id string, actor domain.Actor) error
	Vote(ctx context.Context, id, userID string, helpful bool) (int, error)
}

type Repository interface {
	FindByID(ctx context.Context, id string) (*domain.Review, error)
	FindByIDForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*domain.Review, error)
	List(ctx context.Context, filter domain.ReviewFilter) ([]domain.Review, int, error)
	Insert(ctx context.Context, tx *sqlx.Tx, review *domain.Review) error
	Update(ctx context.Context, tx *sqlx.Tx, review *domain.Review) error
	Delete(ctx context.Context, tx *sqlx.Tx, id string) error
	PurchaseStatus(ctx context.Context, tx *sqlx.Tx, orderID, userID, productID string) (domain.OrderStatus, bool, error)
	RatingSummary(ctx context.Context, tx *sqlx.Tx, productID string) (decimal.Decimal, int, error)
	UpsertVote(ctx context.Context, tx *sqlx.Tx, reviewID, userID string, helpful bool) error
	RecountHelpful(ctx context.Context, tx *sqlx.Tx, reviewID string) (int, error)
}

type ProductRepository interface {
	FindByIDTx(ctx context.Context, tx *sqlx.Tx, id string) (*domain.Product, error)
	UpdateRating(ctx context.Context, tx *sqlx.Tx, id string, rating decimal.Decimal, reviewsCount int) error
}

// ReviewUpdate carries the optional changes of a review update. Moderation
// fields are reserved for admins, content fields for the author.
type ReviewUpdate struct {
	ModerationStatus *domain.ModerationStatus
	AdminResponse    *string
	Rating           *int
	Title            *string
	Comment          *string
}

func (u ReviewUpdate) moderates() bool {
	return u.ModerationStatus != nil || u.AdminResponse != nil
}

func (u ReviewUpdate) editsContent() bool {
	return u.Rating != nil || u.Title != nil || u.Comment != nil
}
