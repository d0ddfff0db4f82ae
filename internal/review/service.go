package review

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"storefront/internal/domain"
	apperrors "storefront/internal/errors"
	"storefront/internal/infrastructure/database"
)

type reviewService struct {
	db       database.TxBeginner
	repo     Repository
	products ProductRepository
	logger   *zap.Logger
	now      func() time.Time
}

func NewService(db database.TxBeginner, repo Repository, products ProductRepository, logger *zap.Logger) Service {
	return &reviewService{
		db:       db,
		repo:     repo,
		products: products,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *reviewService) List(ctx context.Context, filter domain.ReviewFilter) ([]domain.Review, int, error) {
	return s.repo.List(ctx, filter)
}

// Create stores a pending review. It is marked as a verified purchase when
// OrderID names one of the author's shipped or delivered orders containing
// the product.
func (s *reviewService) Create(ctx context.Context, review *domain.Review) error {
	return database.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		product, err := s.products.FindByIDTx(ctx, tx, review.ProductID)
		if err != nil {
			return err
		}
		if product.IsDeleted {
			return apperrors.NewNotFoundError("product with id " + review.ProductID + " not found")
		}

		review.IsVerifiedPurchase = false
		if review.OrderID != nil {
			status, found, err := s.repo.PurchaseStatus(ctx, tx, *review.OrderID, review.UserID, review.ProductID)
			if err != nil {
				return err
			}
			review.IsVerifiedPurchase = found && domain.VerifiesPurchase(status)
		}

		review.ModerationStatus = domain.ModerationPending
		review.HelpfulCount = 0
		return s.repo.Insert(ctx, tx, review)
	})
}

func (s *reviewService) Update(ctx context.Context, id string, upd ReviewUpdate, actor domain.Actor) (*domain.Review, error) {
	var review *domain.Review
	err := database.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		var err error
		review, err = s.repo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if upd.moderates() && !actor.Admin {
			return apperrors.NewForbiddenError("only admins can moderate reviews")
		}
		if upd.editsContent() && actor.UserID != review.UserID {
			return apperrors.NewForbiddenError("you can only edit your own reviews")
		}

		prevStatus, prevRating := review.ModerationStatus, review.Rating

		if upd.editsContent() {
			if upd.Rating != nil {
				review.Rating = *upd.Rating
			}
			if upd.Title != nil {
				review.Title = upd.Title
			}
			if upd.Comment != nil {
				review.Comment = upd.Comment
			}
			review.ModerationStatus = domain.ModerationPending
		}
		if upd.ModerationStatus != nil {
			review.ModerationStatus = *upd.ModerationStatus
		}
		if upd.AdminResponse != nil {
			now := s.now()
			review.AdminResponse = upd.AdminResponse
			review.AdminResponseAt = &now
		}

		if err := s.repo.Update(ctx, tx, review); err != nil {
			return err
		}

		if review.ModerationStatus != prevStatus || review.Rating != prevRating {
			return s.refreshRating(ctx, tx, review.ProductID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return review, nil
}

func (s *reviewService) Delete(ctx context.Context, id string, actor domain.Actor) error {
	return database.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		review, err := s.repo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if !actor.Admin && actor.UserID != review.UserID {
			return apperrors.NewForbiddenError("you can only delete your own reviews")
		}
		if err := s.repo.Delete(ctx, tx, id); err != nil {
			return err
		}
		if review.ModerationStatus == domain.ModerationApproved {
			return s.refreshRating(ctx, tx, review.ProductID)
		}
		return nil
	})
}

// Vote records the caller's helpful vote and returns the new helpful count.
func (s *reviewService) Vote(ctx context.Context, id, userID string, helpful bool) (int, error) {
	var count int
	err := database.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if _, err := s.repo.FindByIDForUpdate(ctx, tx, id); err != nil {
			return err
		}
		if err := s.repo.UpsertVote(ctx, tx, id, userID, helpful); err != nil {
			return err
		}
		var err error
		count, err = s.repo.RecountHelpful(ctx, tx, id)
		return err
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (s *reviewService) refreshRating(ctx context.Context, tx *sqlx.Tx, productID string) error {
	rating, count, err := s.repo.RatingSummary(ctx, tx, productID)
	if err != nil {
		return err
	}
	if err := s.products.UpdateRating(ctx, tx, productID, rating, count); err != nil {
		return err
	}

	s.logger.Debug("product rating refreshed",
		zap.String("productId", productID),
		zap.String("rating", rating.StringFixed(2)),
		zap.Int("reviewsCount", count),
	)
	return nil
}
