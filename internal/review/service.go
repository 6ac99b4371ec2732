// Package review implements purchase-gated product reviews.
package review

import (
	"context"
	"errors"
	"strings"

	"github.com/craftmart/storefront/internal/common"
	"github.com/craftmart/storefront/internal/store"
)

// Querier is the slice of the store the review service needs.
type Querier interface {
	GetProduct(ctx context.Context, id int64) (store.Product, error)
	HasDeliveredProduct(ctx context.Context, userID string, productID int64) (bool, error)
	CreateReview(ctx context.Context, r store.Review) (store.Review, error)
	ListReviewsByProduct(ctx context.Context, productID int64) ([]store.Review, error)
	HasReviewed(ctx context.Context, userID string, productID int64) (bool, error)
	RefreshProductRating(ctx context.Context, productID int64) error
}

// Service enforces review rules.
type Service struct {
	Q Querier
}

// Add records a review. Only buyers with a delivered order containing the
// product may review it; a second review from the same buyer replaces the first.
func (s *Service) Add(ctx context.Context, userID string, productID int64, rating int, comment string) (store.Review, error) {
	if rating < 1 || rating > 5 {
		return store.Review{}, common.Invalid("rating must be between 1 and 5", nil)
	}
	if _, err := s.Q.GetProduct(ctx, productID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.Review{}, common.NotFound("product not found")
		}
		return store.Review{}, err
	}
	purchased, err := s.Q.HasDeliveredProduct(ctx, userID, productID)
	if err != nil {
		return store.Review{}, err
	}
	if !purchased {
		return store.Review{}, common.Forbidden("reviews require a delivered purchase of this product")
	}

	created, err := s.Q.CreateReview(ctx, store.Review{
		ProductID: productID,
		UserID:    userID,
		Rating:    rating,
		Comment:   strings.TrimSpace(comment),
	})
	if err != nil {
		return store.Review{}, err
	}
	if err := s.Q.RefreshProductRating(ctx, productID); err != nil {
		return store.Review{}, err
	}
	return created, nil
}

// List returns a product's reviews.
func (s *Service) List(ctx context.Context, productID int64) ([]store.Review, error) {
	return s.Q.ListReviewsByProduct(ctx, productID)
}

// CheckResult reports whether the user may review and whether they already have.
type CheckResult struct {
	Purchased bool `json:"purchased"`
	Reviewed  bool `json:"reviewed"`
}

// Check reports the user's review eligibility for a product.
func (s *Service) Check(ctx context.Context, userID string, productID int64) (CheckResult, error) {
	purchased, err := s.Q.HasDeliveredProduct(ctx, userID, productID)
	if err != nil {
		return CheckResult{}, err
	}
	reviewed, err := s.Q.HasReviewed(ctx, userID, productID)
	if err != nil {
		return CheckResult{}, err
	}
	return CheckResult{Purchased: purchased, Reviewed: reviewed}, nil
}
