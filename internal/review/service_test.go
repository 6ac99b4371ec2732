package review

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/craftmart/storefront/internal/store"
)

type fakeReviewStore struct {
	products  map[int64]store.Product
	delivered map[string]map[int64]bool
	reviews   map[int64][]store.Review
	refreshed []int64
}

func newFakeReviewStore() *fakeReviewStore {
	return &fakeReviewStore{
		products: map[int64]store.Product{
			1: {ID: 1, Name: "Terracotta vase"},
		},
		delivered: map[string]map[int64]bool{
			"buyer": {1: true},
		},
		reviews: map[int64][]store.Review{},
	}
}

func (f *fakeReviewStore) GetProduct(_ context.Context, id int64) (store.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return store.Product{}, store.ErrNotFound
	}
	return p, nil
}

func (f *fakeReviewStore) HasDeliveredProduct(_ context.Context, userID string, productID int64) (bool, error) {
	return f.delivered[userID][productID], nil
}

func (f *fakeReviewStore) CreateReview(_ context.Context, r store.Review) (store.Review, error) {
	f.reviews[r.ProductID] = append(f.reviews[r.ProductID], r)
	return r, nil
}

func (f *fakeReviewStore) ListReviewsByProduct(_ context.Context, productID int64) ([]store.Review, error) {
	return f.reviews[productID], nil
}

func (f *fakeReviewStore) HasReviewed(_ context.Context, userID string, productID int64) (bool, error) {
	for _, r := range f.reviews[productID] {
		if r.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeReviewStore) RefreshProductRating(_ context.Context, productID int64) error {
	f.refreshed = append(f.refreshed, productID)
	return nil
}

func TestAddRequiresDeliveredPurchase(t *testing.T) {
	fs := newFakeReviewStore()
	svc := &Service{Q: fs}

	_, err := svc.Add(context.Background(), "window-shopper", 1, 5, "looks nice")
	require.Error(t, err)
	require.Empty(t, fs.reviews[1])

	created, err := svc.Add(context.Background(), "buyer", 1, 5, "beautiful glaze")
	require.NoError(t, err)
	require.Equal(t, 5, created.Rating)
	require.Equal(t, []int64{1}, fs.refreshed, "rating aggregate must be refreshed")
}

func TestAddValidatesRatingBounds(t *testing.T) {
	svc := &Service{Q: newFakeReviewStore()}
	for _, rating := range []int{0, 6, -1} {
		_, err := svc.Add(context.Background(), "buyer", 1, rating, "")
		require.Error(t, err, "rating %d", rating)
	}
}

func TestAddUnknownProduct(t *testing.T) {
	svc := &Service{Q: newFakeReviewStore()}
	_, err := svc.Add(context.Background(), "buyer", 999, 4, "")
	require.Error(t, err)
}

func TestCheckReportsEligibility(t *testing.T) {
	fs := newFakeReviewStore()
	svc := &Service{Q: fs}

	res, err := svc.Check(context.Background(), "buyer", 1)
	require.NoError(t, err)
	require.True(t, res.Purchased)
	require.False(t, res.Reviewed)

	_, err = svc.Add(context.Background(), "buyer", 1, 4, "")
	require.NoError(t, err)

	res, err = svc.Check(context.Background(), "buyer", 1)
	require.NoError(t, err)
	require.True(t, res.Reviewed)
}
