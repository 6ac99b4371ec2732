package cart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/craftmart/storefront/internal/promo"
	"github.com/craftmart/storefront/internal/store"
)

type fakeCartStore struct {
	products map[int64]store.Product
	promos   map[string]store.Promotion
	carts    map[string]map[int64]int
}

func newFakeCartStore() *fakeCartStore {
	return &fakeCartStore{
		products: map[int64]store.Product{
			1: {ID: 1, Name: "Terracotta vase", Price: 100, OfferPrice: 80},
			2: {ID: 2, Name: "Silk scarf", Price: 50},
		},
		promos: map[string]store.Promotion{
			"SAVE10": {Code: "SAVE10", DiscountPercent: 10, Active: true},
		},
		carts: map[string]map[int64]int{},
	}
}

func (f *fakeCartStore) GetCart(_ context.Context, userID string) ([]store.CartItem, error) {
	var out []store.CartItem
	for pid, qty := range f.carts[userID] {
		out = append(out, store.CartItem{UserID: userID, ProductID: pid, Quantity: qty})
	}
	return out, nil
}

func (f *fakeCartStore) SetCartItem(_ context.Context, userID string, productID int64, quantity int) error {
	if f.carts[userID] == nil {
		f.carts[userID] = map[int64]int{}
	}
	if quantity <= 0 {
		delete(f.carts[userID], productID)
		return nil
	}
	f.carts[userID][productID] = quantity
	return nil
}

func (f *fakeCartStore) GetProduct(_ context.Context, id int64) (store.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return store.Product{}, store.ErrNotFound
	}
	return p, nil
}

func (f *fakeCartStore) GetProductsByIDs(_ context.Context, ids []int64) (map[int64]store.Product, error) {
	out := map[int64]store.Product{}
	for _, id := range ids {
		if p, ok := f.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (f *fakeCartStore) GetPromoByCode(_ context.Context, code string) (store.Promotion, error) {
	p, ok := f.promos[code]
	if !ok {
		return store.Promotion{}, store.ErrNotFound
	}
	return p, nil
}

func newCartService() (*Service, *fakeCartStore) {
	fs := newFakeCartStore()
	return &Service{Q: fs, Resolver: &promo.Resolver{Q: fs}, TaxBps: 200}, fs
}

func TestSetUsesMapSemantics(t *testing.T) {
	svc, fs := newCartService()
	ctx := context.Background()

	require.NoError(t, svc.Set(ctx, "u1", 1, 2))
	require.NoError(t, svc.Set(ctx, "u1", 1, 5))
	require.Equal(t, 5, fs.carts["u1"][1])

	require.NoError(t, svc.Set(ctx, "u1", 1, 0))
	_, ok := fs.carts["u1"][1]
	require.False(t, ok, "zero quantity must remove the line")

	require.NoError(t, svc.Set(ctx, "u1", 2, -3))
	_, ok = fs.carts["u1"][2]
	require.False(t, ok, "negative quantity must remove the line")
}

func TestSetRejectsUnknownProduct(t *testing.T) {
	svc, _ := newCartService()
	err := svc.Set(context.Background(), "u1", 999, 1)
	require.Error(t, err)
}

func TestGetToleratesDeletedProduct(t *testing.T) {
	svc, fs := newCartService()
	ctx := context.Background()
	require.NoError(t, svc.Set(ctx, "u1", 1, 2))
	require.NoError(t, svc.Set(ctx, "u1", 2, 1))

	// The listing disappears after it was added to the cart.
	delete(fs.products, 2)

	view, err := svc.Get(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, view.Items, 2)
	for _, it := range view.Items {
		if it.ProductID == 2 {
			require.Nil(t, it.Product)
		}
	}
	// 2 x 80 offer; the deleted product contributes nothing.
	require.Equal(t, int64(160), view.Subtotal)
}

func TestQuoteMatchesReferenceVector(t *testing.T) {
	svc, _ := newCartService()
	ctx := context.Background()
	require.NoError(t, svc.Set(ctx, "u1", 1, 2))
	require.NoError(t, svc.Set(ctx, "u1", 2, 1))

	q, err := svc.Quote(ctx, "u1", "save10")
	require.NoError(t, err)
	require.Equal(t, int64(210), q.Subtotal)
	require.Equal(t, int64(21), q.Discount)
	require.Equal(t, int64(3), q.Tax)
	require.Equal(t, int64(192), q.Total)
	require.True(t, q.Promo.Applied)
}

func TestQuoteEmptyCartRefusesPromo(t *testing.T) {
	svc, _ := newCartService()
	q, err := svc.Quote(context.Background(), "u1", "SAVE10")
	require.NoError(t, err)
	require.True(t, q.Promo.Refused)
	require.Zero(t, q.Total)
}
