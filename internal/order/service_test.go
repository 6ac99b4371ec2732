package order

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/craftmart/storefront/internal/promo"
	"github.com/craftmart/storefront/internal/store"
)

type fakeOrderStore struct {
	products  map[int64]store.Product
	promos    map[string]store.Promotion
	addresses map[int64]store.Address
	orders    []store.Order
	byRequest map[string]int64
	carts     map[string]bool

	clearErr error
	nextID   int64
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{
		products: map[int64]store.Product{
			1: {ID: 1, Name: "Terracotta vase", Price: 100, OfferPrice: 80},
			2: {ID: 2, Name: "Silk scarf", Price: 50},
		},
		promos: map[string]store.Promotion{
			"SAVE10": {Code: "SAVE10", DiscountPercent: 10, Active: true},
		},
		addresses: map[int64]store.Address{
			7: {ID: 7, UserID: "u1", FullName: "Asha", City: "Jaipur"},
		},
		byRequest: map[string]int64{},
		carts:     map[string]bool{"u1": true},
	}
}

func (f *fakeOrderStore) GetProductsByIDs(_ context.Context, ids []int64) (map[int64]store.Product, error) {
	out := map[int64]store.Product{}
	for _, id := range ids {
		if p, ok := f.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (f *fakeOrderStore) GetAddress(_ context.Context, id int64, userID string) (store.Address, error) {
	a, ok := f.addresses[id]
	if !ok || a.UserID != userID {
		return store.Address{}, store.ErrNotFound
	}
	return a, nil
}

func (f *fakeOrderStore) CreateOrder(_ context.Context, draft store.OrderDraft) (store.Order, bool, error) {
	if id, ok := f.byRequest[draft.ClientRequestID]; ok {
		for _, o := range f.orders {
			if o.ID == id {
				return o, false, nil
			}
		}
	}
	f.nextID++
	o := store.Order{
		ID:              f.nextID,
		UserID:          draft.UserID,
		AddressID:       draft.AddressID,
		Items:           draft.Items,
		PromoCode:       draft.PromoCode,
		DiscountAmount:  draft.DiscountAmount,
		AmountSnapshot:  draft.AmountSnapshot,
		Status:          store.StatusPlaced,
		ClientRequestID: draft.ClientRequestID,
	}
	f.orders = append(f.orders, o)
	f.byRequest[draft.ClientRequestID] = o.ID
	return o, true, nil
}

func (f *fakeOrderStore) ClearCart(_ context.Context, userID string) error {
	if f.clearErr != nil {
		return f.clearErr
	}
	delete(f.carts, userID)
	return nil
}

func (f *fakeOrderStore) ListOrdersByUser(_ context.Context, userID string) ([]store.Order, error) {
	var out []store.Order
	for _, o := range f.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrderStore) ListAllOrders(_ context.Context, _, _ int) ([]store.Order, error) {
	return append([]store.Order(nil), f.orders...), nil
}

func (f *fakeOrderStore) UpdateOrderStatus(_ context.Context, orderID int64, status string) error {
	for i := range f.orders {
		if f.orders[i].ID == orderID {
			f.orders[i].Status = status
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeOrderStore) GetPromoByCode(_ context.Context, code string) (store.Promotion, error) {
	p, ok := f.promos[code]
	if !ok {
		return store.Promotion{}, store.ErrNotFound
	}
	return p, nil
}

type fakeQueue struct {
	err      error
	enqueued []store.OrderDraft
}

func (q *fakeQueue) Enqueue(_ context.Context, draft store.OrderDraft) error {
	if q.err != nil {
		return q.err
	}
	q.enqueued = append(q.enqueued, draft)
	return nil
}

func newOrderService(fs *fakeOrderStore, q Enqueuer) *Service {
	return &Service{
		Q:        fs,
		Queue:    q,
		Resolver: &promo.Resolver{Q: fs},
		TaxBps:   200,
		Log:      zerolog.Nop(),
	}
}

var referenceItems = []ItemInput{
	{ProductID: 1, Quantity: 2},
	{ProductID: 2, Quantity: 1},
}

func TestCheckoutQueuesDraft(t *testing.T) {
	fs := newFakeOrderStore()
	q := &fakeQueue{}
	svc := newOrderService(fs, q)

	res, err := svc.Checkout(context.Background(), "u1", CheckoutInput{
		Items: referenceItems, AddressID: 7, PromoCode: "save10", RequestID: "req-1",
	})
	require.NoError(t, err)
	require.True(t, res.Queued)
	require.Nil(t, res.OrderID)
	require.Equal(t, "req-1", res.RequestID)
	require.Len(t, q.enqueued, 1)
	require.Equal(t, int64(21), q.enqueued[0].DiscountAmount)
	require.Equal(t, int64(192), q.enqueued[0].AmountSnapshot)
	// No direct write happened.
	require.Empty(t, fs.orders)
	// Cart is only cleared once the order is persisted.
	require.True(t, fs.carts["u1"])
}

func TestCheckoutFallsBackToDirectWrite(t *testing.T) {
	fs := newFakeOrderStore()
	q := &fakeQueue{err: errors.New("broker down")}
	svc := newOrderService(fs, q)

	res, err := svc.Checkout(context.Background(), "u1", CheckoutInput{
		Items: referenceItems, AddressID: 7, PromoCode: "SAVE10", RequestID: "req-2",
	})
	require.NoError(t, err)
	require.False(t, res.Queued)
	require.NotNil(t, res.OrderID)
	require.Len(t, fs.orders, 1, "fallback writes exactly one order")
	require.Equal(t, int64(192), fs.orders[0].AmountSnapshot)
	require.False(t, fs.carts["u1"], "cart cleared after successful persist")
}

func TestCheckoutTreatsQueueConflictAsQueued(t *testing.T) {
	fs := newFakeOrderStore()
	q := &fakeQueue{err: ErrAlreadyQueued}
	svc := newOrderService(fs, q)

	res, err := svc.Checkout(context.Background(), "u1", CheckoutInput{
		Items: referenceItems, AddressID: 7, RequestID: "req-3",
	})
	require.NoError(t, err)
	require.True(t, res.Queued)
	require.Empty(t, fs.orders)
}

func TestCheckoutCartClearFailureIsNotSurfaced(t *testing.T) {
	fs := newFakeOrderStore()
	fs.clearErr = errors.New("redis timeout")
	svc := newOrderService(fs, &fakeQueue{err: errors.New("broker down")})

	res, err := svc.Checkout(context.Background(), "u1", CheckoutInput{
		Items: referenceItems, AddressID: 7, RequestID: "req-4",
	})
	require.NoError(t, err, "clear failure must not fail the checkout")
	require.NotNil(t, res.OrderID)
	require.Len(t, fs.orders, 1)
}

func TestCheckoutRejectsUnknownProduct(t *testing.T) {
	fs := newFakeOrderStore()
	svc := newOrderService(fs, &fakeQueue{})

	_, err := svc.Checkout(context.Background(), "u1", CheckoutInput{
		Items: []ItemInput{{ProductID: 999, Quantity: 1}}, AddressID: 7,
	})
	require.Error(t, err)
}

func TestCheckoutRejectsEmptyItemsAndForeignAddress(t *testing.T) {
	fs := newFakeOrderStore()
	svc := newOrderService(fs, &fakeQueue{})

	_, err := svc.Checkout(context.Background(), "u1", CheckoutInput{AddressID: 7})
	require.Error(t, err)

	_, err = svc.Checkout(context.Background(), "u2", CheckoutInput{Items: referenceItems, AddressID: 7})
	require.Error(t, err)
}

func TestCheckoutEmptySubtotalRefusesPromoButCharges(t *testing.T) {
	fs := newFakeOrderStore()
	// A cart holding only a deleted product would normally be stopped by the
	// existence check; a product that prices at zero is the reachable case.
	fs.products[3] = store.Product{ID: 3, Name: "Freebie", Price: 0}
	svc := newOrderService(fs, &fakeQueue{})

	res, err := svc.Checkout(context.Background(), "u1", CheckoutInput{
		Items: []ItemInput{{ProductID: 3, Quantity: 1}}, AddressID: 7, PromoCode: "SAVE10", RequestID: "req-5",
	})
	require.NoError(t, err)
	require.True(t, res.Promo.Refused)
	require.Zero(t, res.Pricing.Total)
}

// Checkout, queued persistence, and order display must all agree on the
// reference cart: subtotal 210, discount 21, tax 3, total 192.
func TestCheckoutAndDisplayAgree(t *testing.T) {
	fs := newFakeOrderStore()
	q := &fakeQueue{}
	svc := newOrderService(fs, q)

	res, err := svc.Checkout(context.Background(), "u1", CheckoutInput{
		Items: referenceItems, AddressID: 7, PromoCode: "SAVE10", RequestID: "req-6",
	})
	require.NoError(t, err)
	require.Equal(t, int64(192), res.Pricing.Total)

	// The worker persists the queued draft.
	payload, err := json.Marshal(q.enqueued[0])
	require.NoError(t, err)
	worker := &Worker{S: fs, Log: zerolog.Nop()}
	require.NoError(t, worker.ProcessTask(context.Background(), asynq.NewTask(TaskOrderCreate, payload)))
	require.Len(t, fs.orders, 1)
	require.False(t, fs.carts["u1"], "worker clears the cart after persisting")

	// Redelivery of the same task is harmless.
	require.NoError(t, worker.ProcessTask(context.Background(), asynq.NewTask(TaskOrderCreate, payload)))
	require.Len(t, fs.orders, 1)

	views, err := svc.ListMine(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.Equal(t, int64(210), views[0].Pricing.Subtotal)
	require.Equal(t, int64(21), views[0].Pricing.Discount)
	require.Equal(t, int64(3), views[0].Pricing.Tax)
	require.Equal(t, int64(192), views[0].Pricing.Total)
	require.Equal(t, int64(192), views[0].AmountSnapshot)
}

func TestDisplayToleratesDeletedProduct(t *testing.T) {
	fs := newFakeOrderStore()
	svc := newOrderService(fs, &fakeQueue{err: errors.New("broker down")})

	_, err := svc.Checkout(context.Background(), "u1", CheckoutInput{
		Items: referenceItems, AddressID: 7, RequestID: "req-7",
	})
	require.NoError(t, err)

	// The scarf is delisted after the order was placed.
	delete(fs.products, 2)

	views, err := svc.ListMine(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, views, 1)
	for _, it := range views[0].Items {
		if it.ProductID == 2 {
			require.Nil(t, it.Product)
		}
	}
	// 2 x 80 offer; the deleted line contributes zero.
	require.Equal(t, int64(160), views[0].Pricing.Subtotal)
	// The snapshot keeps the figure charged at checkout.
	require.Equal(t, int64(214), views[0].AmountSnapshot)
}

func TestUpdateStatusValidatesEnumOnly(t *testing.T) {
	fs := newFakeOrderStore()
	svc := newOrderService(fs, &fakeQueue{err: errors.New("broker down")})

	_, err := svc.Checkout(context.Background(), "u1", CheckoutInput{
		Items: referenceItems, AddressID: 7, RequestID: "req-8",
	})
	require.NoError(t, err)
	orderID := fs.orders[0].ID

	require.Error(t, svc.UpdateStatus(context.Background(), orderID, "TELEPORTED"))
	require.NoError(t, svc.UpdateStatus(context.Background(), orderID, store.StatusDelivered))
	// Transitions are unguarded: moving backwards is allowed.
	require.NoError(t, svc.UpdateStatus(context.Background(), orderID, store.StatusProcessing))
}

func TestCheckoutIdempotentPerRequestID(t *testing.T) {
	fs := newFakeOrderStore()
	svc := newOrderService(fs, &fakeQueue{err: errors.New("broker down")})

	first, err := svc.Checkout(context.Background(), "u1", CheckoutInput{
		Items: referenceItems, AddressID: 7, RequestID: "req-9",
	})
	require.NoError(t, err)

	second, err := svc.Checkout(context.Background(), "u1", CheckoutInput{
		Items: referenceItems, AddressID: 7, RequestID: "req-9",
	})
	require.NoError(t, err)
	require.Len(t, fs.orders, 1, "same request id must not create a second order")
	require.Equal(t, *first.OrderID, *second.OrderID)
}

func TestCheckoutWithoutPromoDraftsNilCode(t *testing.T) {
	fs := newFakeOrderStore()
	q := &fakeQueue{}
	svc := newOrderService(fs, q)

	res, err := svc.Checkout(context.Background(), "u1", CheckoutInput{
		Items: referenceItems, AddressID: 7, RequestID: "req-10",
	})
	require.NoError(t, err)
	require.True(t, res.Queued)
	require.Len(t, q.enqueued, 1)
	// No promo applied means no code on the draft at all, never an empty string.
	require.Nil(t, q.enqueued[0].PromoCode)
	require.Zero(t, q.enqueued[0].DiscountAmount)

	payload, err := json.Marshal(q.enqueued[0])
	require.NoError(t, err)
	worker := &Worker{S: fs, Log: zerolog.Nop()}
	require.NoError(t, worker.ProcessTask(context.Background(), asynq.NewTask(TaskOrderCreate, payload)))
	require.Len(t, fs.orders, 1)
	require.Nil(t, fs.orders[0].PromoCode)
}
