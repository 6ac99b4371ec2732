// Package order implements checkout and order management. Order creation is
// queue-first with a direct-write fallback; both paths share one client
// request id, so at most one order exists per checkout.
package order

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/craftmart/storefront/internal/common"
	"github.com/craftmart/storefront/internal/obs"
	"github.com/craftmart/storefront/internal/pricing"
	"github.com/craftmart/storefront/internal/promo"
	"github.com/craftmart/storefront/internal/store"
)

// Querier is the slice of the store the order service needs.
type Querier interface {
	GetProductsByIDs(ctx context.Context, ids []int64) (map[int64]store.Product, error)
	GetAddress(ctx context.Context, id int64, userID string) (store.Address, error)
	CreateOrder(ctx context.Context, draft store.OrderDraft) (store.Order, bool, error)
	ClearCart(ctx context.Context, userID string) error
	ListOrdersByUser(ctx context.Context, userID string) ([]store.Order, error)
	ListAllOrders(ctx context.Context, limit, offset int) ([]store.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, status string) error
}

// Enqueuer hands an order draft to the background queue.
type Enqueuer interface {
	Enqueue(ctx context.Context, draft store.OrderDraft) error
}

// ErrAlreadyQueued signals that a draft with the same request id is already
// on the queue. Checkout treats it as success.
var ErrAlreadyQueued = errors.New("order: draft already queued")

// Service orchestrates checkout and order reads.
type Service struct {
	Q        Querier
	Queue    Enqueuer
	Resolver *promo.Resolver
	TaxBps   int
	Log      zerolog.Logger
}

// ItemInput is one requested order line.
type ItemInput struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// CheckoutInput is the payload for creating an order.
type CheckoutInput struct {
	Items     []ItemInput `json:"items"`
	AddressID int64       `json:"addressId"`
	PromoCode string      `json:"promoCode"`
	RequestID string      `json:"requestId"`
}

// CheckoutResult reports how the order was created and at what price.
type CheckoutResult struct {
	OrderID   *int64           `json:"orderId,omitempty"`
	RequestID string           `json:"requestId"`
	Queued    bool             `json:"queued"`
	Pricing   pricing.Quote    `json:"pricing"`
	Promo     promo.Resolution `json:"promo"`
}

// Checkout validates and prices the request, then enqueues the order draft.
// When the broker rejects the enqueue the draft is written directly in the
// same request. The cart is cleared only after a successful persist, and a
// failed clear is logged rather than surfaced.
func (s *Service) Checkout(ctx context.Context, userID string, in CheckoutInput) (CheckoutResult, error) {
	items, err := normalizeItems(in.Items)
	if err != nil {
		return CheckoutResult{}, err
	}
	if _, err := s.Q.GetAddress(ctx, in.AddressID, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return CheckoutResult{}, common.NotFound("address not found")
		}
		return CheckoutResult{}, err
	}

	ids := make([]int64, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	products, err := s.Q.GetProductsByIDs(ctx, ids)
	if err != nil {
		return CheckoutResult{}, err
	}
	// Unlike display paths, checkout refuses to charge for listings that no
	// longer exist.
	lines := make([]pricing.Line, 0, len(items))
	for _, it := range items {
		p, ok := products[it.ProductID]
		if !ok {
			return CheckoutResult{}, common.NotFound("product not found")
		}
		lines = append(lines, pricing.Line{Qty: it.Quantity, Product: &pricing.ProductPrice{ListPrice: p.Price, OfferPrice: p.OfferPrice}})
	}

	subtotal := pricing.Subtotal(lines)
	res, err := s.Resolver.Resolve(ctx, in.PromoCode, userID, subtotal)
	if err != nil {
		return CheckoutResult{}, err
	}
	quote := pricing.Compute(subtotal, res.Discount, s.TaxBps)

	requestID := in.RequestID
	if requestID == "" {
		requestID = uuid.NewString()
	}
	draft := store.OrderDraft{
		UserID:          userID,
		AddressID:       in.AddressID,
		Items:           items,
		DiscountAmount:  quote.Discount,
		AmountSnapshot:  quote.Total,
		ClientRequestID: requestID,
	}
	if res.Applied {
		code := res.Code
		draft.PromoCode = &code
	}

	result := CheckoutResult{RequestID: requestID, Pricing: quote, Promo: res}

	if s.Queue != nil {
		err := s.Queue.Enqueue(ctx, draft)
		if err == nil || errors.Is(err, ErrAlreadyQueued) {
			countOrder("queued", "ok")
			result.Queued = true
			return result, nil
		}
		s.Log.Warn().Err(err).Str("request_id", requestID).Msg("enqueue failed, falling back to direct write")
		if obs.CheckoutFallbackTotal != nil {
			obs.CheckoutFallbackTotal.Inc()
		}
	}

	order, _, err := s.Q.CreateOrder(ctx, draft)
	if err != nil {
		countOrder("direct", "error")
		return CheckoutResult{}, err
	}
	countOrder("direct", "ok")
	s.clearCart(ctx, userID, order.ID)
	result.OrderID = &order.ID
	return result, nil
}

func (s *Service) clearCart(ctx context.Context, userID string, orderID int64) {
	if err := s.Q.ClearCart(ctx, userID); err != nil {
		// The order stands; the stale cart is an inconvenience, not a failure.
		s.Log.Error().Err(err).Str("user_id", userID).Int64("order_id", orderID).Msg("cart clear failed after order persist")
		if obs.CartClearFailures != nil {
			obs.CartClearFailures.Inc()
		}
	}
}

func normalizeItems(in []ItemInput) ([]store.OrderItem, error) {
	if len(in) == 0 {
		return nil, common.Invalid("order must contain at least one item", nil)
	}
	seen := make(map[int64]bool, len(in))
	out := make([]store.OrderItem, 0, len(in))
	for _, it := range in {
		if it.ProductID <= 0 || it.Quantity <= 0 {
			return nil, common.Invalid("items must have positive productId and quantity", nil)
		}
		if seen[it.ProductID] {
			return nil, common.Invalid("duplicate productId in items", nil)
		}
		seen[it.ProductID] = true
		out = append(out, store.OrderItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return out, nil
}

func countOrder(path, result string) {
	if obs.OrdersCreatedTotal != nil {
		obs.OrdersCreatedTotal.WithLabelValues(path, result).Inc()
	}
}

// UpdateStatus sets an order's status after validating enum membership.
// Transitions are deliberately unguarded so sellers can correct mistakes.
func (s *Service) UpdateStatus(ctx context.Context, orderID int64, status string) error {
	if !store.ValidStatus(status) {
		return common.Invalid("unknown order status", map[string]any{"status": status})
	}
	err := s.Q.UpdateOrderStatus(ctx, orderID, status)
	if errors.Is(err, store.ErrNotFound) {
		return common.NotFound("order not found")
	}
	return err
}
