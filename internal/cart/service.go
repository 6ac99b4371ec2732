// Package cart implements the per-user cart. Storage is a productID to
// quantity map: setting a non-positive quantity removes the entry.
package cart

import (
	"context"
	"errors"

	"github.com/craftmart/storefront/internal/common"
	"github.com/craftmart/storefront/internal/pricing"
	"github.com/craftmart/storefront/internal/promo"
	"github.com/craftmart/storefront/internal/store"
)

// Querier is the slice of the store the cart service needs.
type Querier interface {
	GetCart(ctx context.Context, userID string) ([]store.CartItem, error)
	SetCartItem(ctx context.Context, userID string, productID int64, quantity int) error
	GetProduct(ctx context.Context, id int64) (store.Product, error)
	GetProductsByIDs(ctx context.Context, ids []int64) (map[int64]store.Product, error)
}

// Service hydrates and mutates carts and produces pricing quotes.
type Service struct {
	Q        Querier
	Resolver *promo.Resolver
	TaxBps   int
}

// ViewItem is one hydrated cart line. Product is nil when the listing has
// been deleted; the line still renders and prices at zero.
type ViewItem struct {
	ProductID int64          `json:"productId"`
	Quantity  int            `json:"quantity"`
	Product   *store.Product `json:"product"`
}

// View is the hydrated cart plus its running subtotal.
type View struct {
	Items    []ViewItem    `json:"items"`
	Subtotal pricing.Money `json:"subtotal"`
}

// Get returns the hydrated cart for a user.
func (s *Service) Get(ctx context.Context, userID string) (View, error) {
	items, err := s.Q.GetCart(ctx, userID)
	if err != nil {
		return View{}, err
	}
	return s.hydrate(ctx, items)
}

func (s *Service) hydrate(ctx context.Context, items []store.CartItem) (View, error) {
	ids := make([]int64, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	products, err := s.Q.GetProductsByIDs(ctx, ids)
	if err != nil {
		return View{}, err
	}

	view := View{Items: make([]ViewItem, 0, len(items))}
	lines := make([]pricing.Line, 0, len(items))
	for _, it := range items {
		vi := ViewItem{ProductID: it.ProductID, Quantity: it.Quantity}
		if p, ok := products[it.ProductID]; ok {
			cp := p
			vi.Product = &cp
			lines = append(lines, pricing.Line{Qty: it.Quantity, Product: &pricing.ProductPrice{ListPrice: cp.Price, OfferPrice: cp.OfferPrice}})
		} else {
			lines = append(lines, pricing.Line{Qty: it.Quantity})
		}
		view.Items = append(view.Items, vi)
	}
	view.Subtotal = pricing.Subtotal(lines)
	return view, nil
}

// Set writes the absolute quantity for one product. Quantities of zero or
// less remove the line. The product must exist when adding.
func (s *Service) Set(ctx context.Context, userID string, productID int64, quantity int) error {
	if productID <= 0 {
		return common.Invalid("productId must be positive", nil)
	}
	if quantity > 0 {
		if _, err := s.Q.GetProduct(ctx, productID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return common.NotFound("product not found")
			}
			return err
		}
	}
	return s.Q.SetCartItem(ctx, userID, productID, quantity)
}

// QuoteResult pairs the pricing quote with the promo resolution behind it.
type QuoteResult struct {
	pricing.Quote
	Promo promo.Resolution `json:"promo"`
}

// Quote prices the user's cart with an optional promo code. This is the
// server-side twin of the client-side order summary: the same pipeline runs
// again at checkout, so the figures cannot drift.
func (s *Service) Quote(ctx context.Context, userID, promoCode string) (QuoteResult, error) {
	view, err := s.Get(ctx, userID)
	if err != nil {
		return QuoteResult{}, err
	}
	res, err := s.Resolver.Resolve(ctx, promoCode, userID, view.Subtotal)
	if err != nil {
		return QuoteResult{}, err
	}
	return QuoteResult{
		Quote: pricing.Compute(view.Subtotal, res.Discount, s.TaxBps),
		Promo: res,
	}, nil
}
