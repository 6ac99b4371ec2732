package order

import (
	"context"
	"time"

	"github.com/craftmart/storefront/internal/pricing"
	"github.com/craftmart/storefront/internal/store"
)

// LineView is a hydrated order line. Product is nil when the listing has
// since been deleted; the line still renders and contributes zero.
type LineView struct {
	ProductID int64          `json:"productId"`
	Quantity  int            `json:"quantity"`
	Product   *store.Product `json:"product"`
}

// View is an order prepared for display. Pricing is recomputed from the
// persisted items, current catalog prices, and the stored discount through
// the same pipeline that priced the checkout; AmountSnapshot is the figure
// frozen at creation and is returned alongside, never recomputed.
type View struct {
	ID             int64         `json:"id"`
	UserID         string        `json:"userId"`
	AddressID      int64         `json:"addressId"`
	Items          []LineView    `json:"items"`
	PromoCode      *string       `json:"promoCode,omitempty"`
	Status         string        `json:"status"`
	AmountSnapshot int64         `json:"amountSnapshot"`
	Pricing        pricing.Quote `json:"pricing"`
	CreatedAt      time.Time     `json:"createdAt"`
}

// Display hydrates orders and recomputes their display totals.
func (s *Service) Display(ctx context.Context, orders []store.Order) ([]View, error) {
	idSet := map[int64]bool{}
	var ids []int64
	for _, o := range orders {
		for _, it := range o.Items {
			if !idSet[it.ProductID] {
				idSet[it.ProductID] = true
				ids = append(ids, it.ProductID)
			}
		}
	}
	products, err := s.Q.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]View, 0, len(orders))
	for _, o := range orders {
		v := View{
			ID:             o.ID,
			UserID:         o.UserID,
			AddressID:      o.AddressID,
			PromoCode:      o.PromoCode,
			Status:         o.Status,
			AmountSnapshot: o.AmountSnapshot,
			CreatedAt:      o.CreatedAt,
			Items:          make([]LineView, 0, len(o.Items)),
		}
		lines := make([]pricing.Line, 0, len(o.Items))
		for _, it := range o.Items {
			lv := LineView{ProductID: it.ProductID, Quantity: it.Quantity}
			if p, ok := products[it.ProductID]; ok {
				cp := p
				lv.Product = &cp
				lines = append(lines, pricing.Line{Qty: it.Quantity, Product: &pricing.ProductPrice{ListPrice: cp.Price, OfferPrice: cp.OfferPrice}})
			} else {
				lines = append(lines, pricing.Line{Qty: it.Quantity})
			}
			v.Items = append(v.Items, lv)
		}
		subtotal := pricing.Subtotal(lines)
		v.Pricing = pricing.Compute(subtotal, o.DiscountAmount, s.TaxBps)
		views = append(views, v)
	}
	return views, nil
}

// ListMine returns the user's orders prepared for display.
func (s *Service) ListMine(ctx context.Context, userID string) ([]View, error) {
	orders, err := s.Q.ListOrdersByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.Display(ctx, orders)
}

// ListAll returns a page of every order prepared for display.
func (s *Service) ListAll(ctx context.Context, limit, offset int) ([]View, error) {
	orders, err := s.Q.ListAllOrders(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	return s.Display(ctx, orders)
}
