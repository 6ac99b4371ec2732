// Package promo holds promotion management and the promo code resolver used
// by cart quotes and checkout.
package promo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/craftmart/storefront/internal/obs"
	"github.com/craftmart/storefront/internal/pricing"
	"github.com/craftmart/storefront/internal/store"
)

// Querier is the slice of the store the resolver needs.
type Querier interface {
	GetPromoByCode(ctx context.Context, code string) (store.Promotion, error)
}

// Resolution is the outcome of resolving a promo code against a subtotal.
// A failed resolution is not an error: pricing proceeds with zero discount.
type Resolution struct {
	Code     string        `json:"code,omitempty"`
	Percent  int           `json:"percent,omitempty"`
	Discount pricing.Money `json:"discount"`
	Applied  bool          `json:"applied"`
	Refused  bool          `json:"refused,omitempty"`
	Reason   string        `json:"reason,omitempty"`
}

// Normalize trims and uppercases a raw promo code.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Resolver evaluates promo codes. Now is injectable for expiry tests.
type Resolver struct {
	Q   Querier
	Now func() time.Time
}

func (r *Resolver) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Resolve evaluates the code for the user against the given subtotal.
// An empty code resolves to a zero discount. A non-empty code on an empty
// cart is refused with a descriptive reason; every other failure degrades to
// a zero-discount resolution carrying the reason.
func (r *Resolver) Resolve(ctx context.Context, rawCode, userID string, subtotal pricing.Money) (Resolution, error) {
	code := Normalize(rawCode)
	if code == "" {
		return Resolution{}, nil
	}
	if subtotal <= 0 {
		return r.outcome(Resolution{Code: code, Refused: true, Reason: "promo codes cannot be applied to an empty cart"}), nil
	}

	p, err := r.Q.GetPromoByCode(ctx, code)
	if errors.Is(err, store.ErrNotFound) {
		return r.outcome(Resolution{Code: code, Reason: "unknown promo code"}), nil
	}
	if err != nil {
		return Resolution{}, err
	}
	if !p.Active {
		return r.outcome(Resolution{Code: code, Reason: "promo code is no longer active"}), nil
	}
	if p.ExpiresAt != nil && r.now().After(*p.ExpiresAt) {
		return r.outcome(Resolution{Code: code, Reason: "promo code has expired"}), nil
	}
	if len(p.AllowedUserIDs) > 0 && !contains(p.AllowedUserIDs, userID) {
		return r.outcome(Resolution{Code: code, Reason: "promo code is not available for this account"}), nil
	}

	return r.outcome(Resolution{
		Code:     code,
		Percent:  p.DiscountPercent,
		Discount: pricing.Discount(subtotal, p.DiscountPercent),
		Applied:  true,
	}), nil
}

func (r *Resolver) outcome(res Resolution) Resolution {
	if obs.PromoResolutionsTotal != nil {
		result := "zero"
		switch {
		case res.Applied:
			result = "applied"
		case res.Refused:
			result = "refused"
		}
		obs.PromoResolutionsTotal.WithLabelValues(result).Inc()
	}
	return res
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
