// Package pricing is the single source of truth for money math. Cart quotes,
// order creation, and order display all go through the same pipeline so that
// the total shown after the fact always matches the total charged at checkout.
package pricing

import "math"

// Money represents a monetary value in whole currency units.
type Money = int64

// ProductPrice carries the catalog price fields relevant to charging.
type ProductPrice struct {
	ListPrice  float64
	OfferPrice float64
}

// Line pairs an ordered quantity with the product it references. Product is
// nil when the referenced product no longer exists; such lines price at zero
// instead of failing the whole computation.
type Line struct {
	Qty     int
	Product *ProductPrice
}

// Quote aggregates the computed pricing components.
type Quote struct {
	Subtotal Money `json:"subtotal"`
	Discount Money `json:"discount"`
	Tax      Money `json:"tax"`
	Total    Money `json:"total"`
}

// UnitPrice resolves the effective unit price: the offer price when it is a
// positive number, otherwise the list price, otherwise zero. Malformed values
// (negative, NaN, infinite) degrade to zero.
func UnitPrice(p *ProductPrice) float64 {
	if p == nil {
		return 0
	}
	if valid(p.OfferPrice) && p.OfferPrice > 0 {
		return p.OfferPrice
	}
	if valid(p.ListPrice) && p.ListPrice > 0 {
		return p.ListPrice
	}
	return 0
}

// Subtotal sums UnitPrice x Qty across all lines and rounds the result to the
// nearest whole currency unit. Lines with a non-positive quantity or a missing
// product contribute nothing. The sum is order independent.
func Subtotal(lines []Line) Money {
	var sum float64
	for _, ln := range lines {
		if ln.Qty <= 0 {
			continue
		}
		sum += UnitPrice(ln.Product) * float64(ln.Qty)
	}
	if sum <= 0 {
		return 0
	}
	return Money(math.Round(sum))
}

// Discount computes floor(subtotal x percent / 100), capped so the result
// never exceeds the subtotal. Out-of-range percentages yield zero.
func Discount(subtotal Money, percent int) Money {
	if subtotal <= 0 || percent <= 0 {
		return 0
	}
	d := subtotal * Money(percent) / 100
	if d > subtotal {
		d = subtotal
	}
	return d
}

// Compute applies the discount and then the tax to produce the payable total.
// The order of truncation is fixed and load bearing: the subtotal is already
// rounded, the discount already floored; taxable clamps at zero, tax floors
// via integer division. Tax is always computed on the post-discount base.
func Compute(subtotal, discount Money, taxBps int) Quote {
	if subtotal < 0 {
		subtotal = 0
	}
	if discount < 0 {
		discount = 0
	}
	if discount > subtotal {
		discount = subtotal
	}
	taxable := subtotal - discount
	if taxable < 0 {
		taxable = 0
	}
	var tax Money
	if taxBps > 0 {
		tax = taxable * Money(taxBps) / 10000
	}
	return Quote{
		Subtotal: subtotal,
		Discount: discount,
		Tax:      tax,
		Total:    taxable + tax,
	}
}

func valid(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
