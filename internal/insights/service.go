// Package insights serves the AI-assisted analytics endpoints: catalog
// search, related-product recommendations, and a demand forecast. All three
// run on local scoring over data already in the store, so they keep working
// with no external inference service.
package insights

import (
	"context"
	"errors"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/craftmart/storefront/internal/common"
	"github.com/craftmart/storefront/internal/store"
)

// catalogScanLimit bounds how much of the catalog a single insight request scores.
const catalogScanLimit = 500

// Querier is the slice of the store the insights service needs.
type Querier interface {
	ListProducts(ctx context.Context, f store.ProductFilter) ([]store.Product, int, error)
	GetProduct(ctx context.Context, id int64) (store.Product, error)
	SalesByProductSince(ctx context.Context, since time.Time) ([]store.ProductSales, error)
}

// Service computes insights with an injected cache.
type Service struct {
	Q     Querier
	Cache *Cache
	Now   func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Search scores the catalog against a free-text query and returns the top 10.
func (s *Service) Search(ctx context.Context, query string) ([]ScoredProduct, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, common.Invalid("query is required", nil)
	}
	key := Key("search", strings.ToLower(query))
	var cached []ScoredProduct
	if s.Cache.Get(ctx, "search", key, &cached) {
		return cached, nil
	}

	products, _, err := s.Q.ListProducts(ctx, store.ProductFilter{Limit: catalogScanLimit})
	if err != nil {
		return nil, err
	}
	result := rank(products, query, 10)
	s.Cache.Set(ctx, key, result)
	return result, nil
}

// Recommendation is a related product with its affinity score.
type Recommendation struct {
	Product store.Product `json:"product"`
	Score   float64       `json:"score"`
}

// Recommendations returns up to 5 products related to the given one:
// same category first, then price proximity and rating.
func (s *Service) Recommendations(ctx context.Context, productID int64) ([]Recommendation, error) {
	key := Key("recommendations", strconv.FormatInt(productID, 10))
	var cached []Recommendation
	if s.Cache.Get(ctx, "recommendations", key, &cached) {
		return cached, nil
	}

	base, err := s.Q.GetProduct(ctx, productID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, common.NotFound("product not found")
	}
	if err != nil {
		return nil, err
	}
	candidates, _, err := s.Q.ListProducts(ctx, store.ProductFilter{Category: base.Category, Limit: catalogScanLimit})
	if err != nil {
		return nil, err
	}

	basePrice := base.OfferPrice
	if basePrice <= 0 {
		basePrice = base.Price
	}
	var recs []Recommendation
	for _, c := range candidates {
		if c.ID == base.ID {
			continue
		}
		price := c.OfferPrice
		if price <= 0 {
			price = c.Price
		}
		proximity := 1.0
		if basePrice > 0 {
			proximity = 1 / (1 + math.Abs(price-basePrice)/basePrice)
		}
		recs = append(recs, Recommendation{Product: c, Score: proximity*3 + c.RatingAverage})
	}
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].Score != recs[j].Score {
			return recs[i].Score > recs[j].Score
		}
		return recs[i].Product.ID < recs[j].Product.ID
	})
	if len(recs) > 5 {
		recs = recs[:5]
	}
	s.Cache.Set(ctx, key, recs)
	return recs, nil
}

// ForecastWindow is the trailing period one forecast covers.
const ForecastWindow = 30 * 24 * time.Hour

// Forecast projects next-window demand for one product.
type Forecast struct {
	ProductID      int64  `json:"productId"`
	Name           string `json:"name"`
	Category       string `json:"category"`
	UnitsSold      int64  `json:"unitsSold"`
	ProjectedUnits int64  `json:"projectedUnits"`
	Trend          string `json:"trend"`
}

// DemandForecast compares the last window against the one before it and
// projects the next window linearly.
func (s *Service) DemandForecast(ctx context.Context) ([]Forecast, error) {
	key := Key("forecast")
	var cached []Forecast
	if s.Cache.Get(ctx, "forecast", key, &cached) {
		return cached, nil
	}

	now := s.now()
	lastWindow, err := s.Q.SalesByProductSince(ctx, now.Add(-ForecastWindow))
	if err != nil {
		return nil, err
	}
	bothWindows, err := s.Q.SalesByProductSince(ctx, now.Add(-2*ForecastWindow))
	if err != nil {
		return nil, err
	}

	last := map[int64]store.ProductSales{}
	for _, ps := range lastWindow {
		last[ps.ProductID] = ps
	}

	out := make([]Forecast, 0, len(bothWindows))
	for _, total := range bothWindows {
		recent := last[total.ProductID].Units
		previous := total.Units - recent

		projected := recent + (recent - previous)
		if projected < 0 {
			projected = 0
		}
		trend := "steady"
		switch {
		case float64(recent) > float64(previous)*1.1:
			trend = "rising"
		case float64(recent) < float64(previous)*0.9:
			trend = "falling"
		}
		out = append(out, Forecast{
			ProductID:      total.ProductID,
			Name:           total.Name,
			Category:       total.Category,
			UnitsSold:      recent,
			ProjectedUnits: projected,
			Trend:          trend,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UnitsSold != out[j].UnitsSold {
			return out[i].UnitsSold > out[j].UnitsSold
		}
		return out[i].ProductID < out[j].ProductID
	})
	s.Cache.Set(ctx, key, out)
	return out, nil
}
