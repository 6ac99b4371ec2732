package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/craftmart/storefront/internal/common"
	"github.com/craftmart/storefront/internal/store"
)

const defaultListKey = "catalog:list:default"

// Querier is the slice of the store the catalog service needs.
type Querier interface {
	ListProducts(ctx context.Context, f store.ProductFilter) ([]store.Product, int, error)
	GetProduct(ctx context.Context, id int64) (store.Product, error)
	CreateProduct(ctx context.Context, p store.Product) (store.Product, error)
	UpdateProduct(ctx context.Context, p store.Product) (store.Product, error)
	DeleteProduct(ctx context.Context, id int64, sellerID string) error
	ListSellerProducts(ctx context.Context, sellerID string, limit, offset int) ([]store.Product, int, error)
}

// Service orchestrates catalog queries and caching.
type Service struct {
	Q     Querier
	Cache *Cache
}

// ListResult is a page of products plus its total.
type ListResult struct {
	Items []store.Product `json:"items"`
	Total int             `json:"total"`
}

// List returns a filtered catalog page. The unfiltered first page is served
// from cache when available since it backs the storefront landing view.
func (s *Service) List(ctx context.Context, f store.ProductFilter) (ListResult, error) {
	cacheable := f.Category == "" && f.Search == "" && f.Offset == 0
	if cacheable {
		var cached ListResult
		if ok, err := s.Cache.GetJSON(ctx, defaultListKey, &cached); err == nil && ok {
			return cached, nil
		}
	}

	items, total, err := s.Q.ListProducts(ctx, f)
	if err != nil {
		return ListResult{}, err
	}
	result := ListResult{Items: items, Total: total}
	if cacheable {
		_ = s.Cache.SetJSON(ctx, defaultListKey, result)
	}
	return result, nil
}

// Get fetches one product.
func (s *Service) Get(ctx context.Context, id int64) (store.Product, error) {
	p, err := s.Q.GetProduct(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return store.Product{}, common.NotFound("product not found")
	}
	return p, err
}

// ProductInput is the seller-facing create/update payload.
type ProductInput struct {
	Name        string   `json:"name" validate:"required,min=2,max=200"`
	Description string   `json:"description" validate:"max=5000"`
	Category    string   `json:"category" validate:"required,min=2,max=60"`
	Price       float64  `json:"price" validate:"gte=0"`
	OfferPrice  float64  `json:"offerPrice" validate:"gte=0"`
	Images      []string `json:"images" validate:"dive,url"`
}

func validateOffer(in ProductInput) error {
	if in.OfferPrice > 0 && in.OfferPrice > in.Price {
		return common.Invalid("offerPrice must not exceed price", nil)
	}
	return nil
}

// CreateListing adds a product owned by the seller.
func (s *Service) CreateListing(ctx context.Context, sellerID string, in ProductInput) (store.Product, error) {
	if err := validateOffer(in); err != nil {
		return store.Product{}, err
	}
	created, err := s.Q.CreateProduct(ctx, store.Product{
		SellerID:    sellerID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Category:    strings.TrimSpace(in.Category),
		Price:       in.Price,
		OfferPrice:  in.OfferPrice,
		Images:      in.Images,
	})
	if err != nil {
		return store.Product{}, err
	}
	s.Cache.Invalidate(ctx, defaultListKey)
	return created, nil
}

// UpdateListing modifies a product owned by the seller.
func (s *Service) UpdateListing(ctx context.Context, sellerID string, id int64, in ProductInput) (store.Product, error) {
	if err := validateOffer(in); err != nil {
		return store.Product{}, err
	}
	updated, err := s.Q.UpdateProduct(ctx, store.Product{
		ID:          id,
		SellerID:    sellerID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Category:    strings.TrimSpace(in.Category),
		Price:       in.Price,
		OfferPrice:  in.OfferPrice,
		Images:      in.Images,
	})
	if errors.Is(err, store.ErrNotFound) {
		return store.Product{}, common.NotFound("product not found")
	}
	if err != nil {
		return store.Product{}, err
	}
	s.Cache.Invalidate(ctx, defaultListKey)
	return updated, nil
}

// DeleteListing removes a product owned by the seller. Carts and orders keep
// their references; pricing treats the missing product as worth zero.
func (s *Service) DeleteListing(ctx context.Context, sellerID string, id int64) error {
	err := s.Q.DeleteProduct(ctx, id, sellerID)
	if errors.Is(err, store.ErrNotFound) {
		return common.NotFound("product not found")
	}
	if err != nil {
		return err
	}
	s.Cache.Invalidate(ctx, defaultListKey)
	return nil
}

// SellerListings returns the seller's own products.
func (s *Service) SellerListings(ctx context.Context, sellerID string, limit, offset int) (ListResult, error) {
	items, total, err := s.Q.ListSellerProducts(ctx, sellerID, limit, offset)
	if err != nil {
		return ListResult{}, err
	}
	return ListResult{Items: items, Total: total}, nil
}
