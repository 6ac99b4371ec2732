package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/craftmart/storefront/internal/common"
	"github.com/craftmart/storefront/internal/store"
)

// Handler exposes public catalog and seller listing endpoints.
type Handler struct {
	Service  *Service
	Validate *validator.Validate
}

// Products handles GET /api/v1/products.
func (h *Handler) Products(w http.ResponseWriter, r *http.Request) {
	page, perPage := common.ParsePagination(r, 20)
	q := r.URL.Query()
	result, err := h.Service.List(r.Context(), store.ProductFilter{
		Category: q.Get("category"),
		Search:   q.Get("search"),
		Limit:    perPage,
		Offset:   common.Offset(page, perPage),
	})
	if err != nil {
		common.RespondError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data":       result.Items,
		"pagination": common.Pagination{Page: page, PerPage: perPage, TotalItems: result.Total},
	})
}

// ProductDetail handles GET /api/v1/products/{id}.
func (h *Handler) ProductDetail(w http.ResponseWriter, r *http.Request) {
	id, err := common.PathID(chi.URLParam(r, "id"))
	if err != nil {
		common.RespondError(w, err)
		return
	}
	p, err := h.Service.Get(r.Context(), id)
	if err != nil {
		common.RespondError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": p})
}

func (h *Handler) decodeInput(r *http.Request) (ProductInput, error) {
	var in ProductInput
	if err := common.DecodeJSON(r, &in); err != nil {
		return ProductInput{}, err
	}
	if err := h.Validate.Struct(in); err != nil {
		return ProductInput{}, common.Invalid("invalid product payload", err.Error())
	}
	return in, nil
}

// CreateProduct handles POST /api/v1/seller/products.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	sellerID, _ := common.UserID(r.Context())
	in, err := h.decodeInput(r)
	if err != nil {
		common.RespondError(w, err)
		return
	}
	created, err := h.Service.CreateListing(r.Context(), sellerID, in)
	if err != nil {
		common.RespondError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": created})
}

// UpdateProduct handles PUT /api/v1/seller/products/{id}.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	sellerID, _ := common.UserID(r.Context())
	id, err := common.PathID(chi.URLParam(r, "id"))
	if err != nil {
		common.RespondError(w, err)
		return
	}
	in, err := h.decodeInput(r)
	if err != nil {
		common.RespondError(w, err)
		return
	}
	updated, err := h.Service.UpdateListing(r.Context(), sellerID, id, in)
	if err != nil {
		common.RespondError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": updated})
}

// DeleteProduct handles DELETE /api/v1/seller/products/{id}.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	sellerID, _ := common.UserID(r.Context())
	id, err := common.PathID(chi.URLParam(r, "id"))
	if err != nil {
		common.RespondError(w, err)
		return
	}
	if err := h.Service.DeleteListing(r.Context(), sellerID, id); err != nil {
		common.RespondError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]any{"deleted": true}})
}

// SellerProducts handles GET /api/v1/seller/products.
func (h *Handler) SellerProducts(w http.ResponseWriter, r *http.Request) {
	sellerID, _ := common.UserID(r.Context())
	page, perPage := common.ParsePagination(r, 20)
	result, err := h.Service.SellerListings(r.Context(), sellerID, perPage, common.Offset(page, perPage))
	if err != nil {
		common.RespondError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data":       result.Items,
		"pagination": common.Pagination{Page: page, PerPage: perPage, TotalItems: result.Total},
	})
}
