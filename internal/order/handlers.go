package order

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/craftmart/storefront/internal/common"
)

// Handler exposes checkout and order endpoints.
type Handler struct {
	Service *Service
}

// Create handles POST /api/v1/orders.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := common.UserID(r.Context())
	var in CheckoutInput
	if err := common.DecodeJSON(r, &in); err != nil {
		common.RespondError(w, err)
		return
	}
	result, err := h.Service.Checkout(r.Context(), userID, in)
	if err != nil {
		common.RespondError(w, err)
		return
	}
	status := http.StatusCreated
	if result.Queued {
		status = http.StatusAccepted
	}
	common.JSON(w, status, map[string]any{"data": result})
}

// ListMine handles GET /api/v1/orders.
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, _ := common.UserID(r.Context())
	views, err := h.Service.ListMine(r.Context(), userID)
	if err != nil {
		common.RespondError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": views})
}

// SellerList handles GET /api/v1/seller/orders.
func (h *Handler) SellerList(w http.ResponseWriter, r *http.Request) {
	page, perPage := common.ParsePagination(r, 50)
	views, err := h.Service.ListAll(r.Context(), perPage, common.Offset(page, perPage))
	if err != nil {
		common.RespondError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": views})
}

type statusPayload struct {
	Status string `json:"status"`
}

// UpdateStatus handles PUT /api/v1/seller/orders/{id}/status.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := common.PathID(chi.URLParam(r, "id"))
	if err != nil {
		common.RespondError(w, err)
		return
	}
	var payload statusPayload
	if err := common.DecodeJSON(r, &payload); err != nil {
		common.RespondError(w, err)
		return
	}
	if err := h.Service.UpdateStatus(r.Context(), id, payload.Status); err != nil {
		common.RespondError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]any{"id": id, "status": payload.Status}})
}
