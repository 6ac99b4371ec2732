package review

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/craftmart/storefront/internal/common"
)

// Handler exposes review endpoints.
type Handler struct {
	Service *Service
}

type addPayload struct {
	ProductID int64  `json:"productId"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

// Add handles POST /api/v1/reviews.
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	userID, _ := common.UserID(r.Context())
	var payload addPayload
	if err := common.DecodeJSON(r, &payload); err != nil {
		common.RespondError(w, err)
		return
	}
	created, err := h.Service.Add(r.Context(), userID, payload.ProductID, payload.Rating, payload.Comment)
	if err != nil {
		common.RespondError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": created})
}

// List handles GET /api/v1/products/{id}/reviews.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	id, err := common.PathID(chi.URLParam(r, "id"))
	if err != nil {
		common.RespondError(w, err)
		return
	}
	reviews, err := h.Service.List(r.Context(), id)
	if err != nil {
		common.RespondError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": reviews})
}

// Check handles GET /api/v1/reviews/check?productId=N.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	userID, _ := common.UserID(r.Context())
	id, err := common.PathID(r.URL.Query().Get("productId"))
	if err != nil {
		common.RespondError(w, err)
		return
	}
	result, err := h.Service.Check(r.Context(), userID, id)
	if err != nil {
		common.RespondError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": result})
}
