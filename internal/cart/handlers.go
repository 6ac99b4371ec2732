package cart

import (
	"net/http"

	"github.com/craftmart/storefront/internal/common"
)

// Handler exposes cart endpoints. All routes require authentication.
type Handler struct {
	Service *Service
}

// Get handles GET /api/v1/cart.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, _ := common.UserID(r.Context())
	view, err := h.Service.Get(r.Context(), userID)
	if err != nil {
		common.RespondError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": view})
}

type setPayload struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// Set handles POST /api/v1/cart with absolute-set semantics.
func (h *Handler) Set(w http.ResponseWriter, r *http.Request) {
	userID, _ := common.UserID(r.Context())
	var payload setPayload
	if err := common.DecodeJSON(r, &payload); err != nil {
		common.RespondError(w, err)
		return
	}
	if err := h.Service.Set(r.Context(), userID, payload.ProductID, payload.Quantity); err != nil {
		common.RespondError(w, err)
		return
	}
	view, err := h.Service.Get(r.Context(), userID)
	if err != nil {
		common.RespondError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": view})
}

// Quote handles GET /api/v1/cart/quote?promo=CODE.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	userID, _ := common.UserID(r.Context())
	quote, err := h.Service.Quote(r.Context(), userID, r.URL.Query().Get("promo"))
	if err != nil {
		common.RespondError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": quote})
}
