package insights

import (
	"net/http"

	"github.com/craftmart/storefront/internal/common"
)

// Handler exposes the insights endpoints.
type Handler struct {
	Service *Service
	Limit   RateLimit
}

type searchPayload struct {
	Query string `json:"query"`
}

// Search handles POST /api/v1/insights/search.
func (h *Handler) Search() http.HandlerFunc {
	return h.Limit.Handle("search", func(w http.ResponseWriter, r *http.Request) {
		var payload searchPayload
		if err := common.DecodeJSON(r, &payload); err != nil {
			common.RespondError(w, err)
			return
		}
		results, err := h.Service.Search(r.Context(), payload.Query)
		if err != nil {
			common.RespondError(w, err)
			return
		}
		common.JSON(w, http.StatusOK, map[string]any{"data": results})
	})
}

// Recommendations handles GET /api/v1/insights/recommendations?productId=N.
func (h *Handler) Recommendations() http.HandlerFunc {
	return h.Limit.Handle("recommendations", func(w http.ResponseWriter, r *http.Request) {
		id, err := common.PathID(r.URL.Query().Get("productId"))
		if err != nil {
			common.RespondError(w, err)
			return
		}
		recs, err := h.Service.Recommendations(r.Context(), id)
		if err != nil {
			common.RespondError(w, err)
			return
		}
		common.JSON(w, http.StatusOK, map[string]any{"data": recs})
	})
}

// DemandForecast handles GET /api/v1/insights/demand-forecast.
func (h *Handler) DemandForecast() http.HandlerFunc {
	return h.Limit.Handle("demand-forecast", func(w http.ResponseWriter, r *http.Request) {
		forecasts, err := h.Service.DemandForecast(r.Context())
		if err != nil {
			common.RespondError(w, err)
			return
		}
		common.JSON(w, http.StatusOK, map[string]any{"data": forecasts})
	})
}
