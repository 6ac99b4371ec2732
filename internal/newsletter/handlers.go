package newsletter

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/craftmart/storefront/internal/common"
)

// Handler exposes newsletter endpoints.
type Handler struct {
	Service  *Service
	Validate *validator.Validate
}

type subscribePayload struct {
	Email string `json:"email" validate:"required,email"`
}

// Subscribe handles POST /api/v1/newsletter/subscribe. Open to anonymous callers.
func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var payload subscribePayload
	if err := common.DecodeJSON(r, &payload); err != nil {
		common.RespondError(w, err)
		return
	}
	if err := h.Validate.Struct(payload); err != nil {
		common.RespondError(w, common.Invalid("a valid email is required", nil))
		return
	}
	added, err := h.Service.Subscribe(r.Context(), payload.Email)
	if err != nil {
		common.RespondError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]any{"subscribed": true, "new": added}})
}

// Send handles POST /api/v1/seller/newsletter. Seller only.
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	var payload CampaignInput
	if err := common.DecodeJSON(r, &payload); err != nil {
		common.RespondError(w, err)
		return
	}
	if err := h.Validate.Struct(payload); err != nil {
		common.RespondError(w, common.Invalid("subject and html body are required", nil))
		return
	}
	queued, err := h.Service.Send(r.Context(), payload)
	if err != nil {
		common.RespondError(w, err)
		return
	}
	common.JSON(w, http.StatusAccepted, map[string]any{"data": map[string]any{"queued": queued}})
}
