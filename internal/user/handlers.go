package user

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/craftmart/storefront/internal/common"
)

// Handler exposes the /me endpoints.
type Handler struct {
	Service  *Service
	Validate *validator.Validate
}

// Me handles GET /api/v1/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, _ := common.UserID(r.Context())
	role, _ := common.Role(r.Context())
	claims, _ := common.TokenClaims(r.Context())
	if role == "" {
		role = common.RoleCustomer
	}
	u, err := h.Service.Profile(r.Context(), userID, claims.Email, claims.Name, role)
	if err != nil {
		common.RespondError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": u})
}

// Addresses handles GET /api/v1/me/addresses.
func (h *Handler) Addresses(w http.ResponseWriter, r *http.Request) {
	userID, _ := common.UserID(r.Context())
	addrs, err := h.Service.Addresses(r.Context(), userID)
	if err != nil {
		common.RespondError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": addrs})
}

// AddAddress handles POST /api/v1/me/addresses.
func (h *Handler) AddAddress(w http.ResponseWriter, r *http.Request) {
	userID, _ := common.UserID(r.Context())
	var payload AddressInput
	if err := common.DecodeJSON(r, &payload); err != nil {
		common.RespondError(w, err)
		return
	}
	if err := h.Validate.Struct(payload); err != nil {
		common.RespondError(w, common.Invalid("invalid address", map[string]any{"reason": err.Error()}))
		return
	}
	created, err := h.Service.AddAddress(r.Context(), userID, payload)
	if err != nil {
		common.RespondError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": created})
}
