package promo

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/craftmart/storefront/internal/common"
	"github.com/craftmart/storefront/internal/store"
)

// AdminStore is the slice of the store the admin handlers need.
type AdminStore interface {
	CreatePromo(ctx context.Context, p store.Promotion) (store.Promotion, error)
	ListActivePromos(ctx context.Context) ([]store.Promotion, error)
}

// Handler exposes seller-facing promotion management endpoints.
type Handler struct {
	Store    AdminStore
	Validate *validator.Validate
}

type createPayload struct {
	Code            string     `json:"code" validate:"required,min=2,max=32"`
	DiscountPercent int        `json:"discountPercent" validate:"required,min=1,max=90"`
	AllowedUserIDs  []string   `json:"allowedUserIds"`
	ExpiresAt       *time.Time `json:"expiresAt"`
}

// Create registers a new promotion. Codes are normalized before storage so
// lookups are case and whitespace insensitive.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var payload createPayload
	if err := common.DecodeJSON(r, &payload); err != nil {
		common.RespondError(w, err)
		return
	}
	payload.Code = Normalize(payload.Code)
	if err := h.Validate.Struct(payload); err != nil {
		common.RespondError(w, common.Invalid("invalid promotion payload", err.Error()))
		return
	}

	created, err := h.Store.CreatePromo(r.Context(), store.Promotion{
		Code:            payload.Code,
		DiscountPercent: payload.DiscountPercent,
		AllowedUserIDs:  payload.AllowedUserIDs,
		Active:          true,
		ExpiresAt:       payload.ExpiresAt,
	})
	if errors.Is(err, store.ErrDuplicate) {
		common.RespondError(w, common.Conflict("PROMO_EXISTS", "promo code already exists"))
		return
	}
	if err != nil {
		common.RespondError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": created})
}

// List returns active promotions as code plus percent pairs.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	promos, err := h.Store.ListActivePromos(r.Context())
	if err != nil {
		common.RespondError(w, err)
		return
	}
	type row struct {
		Code            string `json:"code"`
		DiscountPercent int    `json:"discountPercent"`
	}
	out := make([]row, 0, len(promos))
	for _, p := range promos {
		out = append(out, row{Code: p.Code, DiscountPercent: p.DiscountPercent})
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": out})
}
