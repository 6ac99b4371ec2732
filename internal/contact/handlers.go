// Package contact forwards contact-form submissions to the shop mailbox.
package contact

import (
	"fmt"
	"html"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/craftmart/storefront/internal/common"
)

// Handler receives contact-form submissions. Delivery goes through the shared
// EmailSender; the endpoint is public.
type Handler struct {
	Email    common.EmailSender
	To       string
	Validate *validator.Validate
}

type submitPayload struct {
	Name    string `json:"name" validate:"required,max=120"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required,max=4000"`
}

// Submit handles POST /api/v1/contact.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var payload submitPayload
	if err := common.DecodeJSON(r, &payload); err != nil {
		common.RespondError(w, err)
		return
	}
	if err := h.Validate.Struct(payload); err != nil {
		common.RespondError(w, common.Invalid("name, email and message are required", nil))
		return
	}

	subject := "Contact form: " + payload.Name
	body := fmt.Sprintf(
		"<p><strong>New contact form submission</strong></p><p><strong>Name:</strong> %s</p><p><strong>Email:</strong> %s</p><p>%s</p>",
		html.EscapeString(payload.Name), html.EscapeString(payload.Email), html.EscapeString(payload.Message))
	if err := h.Email.Send(h.To, subject, body); err != nil {
		common.JSONError(w, http.StatusInternalServerError, "MAIL_FAILED", "unable to send message right now", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]any{"sent": true}})
}
