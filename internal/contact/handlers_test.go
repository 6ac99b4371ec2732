package contact

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/craftmart/storefront/internal/common"
)

type failingSender struct{}

func (failingSender) Send(string, string, string) error { return errors.New("smtp down") }

func newContactHandler(sender common.EmailSender) *Handler {
	return &Handler{Email: sender, To: "shop@example.com", Validate: validator.New()}
}

func TestSubmitDeliversToShopMailbox(t *testing.T) {
	outbox := &common.InMemoryEmail{}
	h := newContactHandler(outbox)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/contact",
		strings.NewReader(`{"name":"Asha","email":"asha@example.com","message":"Is the vase dishwasher safe?"}`))
	h.Submit(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, outbox.Outbox, 1)
	require.Equal(t, "shop@example.com", outbox.Outbox[0].To)
	require.Equal(t, "Contact form: Asha", outbox.Outbox[0].Subject)
	require.Contains(t, outbox.Outbox[0].HTML, "dishwasher safe")
}

func TestSubmitRequiresAllFields(t *testing.T) {
	outbox := &common.InMemoryEmail{}
	h := newContactHandler(outbox)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/contact",
		strings.NewReader(`{"name":"Asha","email":"not-an-email","message":""}`))
	h.Submit(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Empty(t, outbox.Outbox)
}

func TestSubmitEscapesMarkup(t *testing.T) {
	outbox := &common.InMemoryEmail{}
	h := newContactHandler(outbox)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/contact",
		strings.NewReader(`{"name":"<script>x</script>","email":"a@example.com","message":"hi"}`))
	h.Submit(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotContains(t, outbox.Outbox[0].HTML, "<script>")
}

func TestSubmitReportsDeliveryFailure(t *testing.T) {
	h := newContactHandler(failingSender{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/contact",
		strings.NewReader(`{"name":"Asha","email":"a@example.com","message":"hi"}`))
	h.Submit(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
