package promo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/craftmart/storefront/internal/store"
)

type fakeAdminStore struct {
	promos map[string]store.Promotion
}

func (f *fakeAdminStore) CreatePromo(_ context.Context, p store.Promotion) (store.Promotion, error) {
	if _, ok := f.promos[p.Code]; ok {
		return store.Promotion{}, store.ErrDuplicate
	}
	f.promos[p.Code] = p
	return p, nil
}

func (f *fakeAdminStore) ListActivePromos(context.Context) ([]store.Promotion, error) {
	out := make([]store.Promotion, 0, len(f.promos))
	for _, p := range f.promos {
		out = append(out, p)
	}
	return out, nil
}

func newHandler() (*Handler, *fakeAdminStore) {
	fs := &fakeAdminStore{promos: map[string]store.Promotion{}}
	return &Handler{Store: fs, Validate: validator.New()}, fs
}

func TestCreateNormalizesAndStores(t *testing.T) {
	h, fs := newHandler()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/promos",
		strings.NewReader(`{"code":" save10 ","discountPercent":10}`))
	rec := httptest.NewRecorder()
	h.Create(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)
	_, ok := fs.promos["SAVE10"]
	require.True(t, ok)
}

func TestCreateDuplicateConflicts(t *testing.T) {
	h, fs := newHandler()
	fs.promos["SAVE10"] = store.Promotion{Code: "SAVE10", DiscountPercent: 10, Active: true}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/promos",
		strings.NewReader(`{"code":"SAVE10","discountPercent":15}`))
	rec := httptest.NewRecorder()
	h.Create(rec, req)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, rec.Body.String(), "PROMO_EXISTS")
}

func TestCreateRejectsPercentOutOfBounds(t *testing.T) {
	h, _ := newHandler()
	for _, body := range []string{
		`{"code":"ZERO","discountPercent":0}`,
		`{"code":"BIG","discountPercent":91}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/promos", strings.NewReader(body))
		rec := httptest.NewRecorder()
		h.Create(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}
