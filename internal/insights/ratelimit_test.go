package insights

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/craftmart/storefront/internal/common"
)

func newLimiter(t *testing.T, limit int64) RateLimit {
	t.Helper()
	inst := limiter.New(memory.NewStore(), limiter.Rate{Period: time.Minute, Limit: limit})
	return RateLimit{Limiter: inst}
}

func TestRateLimitRefusesBeyondLimit(t *testing.T) {
	rl := newLimiter(t, 2)
	var hits int
	h := rl.Handle("search", func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/insights/search", nil)
	req = req.WithContext(common.WithUserID(req.Context(), "u1"))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := httptest.NewRecorder()
	h(rec, req)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotEmpty(t, rec.Header().Get("Retry-After"))
	require.Equal(t, 2, hits)
}

func TestRateLimitIsPerUserAndEndpoint(t *testing.T) {
	rl := newLimiter(t, 1)
	ok := func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }
	search := rl.Handle("search", ok)
	forecast := rl.Handle("demand-forecast", ok)

	reqU1 := httptest.NewRequest(http.MethodPost, "/x", nil)
	reqU1 = reqU1.WithContext(common.WithUserID(reqU1.Context(), "u1"))
	reqU2 := httptest.NewRequest(http.MethodPost, "/x", nil)
	reqU2 = reqU2.WithContext(common.WithUserID(reqU2.Context(), "u2"))

	rec := httptest.NewRecorder()
	search(rec, reqU1)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	search(rec, reqU1)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	// A different user and a different endpoint are unaffected.
	rec = httptest.NewRecorder()
	search(rec, reqU2)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	forecast(rec, reqU1)
	require.Equal(t, http.StatusOK, rec.Code)
}
