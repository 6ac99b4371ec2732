package obs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestStatusRecorderCapturesStatusAndBytes(t *testing.T) {
	rec := httptest.NewRecorder()
	sr := NewStatusRecorder(rec)
	sr.WriteHeader(http.StatusTeapot)
	n, err := sr.Write([]byte("short and stout"))
	require.NoError(t, err)
	require.Equal(t, 15, n)
	require.Equal(t, http.StatusTeapot, sr.Status())
	require.Equal(t, int64(15), sr.BytesWritten())
}

func TestHTTPObsMiddlewareCountsRequests(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics("storefront_test", nil, reg)
	h := HTTPObs{Metrics: m}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)

	families, err := reg.Gather()
	require.NoError(t, err)
	var found bool
	for _, mf := range families {
		if mf.GetName() == "storefront_test_http_requests_total" {
			found = true
			require.Len(t, mf.GetMetric(), 1)
			require.Equal(t, float64(1), mf.GetMetric()[0].GetCounter().GetValue())
		}
	}
	require.True(t, found, "request counter not gathered")
}

func TestParseBucketsCSV(t *testing.T) {
	require.Equal(t, []float64{5, 50, 500}, ParseBucketsCSV("5, 50,500"))
	require.Nil(t, ParseBucketsCSV("  "))
	require.Equal(t, []float64{10}, ParseBucketsCSV("10,-3,abc"))
}

func TestRoutePatternRoundTrip(t *testing.T) {
	ctx := WithRoutePattern(context.Background(), "/api/v1/products/{id}")
	require.Equal(t, "/api/v1/products/{id}", RoutePatternFromContext(ctx))
	require.Empty(t, RoutePatternFromContext(context.Background()))
}

func TestRouteLabelPrefersStoredPattern(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/42", nil)
	require.Equal(t, "/api/v1/products/42", routeLabel(req, req.URL.Path))

	req = req.WithContext(WithRoutePattern(req.Context(), "/api/v1/products/{id}"))
	require.Equal(t, "/api/v1/products/{id}", routeLabel(req, req.URL.Path))
}

func TestSQLSpanHelpers(t *testing.T) {
	require.Equal(t, "SELECT", sqlOperation("  select id FROM products"))
	require.Equal(t, "UNKNOWN", sqlOperation("   "))

	clipped := clipStatement("SELECT\n\tid,\n\tname\nFROM products")
	require.Equal(t, "SELECT id, name FROM products", clipped, "whitespace must collapse for the span attribute")

	long := clipStatement("SELECT " + strings.Repeat("c, ", 200) + "x FROM t")
	require.Len(t, long, maxStatementAttr+3)
	require.True(t, strings.HasSuffix(long, "..."))
}
