package insights

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ulule/limiter/v3"

	"github.com/craftmart/storefront/internal/common"
	"github.com/craftmart/storefront/internal/obs"
)

// RateLimit guards the insights endpoints with a fixed-window limiter keyed
// per user and endpoint. The limiter instance is shared and injected.
type RateLimit struct {
	Limiter *limiter.Limiter
}

// Handle wraps a handler with the rate limit for one endpoint.
func (rl RateLimit) Handle(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if rl.Limiter == nil {
			next(w, r)
			return
		}
		userID, _ := common.UserID(r.Context())
		if userID == "" {
			userID = common.ClientIP(r)
		}
		lctx, err := rl.Limiter.Get(r.Context(), "insights:"+endpoint+":"+userID)
		if err != nil {
			// The limiter is protection, not a dependency; fail open.
			next(w, r)
			return
		}
		w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(lctx.Remaining, 10))
		if lctx.Reached {
			retryAfter := time.Until(time.Unix(lctx.Reset, 0))
			if retryAfter < 0 {
				retryAfter = 0
			}
			w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())+1))
			if obs.InsightsRateLimitedTotal != nil {
				obs.InsightsRateLimitedTotal.WithLabelValues(endpoint).Inc()
			}
			common.JSONError(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests, slow down", nil)
			return
		}
		next(w, r)
	}
}
