package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// OrdersCreatedTotal counts order creation outcomes by path (queued or direct).
	OrdersCreatedTotal *prometheus.CounterVec
	// CheckoutFallbackTotal counts checkouts that fell back to a direct write
	// because the broker rejected the enqueue.
	CheckoutFallbackTotal prometheus.Counter
	// CartClearFailures counts post-checkout cart clears that failed.
	CartClearFailures prometheus.Counter
	// PromoResolutionsTotal counts promo resolver outcomes.
	PromoResolutionsTotal *prometheus.CounterVec
	// InsightsCacheTotal counts insights cache hits and misses per endpoint.
	InsightsCacheTotal *prometheus.CounterVec
	// InsightsRateLimitedTotal counts requests refused by the insights limiter.
	InsightsRateLimitedTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		OrdersCreatedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_created_total",
			Help:      "Count of order creation outcomes by path.",
		}, []string{"path", "result"})
		CheckoutFallbackTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_fallback_total",
			Help:      "Checkouts written directly after an enqueue failure.",
		})
		CartClearFailures = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_clear_failures_total",
			Help:      "Cart clears that failed after a successful order persist.",
		})
		PromoResolutionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "promo_resolutions_total",
			Help:      "Promo resolver outcomes (applied, zero, refused).",
		}, []string{"result"})
		InsightsCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "insights_cache_total",
			Help:      "Insights cache hits and misses per endpoint.",
		}, []string{"endpoint", "result"})
		InsightsRateLimitedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "insights_rate_limited_total",
			Help:      "Insights requests refused by the rate limiter.",
		}, []string{"endpoint"})

		mustRegisterCollector(reg, OrdersCreatedTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				OrdersCreatedTotal = v
			}
		})
		mustRegisterCollector(reg, CheckoutFallbackTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				CheckoutFallbackTotal = v
			}
		})
		mustRegisterCollector(reg, CartClearFailures, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				CartClearFailures = v
			}
		})
		mustRegisterCollector(reg, PromoResolutionsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				PromoResolutionsTotal = v
			}
		})
		mustRegisterCollector(reg, InsightsCacheTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				InsightsCacheTotal = v
			}
		})
		mustRegisterCollector(reg, InsightsRateLimitedTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				InsightsRateLimitedTotal = v
			}
		})
	})
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
