package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AuthzDecisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "authz_decisions_total",
		Help: "Row-level policy decisions by table, action and outcome",
	}, []string{"table", "action", "decision"})

	OrdersPlacedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Total number of orders placed",
	})

	OrdersFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_failed_total",
		Help: "Total number of failed order placements",
	}, []string{"reason"})

	ReviewsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reviews_created_total",
		Help: "Total number of reviews created",
	})

	ReviewsRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reviews_rejected_total",
		Help: "Total number of rejected review submissions",
	}, []string{"reason"})

	NotificationsSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_sent_total",
		Help: "Total number of notifications fanned out",
	}, []string{"type"})

	CouponLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coupon_lookups_total",
		Help: "Coupon code lookups by result",
	}, []string{"result"})

	ProductCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "product_cache_hits_total",
		Help: "Product catalog cache hits",
	})

	ProductCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "product_cache_misses_total",
		Help: "Product catalog cache misses",
	})

	OrderPlacementLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "order_placement_latency_seconds",
		Help:    "Latency of order placement including stock checks",
		Buckets: prometheus.DefBuckets,
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
