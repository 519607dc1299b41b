package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CartMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Total number of successful cart mutations",
	}, []string{"op"})

	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Total number of orders created",
	})

	OrdersReplayedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_replayed_total",
		Help: "Total number of order creations answered from an existing idempotency key",
	})

	OrderStatusChangesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_changes_total",
		Help: "Total number of order status overwrites",
	}, []string{"status"})

	CheckoutsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkouts_total",
		Help: "Total number of checkouts by outcome",
	}, []string{"outcome"})

	CheckoutsUnclearedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkouts_uncleared_total",
		Help: "Checkout events observed with an order created but the cart left uncleared",
	})

	StorePersistLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "store_persist_latency_seconds",
		Help:    "Latency of store snapshot writes",
		Buckets: prometheus.DefBuckets,
	}, []string{"store"})

	StorePersistFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "store_persist_failures_total",
		Help: "Total number of failed store snapshot writes",
	}, []string{"store"})

	UpstreamBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "upstream_breaker_state",
		Help: "Circuit breaker state per upstream (0 closed, 1 half-open, 2 open)",
	}, []string{"upstream"})

	EventsConsumedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "events_consumed_total",
		Help: "Total number of consumed events by type",
	}, []string{"type"})

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
