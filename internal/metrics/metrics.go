// Package metrics holds the prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "timber_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "timber_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	PackageNumbersAssigned = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "timber_package_numbers_assigned_total",
			Help: "Package numbers handed out by the allocator, per process code.",
		},
		[]string{"process"},
	)

	ProductionEntriesValidated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "timber_production_entries_validated_total",
		Help: "Production entries committed to inventory.",
	})

	ProductionEntriesDeleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "timber_production_entries_deleted_total",
			Help: "Production entries deleted, by status at deletion time.",
		},
		[]string{"status"},
	)

	WebsocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "timber_websocket_clients",
		Help: "Connected production board clients.",
	})
)
