// Package metrics registers the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts handled HTTP requests by method, route and status.
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_api_requests_total",
		Help: "Handled HTTP requests.",
	}, []string{"method", "route", "status"})

	// ActiveSessions tracks the number of live sessions in the store.
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "schedule_api_active_sessions",
		Help: "Sessions currently held in the in-memory store.",
	})

	// EntityErrors counts error items returned by the access models, by
	// entity and reason.
	EntityErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_api_entity_errors_total",
		Help: "Error items produced by entity access models.",
	}, []string{"entity", "reason"})
)
