// Package metrics holds the Prometheus collectors of the route generation service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StageDuration observes each pipeline stage of a search run.
	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "routegen_stage_duration_seconds",
			Help:    "Duration of route generation pipeline stages",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"stage"},
	)

	// StageOutput records how many items survived each stage.
	StageOutput = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "routegen_stage_output_items",
			Help:    "Number of items produced by a pipeline stage",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100, 500},
		},
		[]string{"stage"},
	)

	// DirectionsRequests counts directions service calls by outcome
	// (success, failure, rejected, cache_hit).
	DirectionsRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "routegen_directions_requests_total",
			Help: "Directions service requests by outcome",
		},
		[]string{"outcome"},
	)

	// CircuitBreakerState is 0 closed, 1 half-open, 2 open.
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "routegen_circuit_breaker_state",
			Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"name"},
	)

	// MaterializedRoutes counts generated routes by result (created, reused).
	MaterializedRoutes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "routegen_materialized_routes_total",
			Help: "Generated routes persisted or reused",
		},
		[]string{"result"},
	)

	// Searches counts completed searches by preference and status.
	Searches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "routegen_searches_total",
			Help: "Route searches by preference and status",
		},
		[]string{"preference", "status"},
	)

	// ExportFailures counts route export notifications that could not be delivered.
	ExportFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "routegen_export_failures_total",
			Help: "Route export notifications that failed",
		},
	)
)
