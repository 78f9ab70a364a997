// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// PlansCreated counts created plans.
	PlansCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "plans_created_total",
			Help: "Total plans created",
		},
	)

	// PlanTransitions counts lifecycle transitions by target status.
	PlanTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plan_transitions_total",
			Help: "Plan status transitions",
		},
		[]string{"to"},
	)

	// VotesCast counts accepted vote casts, replacements included.
	VotesCast = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "votes_cast_total",
			Help: "Total vote casts accepted",
		},
	)

	// ShortlistDuration tracks how long shortlist generation takes.
	ShortlistDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shortlist_duration_seconds",
			Help:    "Shortlist generation duration",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"status"},
	)

	// ShortlistCandidates tracks how many catalog candidates were scored.
	ShortlistCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "shortlist_candidates",
			Help:    "Catalog candidates scored per shortlist",
			Buckets: []float64{0, 1, 5, 10, 20, 30, 40, 50},
		},
	)

	// ShortlistCacheLookups counts cache hits and misses.
	ShortlistCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shortlist_cache_lookups_total",
			Help: "Shortlist cache lookups by result",
		},
		[]string{"result"},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordShortlist records one shortlist generation.
func RecordShortlist(status string, duration float64, candidates int) {
	ShortlistDuration.WithLabelValues(status).Observe(duration)
	if status == "ok" {
		ShortlistCandidates.Observe(float64(candidates))
	}
}

// RecordTransition records a plan moving into the given status.
func RecordTransition(to string) {
	PlanTransitions.WithLabelValues(to).Inc()
}
