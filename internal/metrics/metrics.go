// Package metrics provides Prometheus metrics for the client engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	pollTicksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wisper_poll_ticks_total",
			Help: "Poll ticks by scope and outcome",
		},
		[]string{"scope", "outcome"},
	)

	refreshDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wisper_refresh_duration_seconds",
			Help:    "Duration of fetch-then-apply refresh operations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	submissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wisper_submissions_total",
			Help: "Job submissions by outcome",
		},
		[]string{"outcome"},
	)

	actionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wisper_actions_total",
			Help: "Item actions by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	staleDropsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wisper_stale_drops_total",
			Help: "Fetch results discarded because the view generation moved on",
		},
	)

	activePollers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "wisper_active_pollers",
			Help: "Number of running poll timers (0 or 1 by invariant)",
		},
	)
)

// RecordPollTick records one tick for a scope ("browser" or "detail").
func RecordPollTick(scope, outcome string) {
	pollTicksTotal.WithLabelValues(scope, outcome).Inc()
}

// ObserveRefresh records the duration of one refresh operation.
func ObserveRefresh(kind string, seconds float64) {
	refreshDuration.WithLabelValues(kind).Observe(seconds)
}

// RecordSubmission records one job submission attempt.
func RecordSubmission(outcome string) {
	submissionsTotal.WithLabelValues(outcome).Inc()
}

// RecordAction records one item action attempt.
func RecordAction(kind, outcome string) {
	actionsTotal.WithLabelValues(kind, outcome).Inc()
}

// RecordStaleDrop records a discarded stale fetch result.
func RecordStaleDrop() {
	staleDropsTotal.Inc()
}

// SetActivePollers sets the active poll timer gauge.
func SetActivePollers(n int) {
	activePollers.Set(float64(n))
}

// Handler returns the Prometheus exposition handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Serve starts the metrics endpoint on addr. Blocks; run in a goroutine.
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	return http.ListenAndServe(addr, mux)
}
