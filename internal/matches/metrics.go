package matches

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	resultsComputed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matches_results_computed_total",
			Help: "Match results written by result type",
		},
		[]string{"result_type"},
	)

	resolveDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "matches_resolve_duration_seconds",
			Help:    "Time spent resolving an event's match results",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func RecordResult(resultType ResultType) {
	resultsComputed.WithLabelValues(string(resultType)).Inc()
}

func ObserveResolveDuration(seconds float64) {
	resolveDuration.Observe(seconds)
}
