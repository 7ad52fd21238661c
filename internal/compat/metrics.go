package compat

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	finalScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "compat_final_scores",
			Help:    "Distribution of computed pair compatibility scores",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		},
	)

	recomputes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "compat_recomputes_total",
			Help: "Pair score recomputations by trigger",
		},
		[]string{"trigger"},
	)

	tasteRebuilds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "compat_taste_rebuilds_total",
			Help: "Taste vector rebuilds by outcome",
		},
		[]string{"outcome"},
	)
)

func RecordFinalScore(score float64) {
	finalScores.Observe(score)
}

func RecordRecompute(trigger string) {
	recomputes.WithLabelValues(trigger).Inc()
}

func RecordTasteRebuild(outcome string) {
	tasteRebuilds.WithLabelValues(outcome).Inc()
}
