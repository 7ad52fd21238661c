package scoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	draftsSaved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scoring_drafts_saved_total",
			Help: "Total number of draft score saves",
		},
	)

	finalizations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scoring_finalizations_total",
			Help: "Finalization attempts by outcome",
		},
		[]string{"outcome"},
	)
)

func RecordDraftSaved() {
	draftsSaved.Inc()
}

func RecordFinalization(outcome string) {
	finalizations.WithLabelValues(outcome).Inc()
}
