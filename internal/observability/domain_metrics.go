package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	questionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clipstats_questions_total",
			Help: "Total number of processed questions by pipeline outcome.",
		},
		[]string{"outcome"},
	)
	unsafeQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clipstats_unsafe_queries_total",
			Help: "Total number of translated statements rejected by the safety policy.",
		},
		[]string{"reason"},
	)
	translateDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "clipstats_translate_duration_seconds",
			Help:    "Latency of the external NL-to-SQL translation call.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20},
		},
	)
	queryDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "clipstats_query_duration_seconds",
			Help:    "Latency of the aggregate query against the metrics database.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 5, 15, 60},
		},
	)
)

func init() {
	prometheus.MustRegister(
		questionsTotal,
		unsafeQueriesTotal,
		translateDurationSeconds,
		queryDurationSeconds,
	)
}

func ObserveQuestion(outcome string) {
	questionsTotal.WithLabelValues(outcome).Inc()
}

func ObserveUnsafeQuery(reason string) {
	unsafeQueriesTotal.WithLabelValues(reason).Inc()
}

func ObserveTranslateDuration(elapsed time.Duration) {
	translateDurationSeconds.Observe(elapsed.Seconds())
}

func ObserveQueryDuration(elapsed time.Duration) {
	queryDurationSeconds.Observe(elapsed.Seconds())
}
