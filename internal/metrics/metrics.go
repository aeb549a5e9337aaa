package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the engine's public surface.
type Metrics struct {
	SelectionsTotal *prometheus.CounterVec
	ExposuresTotal  prometheus.Counter
	MasteredTotal   prometheus.Counter
	SearchesTotal   prometheus.Counter
	WordsInReview   prometheus.Gauge
}

// New creates the metrics on a private registry and returns them together
// with the handler that serves it. A private registry keeps repeated
// construction (tests, embedded use) from colliding on global state.
func New() (*Metrics, http.Handler) {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := &Metrics{
		SelectionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wordpace_selections_total",
				Help: "Total number of next-word selections by pool",
			},
			[]string{"pool"},
		),
		ExposuresTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "wordpace_exposures_total",
				Help: "Total number of recorded word exposures",
			},
		),
		MasteredTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "wordpace_mastered_total",
				Help: "Total number of words marked known",
			},
		),
		SearchesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "wordpace_example_searches_total",
				Help: "Total number of example sentence searches",
			},
		),
		WordsInReview: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "wordpace_words_in_review",
				Help: "Words currently in the review pool",
			},
		),
	}
	return m, promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
