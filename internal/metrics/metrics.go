package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the prediction service collectors
type Metrics struct {
	Predictions  *prometheus.CounterVec
	Failures     *prometheus.CounterVec
	CacheHits    prometheus.Counter
	CacheMisses  prometheus.Counter
	FitDuration  prometheus.Histogram
	TeamsKnown   prometheus.Gauge
	MatchesKnown prometheus.Gauge
}

// New registers the collectors on reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Predictions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "match_predictor",
			Name:      "predictions_total",
			Help:      "Fixture predictions made, by predicted outcome.",
		}, []string{"outcome"}),
		Failures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "match_predictor",
			Name:      "failures_total",
			Help:      "Failed operations, by reason.",
		}, []string{"reason"}),
		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "match_predictor",
			Name:      "cache_hits_total",
			Help:      "Predictions served from cache.",
		}),
		CacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "match_predictor",
			Name:      "cache_misses_total",
			Help:      "Prediction lookups that missed the cache.",
		}),
		FitDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "match_predictor",
			Name:      "fit_duration_seconds",
			Help:      "Time taken to fit team strengths from the match history.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}),
		TeamsKnown: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "match_predictor",
			Name:      "teams",
			Help:      "Teams in the fitted model.",
		}),
		MatchesKnown: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "match_predictor",
			Name:      "matches",
			Help:      "Matches in the fitted history.",
		}),
	}
}
