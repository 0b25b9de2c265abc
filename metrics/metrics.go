// Package metrics exposes the engine's prometheus instruments.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "basstile"

type Metrics struct {
	Scored      prometheus.Counter
	TraitHits   prometheus.Counter
	TraitMisses prometheus.Counter
	Placed      *prometheus.CounterVec
	Synthesized prometheus.Counter
	Uncovered   prometheus.Histogram
}

// New creates the instruments and registers them with reg. A nil reg leaves
// them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Scored: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "placements_scored_total",
			Help:      "Placements run through the compatibility scorer.",
		}),
		TraitHits: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trait_cache_hits_total",
			Help:      "Harmonic/transposability lookups served from the session cache.",
		}),
		TraitMisses: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trait_cache_misses_total",
			Help:      "Harmonic/transposability lookups computed from scratch.",
		}),
		Placed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "placements_committed_total",
			Help:      "Placements committed to a coverage map, by phase.",
		}, []string{"phase"}),
		Synthesized: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fragments_synthesized_total",
			Help:      "Custom fragments synthesized for uncovered gaps.",
		}),
		Uncovered: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "uncovered_bars",
			Help:      "Bars left silent after all phases.",
			Buckets:   []float64{0, 1, 2, 4, 8, 16},
		}),
	}
}

func Nop() *Metrics {
	return New(nil)
}
