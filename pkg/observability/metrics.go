// Package observability provides a Prometheus implementation of the
// traversal hooks, counting visits, prunes and commits and tracking
// inference confidence.
package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/molonc/treealign/pkg/domain"
)

// Metrics holds the Prometheus collectors for one engine.
type Metrics struct {
	cladeVisits       prometheus.Counter
	cladesPruned      *prometheus.CounterVec
	cellsCommitted    prometheus.Counter
	inferenceRuns     prometheus.Counter
	noneFrequency     prometheus.Histogram
	inferenceDuration prometheus.Histogram
}

// NewMetrics creates and registers the collectors on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		cladeVisits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "treealign_clade_visits_total",
			Help: "Number of clade visits started.",
		}),
		cladesPruned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "treealign_clades_pruned_total",
			Help: "Number of clades added to the frontier, by reason.",
		}, []string{"reason"}),
		cellsCommitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "treealign_cells_committed_total",
			Help: "Number of cell assignments committed, bypass included.",
		}),
		inferenceRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "treealign_inference_runs_total",
			Help: "Number of assigner invocations.",
		}),
		noneFrequency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "treealign_inference_none_frequency",
			Help:    "Fraction of inference outcomes without a confident assignment.",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		}),
		inferenceDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "treealign_inference_duration_seconds",
			Help:    "Wall time of assigner invocations.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		m.cladeVisits,
		m.cladesPruned,
		m.cellsCommitted,
		m.inferenceRuns,
		m.noneFrequency,
		m.inferenceDuration,
	)
	return m
}

// Hooks returns traversal hooks feeding these collectors.
func (m *Metrics) Hooks() domain.TraversalHooks {
	return domain.TraversalHooks{
		OnVisit: func(_ context.Context, ev *domain.VisitEvent) {
			m.cladeVisits.Inc()
		},
		OnPrune: func(_ context.Context, ev *domain.PruneEvent) {
			m.cladesPruned.WithLabelValues(string(ev.Reason)).Inc()
		},
		OnCommit: func(_ context.Context, ev *domain.CommitEvent) {
			m.cellsCommitted.Add(float64(ev.CellCount))
		},
		OnInference: func(_ context.Context, ev *domain.InferenceEvent) {
			m.inferenceRuns.Inc()
			m.noneFrequency.Observe(ev.NoneFreq)
			m.inferenceDuration.Observe(ev.Duration.Seconds())
		},
	}
}
