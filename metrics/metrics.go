// Package metrics exposes Prometheus instrumentation for the glossary index.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/c360studio/semgloss/glossary"
)

const namespace = "semgloss"

// Rebuild results.
const (
	RebuildSuccess = "success"
	RebuildFailure = "failure"
)

// Metrics holds the glossary collectors. A nil *Metrics records nothing.
type Metrics struct {
	probes      *prometheus.CounterVec
	terms       prometheus.Gauge
	lookupOnly  prometheus.Gauge
	density     prometheus.Gauge
	rebuilds    *prometheus.CounterVec
	lastRebuild prometheus.Gauge

	reg prometheus.Registerer
}

// New registers the glossary collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	m := &Metrics{
		reg: reg,
		probes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "probes_total",
			Help:      "Candidate tokens probed, by how the probe was resolved.",
		}, []string{"outcome"}),
		terms: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "index",
			Name:      "terms",
			Help:      "Records in the published index.",
		}),
		lookupOnly: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "index",
			Name:      "lookup_only_terms",
			Help:      "Records with blank text, reachable only by key.",
		}),
		density: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "index",
			Name:      "fingerprint_density",
			Help:      "Fraction of fingerprint bits set; 1 means every candidate passes the pre-check.",
		}),
		rebuilds: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "index",
			Name:      "rebuilds_total",
			Help:      "Index rebuild attempts, by result.",
		}, []string{"result"}),
		lastRebuild: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "index",
			Name:      "last_rebuild_timestamp_seconds",
			Help:      "Build time of the published index.",
		}),
	}

	for _, o := range []glossary.Outcome{glossary.OutcomeRejected, glossary.OutcomeFiltered, glossary.OutcomeMatched} {
		m.probes.WithLabelValues(string(o))
	}
	m.rebuilds.WithLabelValues(RebuildSuccess)
	m.rebuilds.WithLabelValues(RebuildFailure)
	return m
}

// ObserveProbe counts one probe.
func (m *Metrics) ObserveProbe(outcome glossary.Outcome) {
	if m == nil {
		return
	}
	m.probes.WithLabelValues(string(outcome)).Inc()
}

// ObserveIndex records the shape of a newly published index.
func (m *Metrics) ObserveIndex(ix *glossary.TermIndex) {
	if m == nil || ix == nil {
		return
	}
	stats := ix.Stats()
	m.terms.Set(float64(stats.Terms))
	m.lookupOnly.Set(float64(stats.LookupOnly))
	m.density.Set(stats.Density)
	m.lastRebuild.Set(float64(stats.BuiltAt.Unix()))
}

// ObserveRebuild counts a rebuild attempt.
func (m *Metrics) ObserveRebuild(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.rebuilds.WithLabelValues(RebuildFailure).Inc()
		return
	}
	m.rebuilds.WithLabelValues(RebuildSuccess).Inc()
}

// OutcomeCounter returns the counter for one recognition outcome.
func (m *Metrics) OutcomeCounter(outcome string) prometheus.Counter {
	return m.probes.WithLabelValues(outcome)
}

// RegisterDroppedChanges exports a watcher's coalesced-change count as
// semgloss_watch_dropped_changes_total.
func (m *Metrics) RegisterDroppedChanges(dropped func() int64) error {
	if m == nil || m.reg == nil {
		return nil
	}
	return m.reg.Register(prometheus.NewCounterFunc(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "watch",
		Name:      "dropped_changes_total",
		Help:      "Vocabulary change batches coalesced because a rebuild was already pending.",
	}, func() float64 {
		return float64(dropped())
	}))
}
