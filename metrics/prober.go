package metrics

import "github.com/c360studio/semgloss/glossary"

// Prober probes the index published by a Handle and counts outcomes.
type Prober struct {
	handle  *glossary.Handle
	metrics *Metrics
}

// NewProber returns a Prober over handle. m may be nil.
func NewProber(handle *glossary.Handle, m *Metrics) *Prober {
	return &Prober{handle: handle, metrics: m}
}

// Probe reports whether candidate is a known term. Nothing is counted while
// no index is published.
func (p *Prober) Probe(candidate string) (glossary.TermRecord, bool) {
	ix := p.handle.Load()
	if ix == nil {
		return glossary.TermRecord{}, false
	}
	rec, outcome := ix.ProbeOutcome(candidate)
	p.metrics.ObserveProbe(outcome)
	return rec, outcome == glossary.OutcomeMatched
}

// Lookup returns the record stored under key.
func (p *Prober) Lookup(key string) (glossary.TermRecord, bool) {
	return p.handle.Load().Lookup(key)
}

// Index returns the published index.
func (p *Prober) Index() *glossary.TermIndex {
	return p.handle.Load()
}
