package glossary

import "sync/atomic"

// Handle publishes the current TermIndex to concurrent readers.
// Replacing the index never blocks readers; in-flight probes finish against
// the index they loaded.
type Handle struct {
	current atomic.Pointer[TermIndex]
}

// NewHandle returns a Handle publishing ix.
func NewHandle(ix *TermIndex) *Handle {
	h := &Handle{}
	h.current.Store(ix)
	return h
}

// Load returns the published index. It may be nil if none was ever stored.
func (h *Handle) Load() *TermIndex {
	return h.current.Load()
}

// Swap publishes ix and returns the previous index.
func (h *Handle) Swap(ix *TermIndex) *TermIndex {
	return h.current.Swap(ix)
}

// Probe probes the published index.
func (h *Handle) Probe(candidate string) (TermRecord, bool) {
	return h.Load().Probe(candidate)
}

// ProbeOutcome probes the published index and reports the resolution path.
func (h *Handle) ProbeOutcome(candidate string) (TermRecord, Outcome) {
	return h.Load().ProbeOutcome(candidate)
}
