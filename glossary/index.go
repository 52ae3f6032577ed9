package glossary

import (
	"slices"
	"time"
)

// Outcome describes how a probe was resolved.
type Outcome string

const (
	// OutcomeRejected means the fingerprint ruled the candidate out.
	OutcomeRejected Outcome = "rejected"

	// OutcomeFiltered means the fingerprint passed but the exact table had no match.
	OutcomeFiltered Outcome = "filtered"

	// OutcomeMatched means the candidate is a known term.
	OutcomeMatched Outcome = "matched"
)

// TermIndex is a compiled vocabulary. It is immutable and safe for concurrent use.
// Every method accepts a nil receiver and answers as an empty index.
type TermIndex struct {
	fingerprint Fingerprint
	terms       map[string]TermRecord

	// normalized text -> key, the confirmation axis for Probe
	byText map[string]string

	buildID    string
	builtAt    time.Time
	lookupOnly int
}

// Probe returns the record whose normalized text equals the normalized candidate.
func (ix *TermIndex) Probe(candidate string) (TermRecord, bool) {
	rec, outcome := ix.ProbeOutcome(candidate)
	return rec, outcome == OutcomeMatched
}

// ProbeOutcome is Probe with the resolution path exposed for instrumentation.
// Callers deciding whether to annotate a token should use Probe.
func (ix *TermIndex) ProbeOutcome(candidate string) (TermRecord, Outcome) {
	if ix == nil {
		return TermRecord{}, OutcomeRejected
	}
	text := Normalize(candidate)
	if text == "" || !ix.fingerprint.Covers(Sum(text)) {
		return TermRecord{}, OutcomeRejected
	}
	key, ok := ix.byText[text]
	if !ok {
		return TermRecord{}, OutcomeFiltered
	}
	return ix.terms[key], OutcomeMatched
}

// MayContain runs only the fingerprint pre-check.
// False means the candidate is definitely not a term.
func (ix *TermIndex) MayContain(candidate string) bool {
	if ix == nil {
		return false
	}
	text := Normalize(candidate)
	return text != "" && ix.fingerprint.Covers(Sum(text))
}

// Lookup returns the record stored under key. Lookup-only entries are reachable here.
func (ix *TermIndex) Lookup(key string) (TermRecord, bool) {
	if ix == nil {
		return TermRecord{}, false
	}
	rec, ok := ix.terms[key]
	return rec, ok
}

// Fingerprint returns a copy of the index fingerprint.
func (ix *TermIndex) Fingerprint() Fingerprint {
	if ix == nil {
		return Fingerprint{}
	}
	return ix.fingerprint
}

// Len returns the number of records.
func (ix *TermIndex) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.terms)
}

// LookupOnly returns the number of records with blank text.
func (ix *TermIndex) LookupOnly() int {
	if ix == nil {
		return 0
	}
	return ix.lookupOnly
}

// Keys returns every key in ascending order.
func (ix *TermIndex) Keys() []string {
	if ix == nil {
		return nil
	}
	keys := make([]string, 0, len(ix.terms))
	for k := range ix.terms {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Records returns every record ordered by key.
func (ix *TermIndex) Records() []TermRecord {
	keys := ix.Keys()
	out := make([]TermRecord, len(keys))
	for i, k := range keys {
		out[i] = ix.terms[k]
	}
	return out
}

// BuildID identifies this compilation.
func (ix *TermIndex) BuildID() string {
	if ix == nil {
		return ""
	}
	return ix.buildID
}

// BuiltAt is when the index was compiled.
func (ix *TermIndex) BuiltAt() time.Time {
	if ix == nil {
		return time.Time{}
	}
	return ix.builtAt
}

// Stats summarizes an index.
type Stats struct {
	BuildID     string    `json:"build_id"`
	BuiltAt     time.Time `json:"built_at"`
	Terms       int       `json:"terms"`
	LookupOnly  int       `json:"lookup_only"`
	Fingerprint string    `json:"fingerprint"`
	SetBits     int       `json:"set_bits"`
	Density     float64   `json:"density"`
}

// Stats returns a summary of the index. A nil index reports an empty one.
func (ix *TermIndex) Stats() Stats {
	if ix == nil {
		return Stats{Fingerprint: Fingerprint{}.String()}
	}
	return Stats{
		BuildID:     ix.buildID,
		BuiltAt:     ix.builtAt,
		Terms:       len(ix.terms),
		LookupOnly:  ix.lookupOnly,
		Fingerprint: ix.fingerprint.String(),
		SetBits:     ix.fingerprint.PopCount(),
		Density:     ix.fingerprint.Density(),
	}
}
