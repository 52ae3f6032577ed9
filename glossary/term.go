package glossary

import "strings"

// Kind classifies a term.
type Kind string

const (
	// KindUnclassified is the zero value; it is a legal classification.
	KindUnclassified Kind = ""

	// KindAcronym marks an abbreviation such as "ATO".
	KindAcronym Kind = "acronym"

	// KindJargon marks a domain-specific word or phrase.
	KindJargon Kind = "jargon"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindUnclassified, KindAcronym, KindJargon:
		return true
	}
	return false
}

// Entry is one vocabulary entry as supplied to Compile. Its key lives in the
// enclosing map.
type Entry struct {
	Text       string
	Brief      string
	Definition string
	Kind       Kind
}

// TermRecord is an entry enriched with its own key.
type TermRecord struct {
	Key        string `json:"key"`
	Text       string `json:"text"`
	Brief      string `json:"brief,omitempty"`
	Definition string `json:"definition,omitempty"`
	Kind       Kind   `json:"kind,omitempty"`
}

// Probeable reports whether the record participates in the fingerprint.
// Records with blank text are reachable only through Lookup.
func (r TermRecord) Probeable() bool {
	return strings.TrimSpace(r.Text) != ""
}
