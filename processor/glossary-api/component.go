// Package glossaryapi provides HTTP endpoints for probing the term index.
// Annotating clients send candidate tokens and get back the matching term
// record, if any.
package glossaryapi

import (
	"log/slog"

	"github.com/c360studio/semgloss/glossary"
)

// Prober is the read side of a published term index.
type Prober interface {
	Probe(candidate string) (glossary.TermRecord, bool)
	Lookup(key string) (glossary.TermRecord, bool)
	Index() *glossary.TermIndex
}

// Component serves glossary queries over HTTP.
type Component struct {
	prober Prober
	logger *slog.Logger
}

// NewComponent creates a glossary-api component over prober.
func NewComponent(prober Prober, logger *slog.Logger) *Component {
	if logger == nil {
		logger = slog.Default()
	}
	return &Component{
		prober: prober,
		logger: logger,
	}
}
