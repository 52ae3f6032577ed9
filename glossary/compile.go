package glossary

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MalformedPolicy selects what Compile does with an entry that has neither a
// key nor text.
type MalformedPolicy string

const (
	// MalformedReject fails the whole compilation with ErrMalformedEntry.
	MalformedReject MalformedPolicy = "reject"

	// MalformedSkip drops the entry and logs a warning.
	MalformedSkip MalformedPolicy = "skip"
)

// Valid reports whether p is a known policy.
func (p MalformedPolicy) Valid() bool {
	return p == MalformedReject || p == MalformedSkip
}

type compileOptions struct {
	policy  MalformedPolicy
	logger  *slog.Logger
	buildID string
	now     func() time.Time
}

// Option configures Compile.
type Option func(*compileOptions)

// WithMalformedPolicy sets the policy for malformed entries. The default is MalformedReject.
func WithMalformedPolicy(p MalformedPolicy) Option {
	return func(o *compileOptions) {
		o.policy = p
	}
}

// WithLogger sets the logger used for compile diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *compileOptions) {
		o.logger = logger
	}
}

// WithBuildID overrides the generated build identifier.
func WithBuildID(id string) Option {
	return func(o *compileOptions) {
		o.buildID = id
	}
}

// Compile builds a TermIndex from vocabulary.
//
// Entries with blank text are kept in the exact table but do not contribute to
// the fingerprint, so they can be found with Lookup and never with Probe.
// When several entries share a normalized text, Probe resolves it to the
// smallest key.
func Compile(vocabulary map[string]Entry, opts ...Option) (*TermIndex, error) {
	o := compileOptions{
		policy: MalformedReject,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if !o.policy.Valid() {
		return nil, fmt.Errorf("glossary: unknown malformed policy %q", o.policy)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.buildID == "" {
		o.buildID = uuid.New().String()
	}

	// Sorted iteration keeps diagnostics and text-clash resolution deterministic.
	keys := make([]string, 0, len(vocabulary))
	for k := range vocabulary {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	ix := &TermIndex{
		terms:   make(map[string]TermRecord, len(vocabulary)),
		byText:  make(map[string]string, len(vocabulary)),
		buildID: o.buildID,
		builtAt: o.now(),
	}

	for _, key := range keys {
		e := vocabulary[key]
		blankText := strings.TrimSpace(e.Text) == ""
		if strings.TrimSpace(key) == "" && blankText {
			if o.policy == MalformedReject {
				return nil, fmt.Errorf("%w (brief %q)", ErrMalformedEntry, e.Brief)
			}
			o.logger.Warn("Skipping malformed vocabulary entry", "brief", e.Brief)
			continue
		}

		ix.terms[key] = TermRecord{
			Key:        key,
			Text:       e.Text,
			Brief:      e.Brief,
			Definition: e.Definition,
			Kind:       e.Kind,
		}
		if blankText {
			ix.lookupOnly++
			continue
		}

		text := Normalize(e.Text)
		ix.fingerprint.Add(Sum(text))
		if prev, ok := ix.byText[text]; ok {
			o.logger.Debug("Vocabulary text shared by several keys",
				"text", text, "kept", prev, "key", key)
			continue
		}
		ix.byText[text] = key
	}

	o.logger.Debug("Compiled term index",
		"build_id", ix.buildID,
		"terms", len(ix.terms),
		"lookup_only", ix.lookupOnly,
		"density", ix.fingerprint.Density())

	return ix, nil
}
