// Package reload builds glossary indexes from configured vocabulary sources
// and republishes them when the sources change.
package reload

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/c360studio/semgloss/config"
	"github.com/c360studio/semgloss/events"
	"github.com/c360studio/semgloss/glossary"
	"github.com/c360studio/semgloss/metrics"
	"github.com/c360studio/semgloss/storage"
	"github.com/c360studio/semgloss/vocabulary"
)

// Source describes where a vocabulary comes from.
type Source struct {
	// Paths are vocabulary files or doublestar globs, merged in order.
	Paths []string
	// Builtin places the embedded vocabulary beneath the files.
	Builtin bool
	// Policy handles entries with neither key nor text.
	Policy glossary.MalformedPolicy
}

// SourceFromConfig converts the vocabulary section of a config.
func SourceFromConfig(cfg config.VocabularyConfig) Source {
	return Source{
		Paths:   cfg.Paths,
		Builtin: cfg.UseBuiltin(),
		Policy:  glossary.MalformedPolicy(cfg.Malformed),
	}
}

// Build loads and compiles source. It returns the index and the files read.
func Build(source Source, logger *slog.Logger) (*glossary.TermIndex, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	terms := make(map[string]glossary.Entry)
	if source.Builtin {
		terms = vocabulary.Builtin()
	}

	var files []string
	if len(source.Paths) > 0 {
		result, err := vocabulary.LoadGlob(source.Paths)
		if err != nil {
			return nil, nil, fmt.Errorf("load vocabulary: %w", err)
		}
		files = result.Files
		for _, o := range result.Overrides {
			logger.Info("Vocabulary term redefined", "key", o.Key, "file", o.File)
		}
		for _, key := range vocabulary.Merge(terms, result.Terms) {
			logger.Debug("Vocabulary file overrides builtin term", "key", key)
		}
	}

	policy := source.Policy
	if policy == "" {
		policy = glossary.MalformedReject
	}
	ix, err := glossary.Compile(terms,
		glossary.WithMalformedPolicy(policy),
		glossary.WithLogger(logger))
	if err != nil {
		return nil, nil, fmt.Errorf("compile vocabulary: %w", err)
	}
	return ix, files, nil
}

// Snapshots keeps the last good index outside the process.
type Snapshots interface {
	Save(ctx context.Context, ix *glossary.TermIndex) (uint64, error)
	Latest(ctx context.Context) (storage.Snapshot, error)
}

// Reloader rebuilds the index and publishes it through a Handle.
type Reloader struct {
	source    Source
	handle    *glossary.Handle
	metrics   *metrics.Metrics
	publisher events.Publisher
	snapshots Snapshots
	logger    *slog.Logger

	// serializes rebuilds so swaps happen in build order
	mu sync.Mutex
}

// NewReloader creates a Reloader. m and publisher may be nil.
func NewReloader(source Source, handle *glossary.Handle, m *metrics.Metrics, publisher events.Publisher, logger *slog.Logger) *Reloader {
	if logger == nil {
		logger = slog.Default()
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Reloader{
		source:    source,
		handle:    handle,
		metrics:   m,
		publisher: publisher,
		logger:    logger,
	}
}

// SetSnapshots saves every successful build to s. Call before the first Reload.
func (r *Reloader) SetSnapshots(s Snapshots) {
	r.snapshots = s
}

// Reload builds a new index and swaps it in. On failure the published index
// is left untouched and the error is returned.
func (r *Reloader) Reload(ctx context.Context) (*glossary.TermIndex, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ix, files, err := Build(r.source, r.logger)
	r.metrics.ObserveRebuild(err)
	if err != nil {
		r.logger.Error("Glossary rebuild failed, keeping previous index", "error", err)
		return nil, err
	}

	previous := r.handle.Swap(ix)
	r.metrics.ObserveIndex(ix)

	stats := ix.Stats()
	attrs := []any{
		"build_id", stats.BuildID,
		"terms", stats.Terms,
		"lookup_only", stats.LookupOnly,
		"density", stats.Density,
		"files", len(files),
	}
	if previous != nil {
		attrs = append(attrs, "previous_build_id", previous.BuildID())
	}
	r.logger.Info("Glossary index published", attrs...)

	if err := r.publisher.PublishRebuilt(ctx, events.NewIndexRebuilt(ix, files)); err != nil {
		r.logger.Warn("Failed to announce glossary rebuild", "build_id", stats.BuildID, "error", err)
	}
	if r.snapshots != nil {
		if rev, err := r.snapshots.Save(ctx, ix); err != nil {
			r.logger.Warn("Failed to save glossary snapshot", "build_id", stats.BuildID, "error", err)
		} else {
			r.logger.Debug("Saved glossary snapshot", "build_id", stats.BuildID, "revision", rev)
		}
	}
	return ix, nil
}

// RestoreSnapshot publishes the last saved snapshot. It is the fallback when
// the configured sources cannot be built at startup.
func (r *Reloader) RestoreSnapshot(ctx context.Context) (*glossary.TermIndex, error) {
	if r.snapshots == nil {
		return nil, storage.ErrNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	snap, err := r.snapshots.Latest(ctx)
	if err != nil {
		return nil, err
	}
	ix, err := snap.Restore(
		glossary.WithMalformedPolicy(glossary.MalformedSkip),
		glossary.WithLogger(r.logger))
	if err != nil {
		return nil, err
	}

	r.handle.Swap(ix)
	r.metrics.ObserveIndex(ix)
	r.logger.Warn("Serving glossary snapshot", "build_id", ix.BuildID(), "built_at", snap.BuiltAt, "terms", ix.Len())
	return ix, nil
}

// Run rebuilds on every change reported by w until ctx is done or w stops.
func (r *Reloader) Run(ctx context.Context, w *Watcher) {
	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-w.Events():
			if !ok {
				return
			}
			r.logger.Debug("Vocabulary change detected", "paths", change.Paths)
			_, _ = r.Reload(ctx)
		}
	}
}
