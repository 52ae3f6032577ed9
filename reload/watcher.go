package reload

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/c360studio/semgloss/config"
	"github.com/c360studio/semgloss/vocabulary"
	"github.com/fsnotify/fsnotify"
)

const (
	// changeChannelBuffer is the size of the change channel. A full channel
	// already holds a pending rebuild, so further changes are coalesced.
	changeChannelBuffer = 16

	defaultDebounceDelay = 500 * time.Millisecond
)

// Change is one debounced batch of vocabulary file changes.
type Change struct {
	Paths []string
}

// Watcher watches vocabulary files and emits debounced changes.
type Watcher struct {
	patterns []string
	roots    []string
	debounce time.Duration
	watcher  *fsnotify.Watcher
	logger   *slog.Logger

	pendingMu sync.Mutex
	pending   map[string]fsnotify.Op

	// content hashes of files already seen, to skip no-op writes
	hashMu sync.Mutex
	hashes map[string]string

	changes chan Change

	droppedChanges atomic.Int64
}

// NewWatcher creates a watcher for the given vocabulary paths and globs.
func NewWatcher(patterns []string, cfg config.WatchConfig, logger *slog.Logger) (*Watcher, error) {
	roots, err := vocabulary.WatchRoots(patterns)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = slog.Default()
	}

	debounce := cfg.DebounceDelay
	if debounce <= 0 {
		debounce = defaultDebounceDelay
	}

	w := &Watcher{
		patterns: patterns,
		roots:    roots,
		debounce: debounce,
		watcher:  fsw,
		logger:   logger,
		pending:  make(map[string]fsnotify.Op),
		hashes:   make(map[string]string),
		changes:  make(chan Change, changeChannelBuffer),
	}
	w.seedHashes()
	return w, nil
}

// Events returns the channel of debounced changes.
func (w *Watcher) Events() <-chan Change {
	return w.changes
}

// Start adds watches under every root and begins processing events.
func (w *Watcher) Start(ctx context.Context) error {
	for _, root := range w.roots {
		if err := w.addWatchesRecursive(root); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				w.logger.Warn("Vocabulary watch root does not exist", "root", root)
				continue
			}
			return err
		}
	}

	go w.processEvents(ctx)

	w.logger.Info("Vocabulary watcher started",
		"roots", w.roots,
		"debounce", w.debounce)
	return nil
}

// Stop stops the watcher. The change channel is closed once processing exits.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

// DroppedChanges returns the number of changes coalesced because the channel was full.
func (w *Watcher) DroppedChanges() int64 {
	return w.droppedChanges.Load()
}

func (w *Watcher) seedHashes() {
	files, err := vocabulary.ResolveFiles(w.patterns)
	if err != nil {
		return
	}
	for _, path := range files {
		if content, err := os.ReadFile(path); err == nil {
			w.hashes[path] = contentHash(content)
		}
	}
}

func (w *Watcher) addWatchesRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}

		base := d.Name()
		if path != root && strings.HasPrefix(base, ".") {
			return filepath.SkipDir
		}

		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("Failed to watch directory", "path", path, "error", err)
		} else {
			w.logger.Debug("Watching directory", "path", path)
		}
		return nil
	})
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.changes)
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFSEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Watcher error", "error", err)

		case <-ticker.C:
			w.flushPending()
		}
	}
}

func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	path := filepath.Clean(event.Name)

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			w.handleNewDirectory(path)
			return
		}
	}

	if !vocabulary.MatchesAny(w.patterns, path) {
		return
	}

	w.pendingMu.Lock()
	w.pending[path] |= event.Op
	w.pendingMu.Unlock()

	w.logger.Debug("Vocabulary file change detected", "path", path, "op", event.Op.String())
}

func (w *Watcher) handleNewDirectory(path string) {
	if strings.HasPrefix(filepath.Base(path), ".") {
		return
	}
	if err := w.addWatchesRecursive(path); err != nil {
		w.logger.Warn("Failed to watch new directory", "path", path, "error", err)
		return
	}
	// Files may have landed before the watch was added.
	files, err := vocabulary.ResolveFiles(w.patterns)
	if err != nil {
		return
	}
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()
	for _, f := range files {
		if strings.HasPrefix(f, path+string(filepath.Separator)) {
			w.pending[f] |= fsnotify.Create
		}
	}
}

func (w *Watcher) flushPending() {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return
	}
	toProcess := w.pending
	w.pending = make(map[string]fsnotify.Op)
	w.pendingMu.Unlock()

	var changed []string
	for path, op := range toProcess {
		if op.Has(fsnotify.Remove) || op.Has(fsnotify.Rename) {
			if _, err := os.Stat(path); err != nil {
				w.forget(path)
				changed = append(changed, path)
				continue
			}
		}

		content, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				w.forget(path)
				changed = append(changed, path)
				continue
			}
			w.logger.Warn("Failed to read vocabulary file for hash check", "path", path, "error", err)
			continue
		}

		if w.remember(path, contentHash(content)) {
			changed = append(changed, path)
		}
	}

	if len(changed) == 0 {
		return
	}
	sort.Strings(changed)
	w.send(Change{Paths: changed})
}

// remember records hash for path and reports whether it differs from the last one.
func (w *Watcher) remember(path, hash string) bool {
	w.hashMu.Lock()
	defer w.hashMu.Unlock()
	if old, ok := w.hashes[path]; ok && old == hash {
		return false
	}
	w.hashes[path] = hash
	return true
}

func (w *Watcher) forget(path string) {
	w.hashMu.Lock()
	delete(w.hashes, path)
	w.hashMu.Unlock()
}

func (w *Watcher) send(change Change) {
	select {
	case w.changes <- change:
		w.logger.Debug("Sent vocabulary change", "paths", change.Paths)
	default:
		dropped := w.droppedChanges.Add(1)
		w.logger.Debug("Change channel full, coalescing", "paths", change.Paths, "total_dropped", dropped)
	}
}

func contentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
