// Package storage keeps the last good glossary vocabulary in NATS KV so a
// restarting service can serve it when its own sources fail to build.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/c360studio/semgloss/glossary"
)

// latestKey holds the most recent snapshot. Older revisions stay in the
// bucket history.
const latestKey = "latest"

// Snapshot is a compiled vocabulary in storable form.
type Snapshot struct {
	BuildID     string                `json:"build_id"`
	BuiltAt     time.Time             `json:"built_at"`
	Fingerprint string                `json:"fingerprint"`
	Terms       []glossary.TermRecord `json:"terms"`
}

// NewSnapshot captures ix.
func NewSnapshot(ix *glossary.TermIndex) Snapshot {
	return Snapshot{
		BuildID:     ix.BuildID(),
		BuiltAt:     ix.BuiltAt(),
		Fingerprint: ix.Fingerprint().String(),
		Terms:       ix.Records(),
	}
}

// Vocabulary returns the snapshot's terms keyed for glossary.Compile.
func (s Snapshot) Vocabulary() map[string]glossary.Entry {
	terms := make(map[string]glossary.Entry, len(s.Terms))
	for _, rec := range s.Terms {
		terms[rec.Key] = glossary.Entry{
			Text:       rec.Text,
			Brief:      rec.Brief,
			Definition: rec.Definition,
			Kind:       rec.Kind,
		}
	}
	return terms
}

// Restore compiles the snapshot. The restored index keeps the snapshot's
// build ID. A fingerprint mismatch means the snapshot was written by an
// incompatible build and is an error.
func (s Snapshot) Restore(opts ...glossary.Option) (*glossary.TermIndex, error) {
	opts = append(opts, glossary.WithBuildID(s.BuildID))
	ix, err := glossary.Compile(s.Vocabulary(), opts...)
	if err != nil {
		return nil, fmt.Errorf("compile snapshot: %w", err)
	}
	if s.Fingerprint != "" && ix.Fingerprint().String() != s.Fingerprint {
		return nil, fmt.Errorf("snapshot %s: fingerprint mismatch", s.BuildID)
	}
	return ix, nil
}

// Store saves and loads snapshots in a NATS KV bucket.
type Store struct {
	snapshots jetstream.KeyValue
}

// NewStore opens bucket, creating it if it doesn't exist.
func NewStore(ctx context.Context, js jetstream.JetStream, bucket string) (*Store, error) {
	kv, err := getOrCreateBucket(ctx, js, bucket)
	if err != nil {
		return nil, fmt.Errorf("create snapshot bucket: %w", err)
	}
	return &Store{snapshots: kv}, nil
}

func getOrCreateBucket(ctx context.Context, js jetstream.JetStream, name string) (jetstream.KeyValue, error) {
	kv, err := js.KeyValue(ctx, name)
	if err == nil {
		return kv, nil
	}
	return js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      name,
		Description: fmt.Sprintf("Semgloss %s snapshots", strings.ToLower(name)),
		History:     5, // Keep last 5 revisions
	})
}

// Save stores ix as the latest snapshot and returns the KV revision.
func (s *Store) Save(ctx context.Context, ix *glossary.TermIndex) (uint64, error) {
	data, err := json.Marshal(NewSnapshot(ix))
	if err != nil {
		return 0, fmt.Errorf("marshal snapshot: %w", err)
	}
	rev, err := s.snapshots.Put(ctx, latestKey, data)
	if err != nil {
		return 0, fmt.Errorf("store snapshot: %w", err)
	}
	return rev, nil
}

// Latest returns the most recently saved snapshot.
func (s *Store) Latest(ctx context.Context) (Snapshot, error) {
	entry, err := s.snapshots.Get(ctx, latestKey)
	if err != nil {
		if isNotFound(err) {
			return Snapshot{}, ErrNotFound
		}
		return Snapshot{}, fmt.Errorf("get snapshot: %w", err)
	}
	return decodeSnapshot(entry.Value())
}

func decodeSnapshot(data []byte) (Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return snap, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, jetstream.ErrKeyNotFound) || errors.Is(err, jetstream.ErrKeyDeleted)
}
