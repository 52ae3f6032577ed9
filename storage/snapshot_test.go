package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semgloss/glossary"
)

func testIndex(t *testing.T) *glossary.TermIndex {
	t.Helper()
	ix, err := glossary.Compile(map[string]glossary.Entry{
		"ato":      {Text: "ATO", Brief: "Authority to Operate", Kind: glossary.KindAcronym},
		"atc":      {Text: "ATC", Definition: "Air Traffic Control"},
		"internal": {Brief: "key only"},
	}, glossary.WithBuildID("build-1"))
	require.NoError(t, err)
	return ix
}

func TestSnapshot_RoundTrip(t *testing.T) {
	ix := testIndex(t)

	data, err := json.Marshal(NewSnapshot(ix))
	require.NoError(t, err)

	snap, err := decodeSnapshot(data)
	require.NoError(t, err)
	assert.Equal(t, "build-1", snap.BuildID)
	assert.Len(t, snap.Terms, 3)

	restored, err := snap.Restore()
	require.NoError(t, err)
	assert.Equal(t, ix.BuildID(), restored.BuildID())
	assert.Equal(t, ix.Fingerprint(), restored.Fingerprint())
	assert.Equal(t, ix.Records(), restored.Records())

	rec, ok := restored.Probe("ato")
	require.True(t, ok)
	assert.Equal(t, "Authority to Operate", rec.Brief)

	_, ok = restored.Lookup("internal")
	assert.True(t, ok)
}

func TestSnapshot_FingerprintMismatch(t *testing.T) {
	snap := NewSnapshot(testIndex(t))
	snap.Fingerprint = glossary.Fingerprint{}.String()

	_, err := snap.Restore()
	assert.Error(t, err)
}

func TestSnapshot_MalformedTermsFollowPolicy(t *testing.T) {
	snap := Snapshot{BuildID: "b", Terms: []glossary.TermRecord{{Key: "", Text: ""}}}

	_, err := snap.Restore()
	assert.ErrorIs(t, err, glossary.ErrMalformedEntry)

	ix, err := snap.Restore(glossary.WithMalformedPolicy(glossary.MalformedSkip))
	require.NoError(t, err)
	assert.Equal(t, 0, ix.Len())
}

func TestDecodeSnapshot_Invalid(t *testing.T) {
	_, err := decodeSnapshot([]byte("{"))
	assert.Error(t, err)
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, isNotFound(jetstream.ErrKeyNotFound))
	assert.True(t, isNotFound(fmt.Errorf("wrapped: %w", jetstream.ErrKeyDeleted)))
	assert.False(t, isNotFound(errors.New("timeout")))
}
